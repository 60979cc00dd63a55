// Package shoppinglist is the orchestration layer over the store, the
// product cache and the categorizer: list CRUD, membership, and item
// operations as the application exposes them.
package shoppinglist

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/shopsmart/shopsmart/plugin/ai/categorizer"
	"github.com/shopsmart/shopsmart/plugin/ai/productcache"
	"github.com/shopsmart/shopsmart/store"
)

var (
	// ErrListNotFound is returned when a list uid resolves to nothing.
	ErrListNotFound = errors.New("shopping list not found")
	// ErrAlreadyMember is returned when inviting an existing member.
	ErrAlreadyMember = errors.New("user is already a member of the list")
	// ErrAlreadyInvited is returned when an email already has a pending invitation.
	ErrAlreadyInvited = errors.New("user already has a pending invitation")
)

// Service wires list operations to the product cache and categorizer.
type Service struct {
	store    *store.Store
	cache    *productcache.Service
	resolver *categorizer.Resolver
}

// NewService creates the orchestration service. classifier may be nil, in
// which case cache misses categorize to the catch-all group.
func NewService(st *store.Store, classifier categorizer.Classifier) *Service {
	cache := productcache.NewService(&storeFeed{store: st}, &storeWriter{store: st})
	return &Service{
		store:    st,
		cache:    cache,
		resolver: categorizer.NewResolver(cache, classifier),
	}
}

// Cache exposes the product cache, e.g. for suggestion queries.
func (s *Service) Cache() *productcache.Service {
	return s.cache
}

// Close tears down the product cache subscription.
func (s *Service) Close() {
	s.cache.Close()
}

// SetActiveList points the product cache at the user's currently open
// list. The empty string deactivates it.
func (s *Service) SetActiveList(ctx context.Context, listUID string) {
	s.cache.SetActiveList(ctx, listUID)
}

// CreateList creates a list owned by ownerUID; the owner is always the
// first member.
func (s *Service) CreateList(ctx context.Context, name string, ownerUID string) (*store.ShoppingList, error) {
	list := &store.ShoppingList{
		UID:      shortuuid.New(),
		Name:     name,
		OwnerUID: ownerUID,
		Members:  []string{ownerUID},
		Items:    []store.ListItem{},
	}
	created, err := s.store.CreateShoppingList(ctx, list)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create list")
	}
	return created, nil
}

// DeleteList removes a list and its product cache collection.
func (s *Service) DeleteList(ctx context.Context, listUID string) error {
	return s.store.DeleteShoppingList(ctx, &store.DeleteShoppingList{UID: listUID})
}

// ListsForUser returns every list the user is a member of.
func (s *Service) ListsForUser(ctx context.Context, userUID string) ([]*store.ShoppingList, error) {
	return s.store.ListShoppingLists(ctx, &store.FindShoppingList{MemberUID: &userUID})
}

// GetList fetches one list by uid.
func (s *Service) GetList(ctx context.Context, listUID string) (*store.ShoppingList, error) {
	list, err := s.store.GetShoppingList(ctx, &store.FindShoppingList{UID: &listUID})
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrListNotFound
	}
	return list, nil
}

// AddItem categorizes the item name (cache first, then the classifier),
// appends the item to the list, and records the product for future
// categorizations. The cache write is non-blocking for item entry.
func (s *Service) AddItem(ctx context.Context, listUID string, userUID string, name string, language string, quantity int) (*store.ListItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	groupID := s.resolver.Categorize(ctx, name, language)

	list, err := s.GetList(ctx, listUID)
	if err != nil {
		return nil, err
	}

	item := store.ListItem{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		GroupID:   string(groupID),
		AddedBy:   userUID,
		Quantity:  quantity,
		Timestamp: time.Now().UnixMilli(),
	}

	items := append(list.Items, item)
	if _, err := s.store.UpdateShoppingList(ctx, &store.UpdateShoppingList{UID: listUID, Items: &items}); err != nil {
		return nil, errors.Wrap(err, "failed to add item")
	}

	if err := s.cache.AddProduct(ctx, name, groupID); err != nil {
		slog.Warn("failed to record product in cache",
			slog.String("name", name), slog.String("error", err.Error()))
	}

	return &item, nil
}

// ToggleItem flips an item's checked state.
func (s *Service) ToggleItem(ctx context.Context, listUID string, itemID string) error {
	return s.updateItems(ctx, listUID, func(items []store.ListItem) []store.ListItem {
		for i := range items {
			if items[i].ID == itemID {
				items[i].IsChecked = !items[i].IsChecked
			}
		}
		return items
	})
}

// DeleteItem removes one item from the list.
func (s *Service) DeleteItem(ctx context.Context, listUID string, itemID string) error {
	return s.updateItems(ctx, listUID, func(items []store.ListItem) []store.ListItem {
		remaining := items[:0]
		for _, item := range items {
			if item.ID != itemID {
				remaining = append(remaining, item)
			}
		}
		return remaining
	})
}

// DeleteCheckedItems removes every checked item from the list.
func (s *Service) DeleteCheckedItems(ctx context.Context, listUID string) error {
	return s.updateItems(ctx, listUID, func(items []store.ListItem) []store.ListItem {
		remaining := items[:0]
		for _, item := range items {
			if !item.IsChecked {
				remaining = append(remaining, item)
			}
		}
		return remaining
	})
}

// UpdateItemQuantity sets an item's quantity.
func (s *Service) UpdateItemQuantity(ctx context.Context, listUID string, itemID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.updateItems(ctx, listUID, func(items []store.ListItem) []store.ListItem {
		for i := range items {
			if items[i].ID == itemID {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

// UpdateItemCategory moves an item to another group and, when a similar
// cached product disagrees, corrects the cache so the fix propagates to
// future entries. The cache correction is non-blocking for the item edit.
func (s *Service) UpdateItemCategory(ctx context.Context, listUID string, itemID string, newGroupID categorizer.GroupID) error {
	var itemName string
	err := s.updateItems(ctx, listUID, func(items []store.ListItem) []store.ListItem {
		for i := range items {
			if items[i].ID == itemID {
				items[i].GroupID = string(newGroupID)
				itemName = items[i].Name
			}
		}
		return items
	})
	if err != nil {
		return err
	}
	if itemName == "" {
		return nil
	}

	if cached, ok := s.cache.SearchSimilar(itemName); ok && cached.GroupID != newGroupID {
		if err := s.cache.UpdateProductCategory(ctx, cached.ID, newGroupID); err != nil {
			slog.Warn("failed to correct product cache category",
				slog.String("record", cached.ID), slog.String("error", err.Error()))
		}
	}
	return nil
}

// UpdateGroupOrder persists a user's custom ordering of the groups for one
// list.
func (s *Service) UpdateGroupOrder(ctx context.Context, listUID string, order map[string]int) error {
	_, err := s.store.UpdateShoppingList(ctx, &store.UpdateShoppingList{UID: listUID, CustomGroupOrder: &order})
	return err
}

// Suggestions returns autocomplete candidates from the active list's
// product cache.
func (s *Service) Suggestions(input string, limit int) []string {
	return s.cache.GetSuggestions(input, limit)
}

// Categorize resolves the department for an item name without touching the
// list, for previewing during entry.
func (s *Service) Categorize(ctx context.Context, name string, language string) categorizer.GroupID {
	return s.resolver.Categorize(ctx, name, language)
}

// InviteMemberByEmail adds a known user as a member, or records a pending
// invitation for an unknown email. Returns true when an invitation was
// created rather than a membership.
func (s *Service) InviteMemberByEmail(ctx context.Context, listUID string, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	list, err := s.GetList(ctx, listUID)
	if err != nil {
		return false, err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}

	if user != nil {
		for _, member := range list.Members {
			if member == user.UID {
				return false, ErrAlreadyMember
			}
		}
		members := append(list.Members, user.UID)
		pending := removeString(list.PendingInvites, email)
		_, err := s.store.UpdateShoppingList(ctx, &store.UpdateShoppingList{
			UID:            listUID,
			Members:        &members,
			PendingInvites: &pending,
		})
		return false, err
	}

	for _, invited := range list.PendingInvites {
		if invited == email {
			return false, ErrAlreadyInvited
		}
	}
	pending := append(list.PendingInvites, email)
	_, err = s.store.UpdateShoppingList(ctx, &store.UpdateShoppingList{UID: listUID, PendingInvites: &pending})
	return true, err
}

// RemoveMember removes a member from the list.
func (s *Service) RemoveMember(ctx context.Context, listUID string, memberUID string) error {
	list, err := s.GetList(ctx, listUID)
	if err != nil {
		return err
	}
	members := removeString(list.Members, memberUID)
	_, err = s.store.UpdateShoppingList(ctx, &store.UpdateShoppingList{UID: listUID, Members: &members})
	return err
}

// AcceptPendingInvites converts pending invitations for the user's email
// into memberships, typically on login.
func (s *Service) AcceptPendingInvites(ctx context.Context, user *store.User) error {
	lists, err := s.store.ListShoppingLists(ctx, &store.FindShoppingList{PendingInviteEmail: &user.Email})
	if err != nil {
		return err
	}

	for _, list := range lists {
		members := append(list.Members, user.UID)
		pending := removeString(list.PendingInvites, user.Email)
		if _, err := s.store.UpdateShoppingList(ctx, &store.UpdateShoppingList{
			UID:            list.UID,
			Members:        &members,
			PendingInvites: &pending,
		}); err != nil {
			return errors.Wrapf(err, "failed to accept invite for list %s", list.UID)
		}
	}
	return nil
}

// updateItems loads the list, applies mutate to its items and saves them.
func (s *Service) updateItems(ctx context.Context, listUID string, mutate func([]store.ListItem) []store.ListItem) error {
	list, err := s.GetList(ctx, listUID)
	if err != nil {
		return err
	}
	items := mutate(list.Items)
	_, err = s.store.UpdateShoppingList(ctx, &store.UpdateShoppingList{UID: listUID, Items: &items})
	return err
}

func removeString(values []string, target string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v != target {
			result = append(result, v)
		}
	}
	return result
}
