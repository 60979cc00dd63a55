package store

import (
	"context"
)

// ListItem is a single entry of a shopping list. Items are stored inline
// with their list, matching the document shape of the original data model.
type ListItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GroupID   string `json:"groupId"`
	IsChecked bool   `json:"isChecked"`
	AddedBy   string `json:"addedBy"`
	Quantity  int    `json:"quantity"`
	Timestamp int64  `json:"timestamp"`
}

// ShoppingList is a list shared between its members. The owner is always a
// member. PendingInvites holds lowercased emails of people invited before
// they have an account.
type ShoppingList struct {
	ID  int32
	UID string

	Name             string
	OwnerUID         string
	Members          []string
	PendingInvites   []string
	Items            []ListItem
	CustomGroupOrder map[string]int

	CreatedTs int64
	UpdatedTs int64
}

type FindShoppingList struct {
	ID                 *int32
	UID                *string
	MemberUID          *string
	PendingInviteEmail *string
}

type UpdateShoppingList struct {
	UID string

	Name             *string
	Members          *[]string
	PendingInvites   *[]string
	Items            *[]ListItem
	CustomGroupOrder *map[string]int
}

type DeleteShoppingList struct {
	UID string
}

func (s *Store) CreateShoppingList(ctx context.Context, create *ShoppingList) (*ShoppingList, error) {
	return s.driver.CreateShoppingList(ctx, create)
}

func (s *Store) ListShoppingLists(ctx context.Context, find *FindShoppingList) ([]*ShoppingList, error) {
	return s.driver.ListShoppingLists(ctx, find)
}

func (s *Store) GetShoppingList(ctx context.Context, find *FindShoppingList) (*ShoppingList, error) {
	lists, err := s.driver.ListShoppingLists(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return nil, nil
	}
	return lists[0], nil
}

func (s *Store) UpdateShoppingList(ctx context.Context, update *UpdateShoppingList) (*ShoppingList, error) {
	return s.driver.UpdateShoppingList(ctx, update)
}

func (s *Store) DeleteShoppingList(ctx context.Context, delete *DeleteShoppingList) error {
	return s.driver.DeleteShoppingList(ctx, delete)
}
