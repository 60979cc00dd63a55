package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopsmart/shopsmart/server/auth"
	"github.com/shopsmart/shopsmart/server/service/shoppinglist"
	"github.com/shopsmart/shopsmart/store"
)

type ShoppingListResponse struct {
	UID              string           `json:"uid"`
	Name             string           `json:"name"`
	OwnerUID         string           `json:"ownerUid"`
	Members          []string         `json:"members"`
	PendingInvites   []string         `json:"pendingInvites"`
	Items            []store.ListItem `json:"items"`
	CustomGroupOrder map[string]int   `json:"customGroupOrder,omitempty"`
	CreatedTs        int64            `json:"createdTs"`
	UpdatedTs        int64            `json:"updatedTs"`
}

func convertShoppingList(list *store.ShoppingList) *ShoppingListResponse {
	return &ShoppingListResponse{
		UID:              list.UID,
		Name:             list.Name,
		OwnerUID:         list.OwnerUID,
		Members:          list.Members,
		PendingInvites:   list.PendingInvites,
		Items:            list.Items,
		CustomGroupOrder: list.CustomGroupOrder,
		CreatedTs:        list.CreatedTs,
		UpdatedTs:        list.UpdatedTs,
	}
}

// ListShoppingLists returns every list the caller is a member of.
// GET /api/v1/lists
func (s *APIV1Service) ListShoppingLists(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	lists, err := s.Lists.ListsForUser(ctx, user.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list shopping lists")
	}

	response := make([]*ShoppingListResponse, 0, len(lists))
	for _, list := range lists {
		response = append(response, convertShoppingList(list))
	}
	return c.JSON(http.StatusOK, response)
}

type CreateShoppingListRequest struct {
	Name string `json:"name"`
}

// CreateShoppingList creates a list owned by the caller.
// POST /api/v1/lists
func (s *APIV1Service) CreateShoppingList(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	req := &CreateShoppingListRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "list name is required")
	}

	list, err := s.Lists.CreateList(ctx, name, user.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create list")
	}
	return c.JSON(http.StatusOK, convertShoppingList(list))
}

// GetShoppingList returns one list the caller is a member of.
// GET /api/v1/lists/:uid
func (s *APIV1Service) GetShoppingList(c echo.Context) error {
	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, convertShoppingList(list))
}

// DeleteShoppingList deletes a list. Only the owner may delete it.
// DELETE /api/v1/lists/:uid
func (s *APIV1Service) DeleteShoppingList(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}
	if list.OwnerUID != user.UID {
		return echo.NewHTTPError(http.StatusForbidden, "only the owner can delete a list")
	}

	if err := s.Lists.DeleteList(ctx, list.UID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete list")
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}

// ActivateShoppingList makes a list the scope for product suggestions and
// category lookups on this instance.
// POST /api/v1/lists/:uid/activate
func (s *APIV1Service) ActivateShoppingList(c echo.Context) error {
	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}
	s.Lists.SetActiveList(c.Request().Context(), list.UID)
	return c.JSON(http.StatusOK, map[string]string{"activeList": list.UID})
}

type UpdateGroupOrderRequest struct {
	Order map[string]int `json:"order"`
}

// UpdateGroupOrder saves a custom ordering of grocery groups for a list.
// PUT /api/v1/lists/:uid/group-order
func (s *APIV1Service) UpdateGroupOrder(c echo.Context) error {
	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}

	req := &UpdateGroupOrderRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Order == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "order is required")
	}

	if err := s.Lists.UpdateGroupOrder(c.Request().Context(), list.UID, req.Order); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update group order")
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": true})
}

type InviteMemberRequest struct {
	Email string `json:"email"`
}

type InviteMemberResponse struct {
	// Invited is true when no account matched the email and a pending
	// invitation was stored instead.
	Invited bool `json:"invited"`
}

// InviteMember adds a user to a list by email, or records a pending
// invitation when the email has no account yet.
// POST /api/v1/lists/:uid/members
func (s *APIV1Service) InviteMember(c echo.Context) error {
	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}

	req := &InviteMemberRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if strings.TrimSpace(req.Email) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	invited, err := s.Lists.InviteMemberByEmail(c.Request().Context(), list.UID, req.Email)
	switch err {
	case nil:
		return c.JSON(http.StatusOK, InviteMemberResponse{Invited: invited})
	case shoppinglist.ErrAlreadyMember:
		return echo.NewHTTPError(http.StatusConflict, "user is already a member")
	case shoppinglist.ErrAlreadyInvited:
		return echo.NewHTTPError(http.StatusConflict, "user is already invited")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to invite member")
	}
}

// RemoveMember removes a member from a list. Members may remove themselves;
// the owner may remove anyone but cannot leave their own list.
// DELETE /api/v1/lists/:uid/members/:memberUID
func (s *APIV1Service) RemoveMember(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}

	memberUID := c.Param("memberUID")
	if user.UID != list.OwnerUID && user.UID != memberUID {
		return echo.NewHTTPError(http.StatusForbidden, "cannot remove other members")
	}
	if memberUID == list.OwnerUID {
		return echo.NewHTTPError(http.StatusBadRequest, "the owner cannot leave the list")
	}

	if err := s.Lists.RemoveMember(ctx, list.UID, memberUID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to remove member")
	}
	return c.JSON(http.StatusOK, map[string]bool{"removed": true})
}
