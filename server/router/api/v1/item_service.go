package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopsmart/shopsmart/plugin/ai/categorizer"
)

type AddItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Language string `json:"language"`
}

// AddItem appends a product to a list. The item's grocery group comes from
// the product cache when a similar product was bought before, otherwise
// from the classifier.
// POST /api/v1/lists/:uid/items
func (s *APIV1Service) AddItem(c echo.Context) error {
	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}

	req := &AddItemRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "item name is required")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.Language == "" {
		req.Language = "en"
	}

	user := authUser(c)
	item, err := s.Lists.AddItem(c.Request().Context(), list.UID, user.UID, req.Name, req.Language, req.Quantity)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to add item")
	}
	return c.JSON(http.StatusOK, item)
}

// ToggleItem flips the checked state of one item.
// POST /api/v1/lists/:uid/items/:itemID/toggle
func (s *APIV1Service) ToggleItem(c echo.Context) error {
	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}

	if err := s.Lists.ToggleItem(c.Request().Context(), list.UID, c.Param("itemID")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to toggle item")
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": true})
}

type UpdateItemRequest struct {
	Quantity *int    `json:"quantity"`
	GroupID  *string `json:"groupId"`
}

// UpdateItem patches an item's quantity and/or grocery group. A group
// change also corrects the list's product cache so the next entry of the
// same product lands in the right group.
// PATCH /api/v1/lists/:uid/items/:itemID
func (s *APIV1Service) UpdateItem(c echo.Context) error {
	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}

	req := &UpdateItemRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Quantity == nil && req.GroupID == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	ctx := c.Request().Context()
	itemID := c.Param("itemID")

	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
		}
		if err := s.Lists.UpdateItemQuantity(ctx, list.UID, itemID, *req.Quantity); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update quantity")
		}
	}
	if req.GroupID != nil {
		groupID := categorizer.GroupID(*req.GroupID)
		if !groupID.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown group id")
		}
		if err := s.Lists.UpdateItemCategory(ctx, list.UID, itemID, groupID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update category")
		}
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": true})
}

// DeleteItem removes one item from a list.
// DELETE /api/v1/lists/:uid/items/:itemID
func (s *APIV1Service) DeleteItem(c echo.Context) error {
	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}

	if err := s.Lists.DeleteItem(c.Request().Context(), list.UID, c.Param("itemID")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete item")
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}

// DeleteCheckedItems removes every checked item from a list.
// DELETE /api/v1/lists/:uid/items/checked
func (s *APIV1Service) DeleteCheckedItems(c echo.Context) error {
	list, err := s.requireListMember(c, c.Param("uid"))
	if err != nil {
		return err
	}

	if err := s.Lists.DeleteCheckedItems(c.Request().Context(), list.UID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete checked items")
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}
