package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// GetSuggestions returns product name completions from the active list's
// product cache, shortest first.
// GET /api/v1/suggestions?q=mil&limit=5
func (s *APIV1Service) GetSuggestions(c echo.Context) error {
	limit := 5
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	suggestions := s.Lists.Suggestions(c.QueryParam("q"), limit)
	if suggestions == nil {
		suggestions = []string{}
	}
	return c.JSON(http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

type CategorizeRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

type CategorizeResponse struct {
	GroupID string `json:"groupId"`
}

// CategorizeProduct resolves a product name to a grocery group without
// adding it to any list.
// POST /api/v1/categorize
func (s *APIV1Service) CategorizeProduct(c echo.Context) error {
	req := &CategorizeRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product name is required")
	}
	if req.Language == "" {
		req.Language = "en"
	}

	groupID := s.Lists.Categorize(c.Request().Context(), req.Name, req.Language)
	return c.JSON(http.StatusOK, CategorizeResponse{GroupID: string(groupID)})
}
