package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/shopsmart/shopsmart/internal/profile"
	"github.com/shopsmart/shopsmart/server/auth"
	"github.com/shopsmart/shopsmart/server/middleware"
	"github.com/shopsmart/shopsmart/server/service/shoppinglist"
	"github.com/shopsmart/shopsmart/store"
)

// APIV1Service exposes the shopping list API over HTTP/JSON.
type APIV1Service struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store
	Lists   *shoppinglist.Service

	authenticator *auth.Authenticator
	rateLimiter   *middleware.RateLimiter
}

func NewAPIV1Service(secret string, prof *profile.Profile, st *store.Store, lists *shoppinglist.Service) *APIV1Service {
	return &APIV1Service{
		Secret:        secret,
		Profile:       prof,
		Store:         st,
		Lists:         lists,
		authenticator: auth.NewAuthenticator(st, secret),
		rateLimiter:   middleware.NewRateLimiter(rate.Limit(20), 40),
	}
}

// RegisterRoutes attaches all v1 routes to the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1")
	g.Use(echomw.CORS())

	// Token minting is only open in dev mode; everything else requires a
	// bearer token from the identity provider.
	if s.Profile.IsDev() {
		g.POST("/auth/token", s.CreateDevToken)
	}

	g.Use(s.authMiddleware)
	g.Use(s.rateLimitMiddleware)

	g.GET("/auth/me", s.GetCurrentUser)

	g.GET("/lists", s.ListShoppingLists)
	g.POST("/lists", s.CreateShoppingList)
	g.GET("/lists/:uid", s.GetShoppingList)
	g.DELETE("/lists/:uid", s.DeleteShoppingList)
	g.POST("/lists/:uid/activate", s.ActivateShoppingList)
	g.PUT("/lists/:uid/group-order", s.UpdateGroupOrder)

	g.POST("/lists/:uid/items", s.AddItem)
	g.POST("/lists/:uid/items/:itemID/toggle", s.ToggleItem)
	g.PATCH("/lists/:uid/items/:itemID", s.UpdateItem)
	g.DELETE("/lists/:uid/items/checked", s.DeleteCheckedItems)
	g.DELETE("/lists/:uid/items/:itemID", s.DeleteItem)

	g.POST("/lists/:uid/members", s.InviteMember)
	g.DELETE("/lists/:uid/members/:memberUID", s.RemoveMember)

	g.GET("/suggestions", s.GetSuggestions)
	g.POST("/categorize", s.CategorizeProduct)
}

func authUser(c echo.Context) *store.User {
	return auth.UserFromContext(c.Request().Context())
}

// requireListMember loads a list and checks that the caller belongs to it.
func (s *APIV1Service) requireListMember(c echo.Context, listUID string) (*store.ShoppingList, error) {
	user := auth.UserFromContext(c.Request().Context())
	list, err := s.Lists.GetList(c.Request().Context(), listUID)
	if err != nil {
		if err == shoppinglist.ErrListNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "list not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load list")
	}
	for _, member := range list.Members {
		if member == user.UID {
			return list, nil
		}
	}
	return nil, echo.NewHTTPError(http.StatusForbidden, "not a member of this list")
}
