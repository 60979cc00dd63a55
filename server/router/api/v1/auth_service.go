package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopsmart/shopsmart/server/auth"
)

// authMiddleware authenticates every request with the Authorization header
// and stores the resulting user on the request context.
func (s *APIV1Service) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := s.authenticator.Authenticate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		ctx := auth.SetUserInContext(c.Request().Context(), user)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// rateLimitMiddleware throttles requests per authenticated user. Must run
// after authMiddleware.
func (s *APIV1Service) rateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := auth.UserFromContext(c.Request().Context())
		if user != nil && !s.rateLimiter.Allow(user.UID) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		}
		return next(c)
	}
}

type UserResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// GetCurrentUser returns the authenticated user's mirrored profile. Pending
// list invitations addressed to the user's email are redeemed here, so the
// first request after sign-in makes the user a member of those lists.
// GET /api/v1/auth/me
func (s *APIV1Service) GetCurrentUser(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	if err := s.Lists.AcceptPendingInvites(ctx, user); err != nil {
		slog.Warn("failed to accept pending invites", "user", user.UID, "error", err)
	}

	return c.JSON(http.StatusOK, UserResponse{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
	})
}

type CreateDevTokenRequest struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type CreateDevTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// CreateDevToken mints an access token without an identity provider.
// Registered in dev mode only.
// POST /api/v1/auth/token
func (s *APIV1Service) CreateDevToken(c echo.Context) error {
	req := &CreateDevTokenRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.UID == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "uid and email are required")
	}

	token, err := auth.GenerateAccessToken(req.UID, req.Email, req.Name, s.Secret, time.Now().Add(24*time.Hour))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate token")
	}
	return c.JSON(http.StatusOK, CreateDevTokenResponse{AccessToken: token})
}
