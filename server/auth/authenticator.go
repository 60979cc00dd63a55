// Package auth validates bearer tokens issued by the external identity
// provider and mirrors the authenticated user into the local store.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/shopsmart/shopsmart/store"
)

const (
	// Issuer is the expected issuer of access tokens.
	Issuer = "shopsmart"
	// AccessTokenAudience is the expected audience of access tokens.
	AccessTokenAudience = "user.access-token"
)

type contextKey int

// userContextKey carries the authenticated *store.User through a request.
const userContextKey contextKey = iota

// ClaimsMessage is the payload of an access token. Subject holds the
// identity provider's stable user id.
type ClaimsMessage struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies access tokens and resolves them to users.
type Authenticator struct {
	store  *store.Store
	secret string
}

func NewAuthenticator(st *store.Store, secret string) *Authenticator {
	return &Authenticator{store: st, secret: secret}
}

// Authenticate validates an Authorization header value and returns the
// user it belongs to. The mirrored user profile is refreshed on every
// successful authentication so email invite matching stays current.
func (a *Authenticator) Authenticate(ctx context.Context, authHeader string) (*store.User, error) {
	token, err := extractBearerToken(authHeader)
	if err != nil {
		return nil, err
	}

	claims := &ClaimsMessage{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	}, jwt.WithIssuer(Issuer), jwt.WithAudience(AccessTokenAudience))
	if err != nil {
		return nil, errors.Wrap(err, "invalid access token")
	}
	if claims.Subject == "" {
		return nil, errors.New("access token has no subject")
	}

	user, err := a.store.UpsertUser(ctx, &store.UpsertUser{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to mirror user")
	}
	return user, nil
}

// GenerateAccessToken mints a signed token for the given user. Used by the
// dev token endpoint and by tests; production tokens come from the identity
// provider's exchange flow.
func GenerateAccessToken(uid, email, name, secret string, expiresAt time.Time) (string, error) {
	claims := &ClaimsMessage{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   Issuer,
			Audience: jwt.ClaimStrings{AccessTokenAudience},
			Subject:  uid,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("malformed authorization header")
	}
	return parts[1], nil
}

// SetUserInContext stores the authenticated user on a request context.
func SetUserInContext(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil when the request
// was not authenticated.
func UserFromContext(ctx context.Context) *store.User {
	user, _ := ctx.Value(userContextKey).(*store.User)
	return user
}
