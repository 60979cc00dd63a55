package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsmart/shopsmart/internal/profile"
	"github.com/shopsmart/shopsmart/store"
	"github.com/shopsmart/shopsmart/store/db/sqlite"
)

const testSecret = "test-secret"

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	prof := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "auth_test.db"),
	}
	driver, err := sqlite.NewDB(prof)
	require.NoError(t, err)
	require.NoError(t, driver.Migrate(ctx))

	st := store.New(driver, prof)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	authenticator := NewAuthenticator(st, testSecret)

	token, err := GenerateAccessToken("user-1", "Ada@Example.com", "Ada", testSecret, time.Now().Add(time.Hour))
	require.NoError(t, err)

	user, err := authenticator.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.DisplayName)

	// The mirrored profile is persisted.
	stored, err := st.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "user-1", stored.UID)
}

func TestAuthenticateRejections(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	authenticator := NewAuthenticator(st, testSecret)

	for name, header := range map[string]string{
		"MissingHeader": "",
		"NotBearer":     "Basic abc",
		"GarbageToken":  "Bearer not-a-jwt",
		"EmptyToken":    "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := authenticator.Authenticate(ctx, header)
			assert.Error(t, err)
		})
	}

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := GenerateAccessToken("user-1", "a@b.com", "A", "other-secret", time.Now().Add(time.Hour))
		require.NoError(t, err)
		_, err = authenticator.Authenticate(ctx, "Bearer "+token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := GenerateAccessToken("user-1", "a@b.com", "A", testSecret, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		_, err = authenticator.Authenticate(ctx, "Bearer "+token)
		assert.Error(t, err)
	})
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, UserFromContext(ctx))

	user := &store.User{UID: "user-1"}
	ctx = SetUserInContext(ctx, user)
	assert.Equal(t, user, UserFromContext(ctx))
}
