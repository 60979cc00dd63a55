package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsmart/shopsmart/internal/profile"
	"github.com/shopsmart/shopsmart/plugin/ai/categorizer"
	"github.com/shopsmart/shopsmart/server/auth"
	"github.com/shopsmart/shopsmart/server/service/shoppinglist"
	"github.com/shopsmart/shopsmart/store"
	"github.com/shopsmart/shopsmart/store/db/sqlite"
)

const testSecret = "test-secret"

type testEnv struct {
	echo    *echo.Echo
	store   *store.Store
	service *APIV1Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	prof := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "api_test.db"),
	}
	driver, err := sqlite.NewDB(prof)
	require.NoError(t, err)
	require.NoError(t, driver.Migrate(ctx))

	st := store.New(driver, prof)
	lists := shoppinglist.NewService(st, categorizer.NewMockClassifier(categorizer.GroupDairy))
	t.Cleanup(func() {
		lists.Close()
		st.Close()
	})

	e := echo.New()
	service := NewAPIV1Service(testSecret, prof, st, lists)
	service.RegisterRoutes(e)
	return &testEnv{echo: e, store: st, service: service}
}

func (env *testEnv) token(t *testing.T, uid, email string) string {
	t.Helper()
	token, err := auth.GenerateAccessToken(uid, email, "Test User", testSecret, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return token
}

func (env *testEnv) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/lists", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/lists", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDevTokenFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/auth/token", "",
		`{"uid":"user-1","email":"ada@example.com","name":"Ada"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[CreateDevTokenResponse](t, rec).AccessToken
	require.NotEmpty(t, token)

	rec = env.request(t, http.MethodGet, "/api/v1/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[UserResponse](t, rec)
	assert.Equal(t, "user-1", me.UID)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestListEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "owner@example.com")

	rec := env.request(t, http.MethodPost, "/api/v1/lists", token, `{"name":"Groceries"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[ShoppingListResponse](t, rec)
	assert.Equal(t, "user-1", created.OwnerUID)

	rec = env.request(t, http.MethodGet, "/api/v1/lists", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	lists := decode[[]ShoppingListResponse](t, rec)
	require.Len(t, lists, 1)

	rec = env.request(t, http.MethodGet, "/api/v1/lists/"+created.UID, token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// A non-member cannot read the list.
	stranger := env.token(t, "user-2", "stranger@example.com")
	rec = env.request(t, http.MethodGet, "/api/v1/lists/"+created.UID, stranger, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/lists/no-such-list", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Only the owner can delete.
	rec = env.request(t, http.MethodDelete, "/api/v1/lists/"+created.UID, stranger, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.request(t, http.MethodDelete, "/api/v1/lists/"+created.UID, token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestItemEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "owner@example.com")

	rec := env.request(t, http.MethodPost, "/api/v1/lists", token, `{"name":"Groceries"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ShoppingListResponse](t, rec)

	rec = env.request(t, http.MethodPost, "/api/v1/lists/"+list.UID+"/items", token, `{"name":"Milk"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	item := decode[store.ListItem](t, rec)
	assert.Equal(t, "Milk", item.Name)
	assert.Equal(t, string(categorizer.GroupDairy), item.GroupID)
	assert.Equal(t, 1, item.Quantity)

	rec = env.request(t, http.MethodPost, "/api/v1/lists/"+list.UID+"/items/"+item.ID+"/toggle", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPatch, "/api/v1/lists/"+list.UID+"/items/"+item.ID, token, `{"quantity":4}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPatch, "/api/v1/lists/"+list.UID+"/items/"+item.ID, token, `{"groupId":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPatch, "/api/v1/lists/"+list.UID+"/items/"+item.ID, token, `{"groupId":"drinks"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/lists/"+list.UID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decode[ShoppingListResponse](t, rec)
	require.Len(t, fetched.Items, 1)
	assert.True(t, fetched.Items[0].IsChecked)
	assert.Equal(t, 4, fetched.Items[0].Quantity)
	assert.Equal(t, "drinks", fetched.Items[0].GroupID)

	rec = env.request(t, http.MethodDelete, "/api/v1/lists/"+list.UID+"/items/checked", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/lists/"+list.UID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	fetched = decode[ShoppingListResponse](t, rec)
	assert.Empty(t, fetched.Items)
}

func TestInviteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "owner@example.com")

	rec := env.request(t, http.MethodPost, "/api/v1/lists", token, `{"name":"Groceries"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ShoppingListResponse](t, rec)

	rec = env.request(t, http.MethodPost, "/api/v1/lists/"+list.UID+"/members", token, `{"email":"friend@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[InviteMemberResponse](t, rec).Invited)

	rec = env.request(t, http.MethodPost, "/api/v1/lists/"+list.UID+"/members", token, `{"email":"friend@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The invited user signs in; their first /auth/me call redeems the invite.
	friend := env.token(t, "user-2", "friend@example.com")
	rec = env.request(t, http.MethodGet, "/api/v1/auth/me", friend, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/lists/"+list.UID, friend, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Members can remove themselves but not other members.
	rec = env.request(t, http.MethodDelete, "/api/v1/lists/"+list.UID+"/members/user-1", friend, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.request(t, http.MethodDelete, "/api/v1/lists/"+list.UID+"/members/user-2", friend, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSuggestAndCategorizeEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "owner@example.com")

	rec := env.request(t, http.MethodPost, "/api/v1/lists", token, `{"name":"Groceries"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ShoppingListResponse](t, rec)

	rec = env.request(t, http.MethodPost, "/api/v1/lists/"+list.UID+"/activate", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/lists/"+list.UID+"/items", token, `{"name":"Almond Milk"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		rec := env.request(t, http.MethodGet, "/api/v1/suggestions?q=milk", token, "")
		if rec.Code != http.StatusOK {
			return false
		}
		var resp SuggestionsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			return false
		}
		return len(resp.Suggestions) == 1
	}, time.Second, 10*time.Millisecond)

	rec = env.request(t, http.MethodPost, "/api/v1/categorize", token, `{"name":"Cheddar"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(categorizer.GroupDairy), decode[CategorizeResponse](t, rec).GroupID)
}
