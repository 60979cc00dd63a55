package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsmart/shopsmart/store"
)

func TestShoppingListStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateShoppingList(ctx, &store.ShoppingList{
		UID:      "list-1",
		Name:     "Groceries",
		OwnerUID: "user-1",
		Members:  []string{"user-1"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotZero(t, created.CreatedTs)
	assert.Equal(t, []string{"user-1"}, created.Members)
	assert.Empty(t, created.Items)

	found, err := ts.GetShoppingList(ctx, &store.FindShoppingList{UID: &created.UID})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Groceries", found.Name)

	items := []store.ListItem{
		{ID: "item-1", Name: "Milk", GroupID: "dairy", AddedBy: "user-1", Quantity: 1},
	}
	members := []string{"user-1", "user-2"}
	updated, err := ts.UpdateShoppingList(ctx, &store.UpdateShoppingList{
		UID:     created.UID,
		Items:   &items,
		Members: &members,
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Milk", updated.Items[0].Name)
	assert.Equal(t, members, updated.Members)

	memberUID := "user-2"
	lists, err := ts.ListShoppingLists(ctx, &store.FindShoppingList{MemberUID: &memberUID})
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, created.UID, lists[0].UID)

	stranger := "user-9"
	lists, err = ts.ListShoppingLists(ctx, &store.FindShoppingList{MemberUID: &stranger})
	require.NoError(t, err)
	assert.Empty(t, lists)

	require.NoError(t, ts.DeleteShoppingList(ctx, &store.DeleteShoppingList{UID: created.UID}))
	found, err = ts.GetShoppingList(ctx, &store.FindShoppingList{UID: &created.UID})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestShoppingListPendingInviteLookup(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateShoppingList(ctx, &store.ShoppingList{
		UID:            "list-1",
		Name:           "Groceries",
		OwnerUID:       "user-1",
		Members:        []string{"user-1"},
		PendingInvites: []string{"friend@example.com"},
	})
	require.NoError(t, err)

	email := "friend@example.com"
	lists, err := ts.ListShoppingLists(ctx, &store.FindShoppingList{PendingInviteEmail: &email})
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, created.UID, lists[0].UID)

	other := "other@example.com"
	lists, err = ts.ListShoppingLists(ctx, &store.FindShoppingList{PendingInviteEmail: &other})
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestDeleteShoppingListRemovesProductCache(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateShoppingList(ctx, &store.ShoppingList{
		UID:      "list-1",
		Name:     "Groceries",
		OwnerUID: "user-1",
		Members:  []string{"user-1"},
	})
	require.NoError(t, err)

	_, err = ts.UpsertProductCacheRecord(ctx, &store.ProductCacheRecord{
		ListUID:  created.UID,
		RecordID: "milk",
		Name:     "Milk",
		GroupID:  "dairy",
	})
	require.NoError(t, err)

	require.NoError(t, ts.DeleteShoppingList(ctx, &store.DeleteShoppingList{UID: created.UID}))

	records, err := ts.ListProductCacheRecords(ctx, &store.FindProductCacheRecord{ListUID: &created.UID})
	require.NoError(t, err)
	assert.Empty(t, records)
}
