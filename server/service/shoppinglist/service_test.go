package shoppinglist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsmart/shopsmart/internal/profile"
	"github.com/shopsmart/shopsmart/plugin/ai/categorizer"
	"github.com/shopsmart/shopsmart/store"
	"github.com/shopsmart/shopsmart/store/db/sqlite"
)

func newTestService(t *testing.T, classifier categorizer.Classifier) (*Service, *store.Store) {
	t.Helper()
	ctx := context.Background()

	prof := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "shopsmart_test.db"),
	}
	driver, err := sqlite.NewDB(prof)
	require.NoError(t, err)
	require.NoError(t, driver.Migrate(ctx))

	st := store.New(driver, prof)
	svc := NewService(st, classifier)
	t.Cleanup(func() {
		svc.Close()
		st.Close()
	})
	return svc, st
}

func TestListLifecycle(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Groceries", "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, list.UID)
	assert.Equal(t, []string{"user-1"}, list.Members)

	lists, err := svc.ListsForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Groceries", lists[0].Name)

	lists, err = svc.ListsForUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, lists)

	require.NoError(t, svc.DeleteList(ctx, list.UID))
	_, err = svc.GetList(ctx, list.UID)
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestAddItemUsesCacheOnSecondEntry(t *testing.T) {
	classifier := categorizer.NewMockClassifier(categorizer.GroupDairy)
	svc, _ := newTestService(t, classifier)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Groceries", "user-1")
	require.NoError(t, err)
	svc.SetActiveList(ctx, list.UID)

	item, err := svc.AddItem(ctx, list.UID, "user-1", "Milk", "en", 1)
	require.NoError(t, err)
	assert.Equal(t, string(categorizer.GroupDairy), item.GroupID)
	assert.Equal(t, 1, classifier.CallCount())

	// Wait for the feed to reflect the recorded product locally.
	require.Eventually(t, func() bool {
		_, ok := svc.Cache().SearchSimilar("milk")
		return ok
	}, time.Second, 5*time.Millisecond)

	// The same product again resolves from the cache, not the classifier.
	item, err = svc.AddItem(ctx, list.UID, "user-1", "  MILK ", "en", 2)
	require.NoError(t, err)
	assert.Equal(t, string(categorizer.GroupDairy), item.GroupID)
	assert.Equal(t, 1, classifier.CallCount())

	refreshed, err := svc.GetList(ctx, list.UID)
	require.NoError(t, err)
	assert.Len(t, refreshed.Items, 2)
	assert.Equal(t, 2, refreshed.Items[1].Quantity)
}

func TestItemOperations(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Groceries", "user-1")
	require.NoError(t, err)

	milk, err := svc.AddItem(ctx, list.UID, "user-1", "Milk", "en", 1)
	require.NoError(t, err)
	bread, err := svc.AddItem(ctx, list.UID, "user-1", "Bread", "en", 1)
	require.NoError(t, err)

	require.NoError(t, svc.ToggleItem(ctx, list.UID, milk.ID))
	require.NoError(t, svc.UpdateItemQuantity(ctx, list.UID, bread.ID, 3))

	refreshed, err := svc.GetList(ctx, list.UID)
	require.NoError(t, err)
	assert.True(t, refreshed.Items[0].IsChecked)
	assert.Equal(t, 3, refreshed.Items[1].Quantity)

	require.NoError(t, svc.DeleteCheckedItems(ctx, list.UID))
	refreshed, err = svc.GetList(ctx, list.UID)
	require.NoError(t, err)
	require.Len(t, refreshed.Items, 1)
	assert.Equal(t, "Bread", refreshed.Items[0].Name)

	require.NoError(t, svc.DeleteItem(ctx, list.UID, bread.ID))
	refreshed, err = svc.GetList(ctx, list.UID)
	require.NoError(t, err)
	assert.Empty(t, refreshed.Items)
}

func TestUpdateItemCategoryCorrectsCache(t *testing.T) {
	classifier := categorizer.NewMockClassifier(categorizer.GroupDairy)
	svc, st := newTestService(t, classifier)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Groceries", "user-1")
	require.NoError(t, err)
	svc.SetActiveList(ctx, list.UID)

	item, err := svc.AddItem(ctx, list.UID, "user-1", "Oat Milk", "en", 1)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := svc.Cache().SearchSimilar("oat milk")
		return ok
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, svc.UpdateItemCategory(ctx, list.UID, item.ID, categorizer.GroupDrinks))

	refreshed, err := svc.GetList(ctx, list.UID)
	require.NoError(t, err)
	assert.Equal(t, string(categorizer.GroupDrinks), refreshed.Items[0].GroupID)

	// The correction propagates to the remote product cache record.
	records, err := st.ListProductCacheRecords(ctx, &store.FindProductCacheRecord{ListUID: &list.UID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, string(categorizer.GroupDrinks), records[0].GroupID)
}

func TestSuggestions(t *testing.T) {
	classifier := categorizer.NewMockClassifier(categorizer.GroupDairy)
	svc, _ := newTestService(t, classifier)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Groceries", "user-1")
	require.NoError(t, err)
	svc.SetActiveList(ctx, list.UID)

	_, err = svc.AddItem(ctx, list.UID, "user-1", "Almond Milk", "en", 1)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(svc.Suggestions("milk", 5)) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"Almond Milk"}, svc.Suggestions("milk", 5))
	assert.Empty(t, svc.Suggestions("m", 5))
}

func TestInviteMemberByEmail(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()

	owner, err := st.UpsertUser(ctx, &store.UpsertUser{UID: "user-1", Email: "owner@example.com"})
	require.NoError(t, err)

	list, err := svc.CreateList(ctx, "Groceries", owner.UID)
	require.NoError(t, err)

	t.Run("UnknownEmailCreatesInvite", func(t *testing.T) {
		invited, err := svc.InviteMemberByEmail(ctx, list.UID, " Friend@Example.com ")
		require.NoError(t, err)
		assert.True(t, invited)

		refreshed, err := svc.GetList(ctx, list.UID)
		require.NoError(t, err)
		assert.Equal(t, []string{"friend@example.com"}, refreshed.PendingInvites)
	})

	t.Run("DuplicateInviteRejected", func(t *testing.T) {
		_, err := svc.InviteMemberByEmail(ctx, list.UID, "friend@example.com")
		assert.ErrorIs(t, err, ErrAlreadyInvited)
	})

	t.Run("KnownEmailBecomesMember", func(t *testing.T) {
		_, err := st.UpsertUser(ctx, &store.UpsertUser{UID: "user-2", Email: "buddy@example.com"})
		require.NoError(t, err)

		invited, err := svc.InviteMemberByEmail(ctx, list.UID, "buddy@example.com")
		require.NoError(t, err)
		assert.False(t, invited)

		refreshed, err := svc.GetList(ctx, list.UID)
		require.NoError(t, err)
		assert.Contains(t, refreshed.Members, "user-2")
	})

	t.Run("ExistingMemberRejected", func(t *testing.T) {
		_, err := svc.InviteMemberByEmail(ctx, list.UID, "buddy@example.com")
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("RemoveMember", func(t *testing.T) {
		require.NoError(t, svc.RemoveMember(ctx, list.UID, "user-2"))
		refreshed, err := svc.GetList(ctx, list.UID)
		require.NoError(t, err)
		assert.NotContains(t, refreshed.Members, "user-2")
	})
}

func TestAcceptPendingInvites(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Groceries", "user-1")
	require.NoError(t, err)

	invited, err := svc.InviteMemberByEmail(ctx, list.UID, "newcomer@example.com")
	require.NoError(t, err)
	require.True(t, invited)

	user, err := st.UpsertUser(ctx, &store.UpsertUser{UID: "user-3", Email: "newcomer@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.AcceptPendingInvites(ctx, user))

	refreshed, err := svc.GetList(ctx, list.UID)
	require.NoError(t, err)
	assert.Contains(t, refreshed.Members, "user-3")
	assert.Empty(t, refreshed.PendingInvites)
}

func TestUpdateGroupOrder(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Groceries", "user-1")
	require.NoError(t, err)

	order := map[string]int{"dairy": 0, "bakery": 1}
	require.NoError(t, svc.UpdateGroupOrder(ctx, list.UID, order))

	refreshed, err := svc.GetList(ctx, list.UID)
	require.NoError(t, err)
	assert.Equal(t, order, refreshed.CustomGroupOrder)
}
