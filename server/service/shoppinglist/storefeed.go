package shoppinglist

import (
	"context"
	"time"

	"github.com/shopsmart/shopsmart/plugin/ai/categorizer"
	"github.com/shopsmart/shopsmart/plugin/ai/productcache"
	"github.com/shopsmart/shopsmart/store"
)

// storeFeed adapts the store's product-cache change feed to the
// productcache.Feed collaborator.
type storeFeed struct {
	store *store.Store
}

func (f *storeFeed) Subscribe(ctx context.Context, listID string) (productcache.Subscription, error) {
	inner, err := f.store.WatchProductCache(ctx, listID)
	if err != nil {
		return nil, err
	}

	sub := &storeSubscription{
		inner: inner,
		ch:    make(chan []productcache.Item, 1),
	}
	go sub.pump()
	return sub, nil
}

type storeSubscription struct {
	inner *store.ProductCacheSubscription
	ch    chan []productcache.Item
}

// pump converts record snapshots to items, keeping only the latest pending
// snapshot when the consumer lags.
func (s *storeSubscription) pump() {
	defer close(s.ch)
	for snapshot := range s.inner.C {
		items := make([]productcache.Item, 0, len(snapshot))
		for _, record := range snapshot {
			items = append(items, productcache.Item{
				ID:      record.RecordID,
				Name:    record.Name,
				GroupID: categorizer.GroupID(record.GroupID),
				AddedAt: time.Unix(record.AddedTs, 0),
			})
		}
		select {
		case <-s.ch:
		default:
		}
		s.ch <- items
	}
}

func (s *storeSubscription) Snapshots() <-chan []productcache.Item {
	return s.ch
}

func (s *storeSubscription) Cancel() {
	s.inner.Cancel()
}

// storeWriter adapts store writes to the productcache.Writer collaborator.
type storeWriter struct {
	store *store.Store
}

func (w *storeWriter) Put(ctx context.Context, listID string, item productcache.Item) error {
	_, err := w.store.UpsertProductCacheRecord(ctx, &store.ProductCacheRecord{
		ListUID:  listID,
		RecordID: item.ID,
		Name:     item.Name,
		GroupID:  string(item.GroupID),
		AddedTs:  item.AddedAt.Unix(),
	})
	return err
}

func (w *storeWriter) PatchGroup(ctx context.Context, listID string, recordID string, groupID categorizer.GroupID) error {
	return w.store.UpdateProductCacheGroup(ctx, &store.UpdateProductCacheGroup{
		ListUID:  listID,
		RecordID: recordID,
		GroupID:  string(groupID),
	})
}

var (
	_ productcache.Feed   = (*storeFeed)(nil)
	_ productcache.Writer = (*storeWriter)(nil)
)
