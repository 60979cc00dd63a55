package store

import (
	"context"
	"sync"
)

// ProductCacheRecord maps a normalized product name to a grocery group for
// one list. The record id is the normalized form of Name and is the stable
// key of the per-list product cache collection.
type ProductCacheRecord struct {
	ListUID  string
	RecordID string
	Name     string
	GroupID  string
	AddedTs  int64
}

type UpdateProductCacheGroup struct {
	ListUID  string
	RecordID string
	GroupID  string
}

type FindProductCacheRecord struct {
	ListUID  *string
	RecordID *string
}

// ProductCacheSubscription is a live snapshot feed for one list's product
// cache collection. Every write to the collection delivers the complete
// current record set on C, never a delta. Cancel is idempotent.
type ProductCacheSubscription struct {
	C chan []*ProductCacheRecord

	hub     *productCacheHub
	listUID string
	id      int64
	closed  bool
}

// Cancel terminates the subscription and closes C. Safe to call more than
// once; later calls are no-ops.
func (sub *ProductCacheSubscription) Cancel() {
	sub.hub.unsubscribe(sub)
}

// productCacheHub fans product-cache snapshots out to subscribers, keyed by
// list UID. Delivery keeps only the latest pending snapshot per subscriber
// so a slow consumer never blocks a write.
type productCacheHub struct {
	mu     sync.Mutex
	nextID int64
	subs   map[string]map[int64]*ProductCacheSubscription
}

func newProductCacheHub() *productCacheHub {
	return &productCacheHub{
		subs: map[string]map[int64]*ProductCacheSubscription{},
	}
}

func (h *productCacheHub) subscribe(listUID string) *ProductCacheSubscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &ProductCacheSubscription{
		C:       make(chan []*ProductCacheRecord, 1),
		hub:     h,
		listUID: listUID,
		id:      h.nextID,
	}

	if h.subs[listUID] == nil {
		h.subs[listUID] = map[int64]*ProductCacheSubscription{}
	}
	h.subs[listUID][sub.id] = sub
	return sub
}

func (h *productCacheHub) unsubscribe(sub *ProductCacheSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true

	if m, ok := h.subs[sub.listUID]; ok {
		delete(m, sub.id)
		if len(m) == 0 {
			delete(h.subs, sub.listUID)
		}
	}
	close(sub.C)
}

// deliver replaces any pending, unconsumed snapshot with the newer one.
// Must be called with h.mu held.
func (h *productCacheHub) deliver(sub *ProductCacheSubscription, snapshot []*ProductCacheRecord) {
	if sub.closed {
		return
	}
	select {
	case <-sub.C:
	default:
	}
	sub.C <- snapshot
}

func (h *productCacheHub) broadcast(listUID string, snapshot []*ProductCacheRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs[listUID] {
		h.deliver(sub, snapshot)
	}
}

// WatchProductCache subscribes to the full-snapshot change feed for one
// list's product cache. The current record set is delivered immediately,
// then again after every successful write to the collection.
func (s *Store) WatchProductCache(ctx context.Context, listUID string) (*ProductCacheSubscription, error) {
	snapshot, err := s.driver.ListProductCacheRecords(ctx, &FindProductCacheRecord{ListUID: &listUID})
	if err != nil {
		return nil, err
	}

	sub := s.productCacheHub.subscribe(listUID)
	s.productCacheHub.mu.Lock()
	s.productCacheHub.deliver(sub, snapshot)
	s.productCacheHub.mu.Unlock()
	return sub, nil
}

// UpsertProductCacheRecord writes one record and notifies watchers of the
// list with a fresh snapshot.
func (s *Store) UpsertProductCacheRecord(ctx context.Context, upsert *ProductCacheRecord) (*ProductCacheRecord, error) {
	record, err := s.driver.UpsertProductCacheRecord(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.notifyProductCacheWatchers(ctx, upsert.ListUID)
	return record, nil
}

// UpdateProductCacheGroup overwrites the group of one record and notifies
// watchers of the list with a fresh snapshot.
func (s *Store) UpdateProductCacheGroup(ctx context.Context, update *UpdateProductCacheGroup) error {
	if err := s.driver.UpdateProductCacheGroup(ctx, update); err != nil {
		return err
	}
	s.notifyProductCacheWatchers(ctx, update.ListUID)
	return nil
}

func (s *Store) ListProductCacheRecords(ctx context.Context, find *FindProductCacheRecord) ([]*ProductCacheRecord, error) {
	return s.driver.ListProductCacheRecords(ctx, find)
}

func (s *Store) notifyProductCacheWatchers(ctx context.Context, listUID string) {
	snapshot, err := s.driver.ListProductCacheRecords(ctx, &FindProductCacheRecord{ListUID: &listUID})
	if err != nil {
		// Watchers keep their previous snapshot; the next write retries.
		return
	}
	s.productCacheHub.broadcast(listUID, snapshot)
}
