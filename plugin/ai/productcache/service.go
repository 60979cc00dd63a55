package productcache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopsmart/shopsmart/plugin/ai/categorizer"
)

// Service owns the in-memory product caches, one independent namespace per
// list, and the single live subscription for the active list. Reads are
// synchronous against the latest local snapshot; writes go to the remote
// store and become visible through the feed, never optimistically.
type Service struct {
	feed   Feed
	writer Writer

	mu           sync.RWMutex
	caches       map[string]map[string]Item
	activeListID string
	sub          Subscription
	// generation increments on every scope switch so a late snapshot from
	// a just-cancelled subscription is ignored.
	generation uint64
}

// NewService creates a new product cache service.
func NewService(feed Feed, writer Writer) *Service {
	return &Service{
		feed:   feed,
		writer: writer,
		caches: map[string]map[string]Item{},
	}
}

// SetActiveList switches the cache to the given list. The empty string
// means no active list. Switching to the current list is a no-op.
// Otherwise the previous subscription is cancelled exactly once before a
// new one is established, so at most one subscription is ever live.
func (s *Service) SetActiveList(ctx context.Context, listID string) {
	s.mu.Lock()
	if s.activeListID == listID {
		s.mu.Unlock()
		return
	}

	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}

	s.generation++
	gen := s.generation
	s.activeListID = listID
	s.mu.Unlock()

	if listID == "" {
		return
	}

	sub, err := s.feed.Subscribe(ctx, listID)
	if err != nil {
		// The store for this list stays stale/absent until the scope is
		// set again; reads degrade to misses.
		slog.Warn("failed to subscribe to product cache feed",
			slog.String("list", listID), slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	if s.generation != gen {
		// The scope changed again while subscribing.
		s.mu.Unlock()
		sub.Cancel()
		return
	}
	s.sub = sub
	s.mu.Unlock()

	go s.consume(listID, sub, gen)
}

// Close cancels the active subscription, if any.
func (s *Service) Close() {
	s.SetActiveList(context.Background(), "")
}

// ActiveListID returns the list the cache is currently scoped to.
func (s *Service) ActiveListID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeListID
}

// consume applies snapshots until the subscription is cancelled. Each
// snapshot atomically replaces the list's map with a fresh one keyed by
// item id; the cache never patches incrementally.
func (s *Service) consume(listID string, sub Subscription, gen uint64) {
	for snapshot := range sub.Snapshots() {
		rebuilt := make(map[string]Item, len(snapshot))
		for _, item := range snapshot {
			rebuilt[item.ID] = item
		}

		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			return
		}
		s.caches[listID] = rebuilt
		s.mu.Unlock()

		slog.Debug("product cache synced",
			slog.String("list", listID), slog.Int("items", len(rebuilt)))
	}
}

// AddProduct persists a record for the active list with key
// Normalize(name) and display name trim(name). Fire-and-forget for the
// local cache: the entry appears only with the feed's next snapshot.
// No-op when no list is active.
func (s *Service) AddProduct(ctx context.Context, name string, groupID categorizer.GroupID) error {
	s.mu.RLock()
	listID := s.activeListID
	s.mu.RUnlock()
	if listID == "" {
		return nil
	}

	item := Item{
		ID:      Normalize(name),
		Name:    strings.TrimSpace(name),
		GroupID: groupID,
		AddedAt: time.Now(),
	}
	return s.writer.Put(ctx, listID, item)
}

// UpdateProductCategory overwrites the group of an existing record in the
// active list. Same eventual-visibility contract as AddProduct; no-op when
// no list is active.
func (s *Service) UpdateProductCategory(ctx context.Context, recordID string, groupID categorizer.GroupID) error {
	s.mu.RLock()
	listID := s.activeListID
	s.mu.RUnlock()
	if listID == "" {
		return nil
	}

	return s.writer.PatchGroup(ctx, listID, recordID, groupID)
}

// LookupGroup resolves a name against the active list's cache. It adapts
// SearchSimilar to the categorizer's CacheLookup collaborator.
func (s *Service) LookupGroup(name string) (categorizer.GroupID, bool) {
	item, ok := s.SearchSimilar(name)
	if !ok {
		return categorizer.GroupOther, false
	}
	return item.GroupID, true
}

var _ categorizer.CacheLookup = (*Service)(nil)
