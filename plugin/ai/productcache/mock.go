package productcache

import (
	"context"
	"sync"

	"github.com/shopsmart/shopsmart/plugin/ai/categorizer"
)

// MockFeed is a mock implementation of Feed for testing. Snapshots are
// pushed manually with PushSnapshot.
type MockFeed struct {
	mu   sync.Mutex
	subs map[string][]*MockSubscription

	SubscribeErr error

	subscribeCount int
	cancelCount    int
}

// NewMockFeed creates a new MockFeed.
func NewMockFeed() *MockFeed {
	return &MockFeed{subs: map[string][]*MockSubscription{}}
}

// Subscribe registers a subscription for the list.
func (f *MockFeed) Subscribe(_ context.Context, listID string) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}

	f.subscribeCount++
	sub := &MockSubscription{
		feed: f,
		ch:   make(chan []Item, 16),
	}
	f.subs[listID] = append(f.subs[listID], sub)
	return sub, nil
}

// PushSnapshot delivers a full snapshot to every live subscription of the
// list.
func (f *MockFeed) PushSnapshot(listID string, snapshot []Item) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs[listID] {
		if !sub.cancelled {
			sub.ch <- snapshot
		}
	}
}

// SubscribeCount returns how many subscriptions were established.
func (f *MockFeed) SubscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribeCount
}

// CancelCount returns how many subscriptions were cancelled.
func (f *MockFeed) CancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelCount
}

// MockSubscription is the Subscription returned by MockFeed.
type MockSubscription struct {
	feed      *MockFeed
	ch        chan []Item
	cancelled bool
}

func (s *MockSubscription) Snapshots() <-chan []Item {
	return s.ch
}

// Cancel is idempotent.
func (s *MockSubscription) Cancel() {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()

	if s.cancelled {
		return
	}
	s.cancelled = true
	s.feed.cancelCount++
	close(s.ch)
}

// MockWriter is a mock implementation of Writer for testing.
type MockWriter struct {
	mu sync.Mutex

	PutErr   error
	PatchErr error

	Puts    []Item
	Patches []PatchCall
}

// PatchCall records one PatchGroup invocation.
type PatchCall struct {
	ListID   string
	RecordID string
	GroupID  categorizer.GroupID
}

// NewMockWriter creates a new MockWriter.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

func (w *MockWriter) Put(_ context.Context, _ string, item Item) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.PutErr != nil {
		return w.PutErr
	}
	w.Puts = append(w.Puts, item)
	return nil
}

func (w *MockWriter) PatchGroup(_ context.Context, listID string, recordID string, groupID categorizer.GroupID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.PatchErr != nil {
		return w.PatchErr
	}
	w.Patches = append(w.Patches, PatchCall{ListID: listID, RecordID: recordID, GroupID: groupID})
	return nil
}

// Ensure mocks implement their interfaces
var (
	_ Feed         = (*MockFeed)(nil)
	_ Subscription = (*MockSubscription)(nil)
	_ Writer       = (*MockWriter)(nil)
)
