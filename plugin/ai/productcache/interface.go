// Package productcache holds the per-list product category cache. It maps
// normalized item names to grocery departments, synchronized from a remote
// snapshot feed, and short-circuits LLM categorization calls.
package productcache

import (
	"context"
	"time"

	"github.com/shopsmart/shopsmart/plugin/ai/categorizer"
)

// Item is one cached product classification. ID is the normalized form of
// Name and is the stable key within a list. Only GroupID is ever corrected
// after creation.
type Item struct {
	ID      string
	Name    string
	GroupID categorizer.GroupID
	AddedAt time.Time
}

// Subscription is a live snapshot feed for one list. Snapshots delivers the
// complete current record set on every change, never deltas, until Cancel.
// Cancel is idempotent and closes the channel.
type Subscription interface {
	Snapshots() <-chan []Item
	Cancel()
}

// Feed provides per-list snapshot subscriptions to the remote product
// cache collections.
type Feed interface {
	Subscribe(ctx context.Context, listID string) (Subscription, error)
}

// Writer persists product cache records remotely. Writes are not reflected
// locally until the feed delivers the next snapshot.
type Writer interface {
	Put(ctx context.Context, listID string, item Item) error
	PatchGroup(ctx context.Context, listID string, recordID string, groupID categorizer.GroupID) error
}
