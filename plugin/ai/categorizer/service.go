package categorizer

import (
	"context"
	"log/slog"
)

// Resolver categorizes item names, consulting the product cache before the
// classifier. Categorize always produces some GroupID; it never blocks item
// entry on a classifier failure.
type Resolver struct {
	cache      CacheLookup
	classifier Classifier
}

// NewResolver creates a Resolver. Either collaborator may be nil: without a
// cache every name goes to the classifier, without a classifier misses
// resolve to GroupOther.
func NewResolver(cache CacheLookup, classifier Classifier) *Resolver {
	return &Resolver{
		cache:      cache,
		classifier: classifier,
	}
}

// Categorize resolves the department for an item name. A cache hit skips
// the classifier entirely; the result is NOT written back to the cache here
// (recording is the caller's explicit write step).
func (r *Resolver) Categorize(ctx context.Context, name string, language string) GroupID {
	if r.cache != nil {
		if groupID, ok := r.cache.LookupGroup(name); ok {
			return groupID
		}
	}

	if r.classifier == nil {
		return GroupOther
	}

	groupID, err := r.classifier.Classify(ctx, name, language)
	if err != nil {
		slog.Warn("item categorization failed, falling back to catch-all",
			slog.String("name", name), slog.String("error", err.Error()))
		return GroupOther
	}
	return groupID
}
