package productcache

import (
	"sort"
	"strings"
)

// Normalize returns the canonical key for a product name: lowercased,
// trimmed, with every internal whitespace run collapsed to a single space.
// Idempotent; the sole definition of "same product" for exact matching.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// SearchSimilar finds the best cached entry for a free-text name in the
// active list: an exact key match first, otherwise the first record whose
// key and the normalized text contain one another either way. When several
// records satisfy the substring relation the winner is map iteration
// order, i.e. deliberately unspecified. Returns false when no list is
// active, its cache is empty, or nothing matches.
func (s *Service) SearchSimilar(text string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cache := s.caches[s.activeListID]
	if s.activeListID == "" || len(cache) == 0 {
		return Item{}, false
	}

	normalized := Normalize(text)
	if item, ok := cache[normalized]; ok {
		return item, true
	}

	for key, item := range cache {
		if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
			return item, true
		}
	}
	return Item{}, false
}

// GetSuggestions returns up to limit display names whose normalized form
// contains the normalized input, for autocompletion. The scan stops as
// soon as limit candidates are collected; results are sorted shortest name
// first with encounter order breaking ties. Inputs shorter than two
// characters yield nothing.
func (s *Service) GetSuggestions(input string, limit int) []string {
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cache := s.caches[s.activeListID]
	if s.activeListID == "" || len(cache) == 0 {
		return nil
	}

	normalized := Normalize(input)
	if len(normalized) < 2 {
		return nil
	}

	suggestions := []string{}
	for _, item := range cache {
		if strings.Contains(Normalize(item.Name), normalized) {
			suggestions = append(suggestions, item.Name)
			if len(suggestions) >= limit {
				break
			}
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return len(suggestions[i]) < len(suggestions[j])
	})
	return suggestions
}
