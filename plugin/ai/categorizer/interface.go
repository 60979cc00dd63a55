// Package categorizer assigns free-text grocery item names to a fixed set
// of store departments, using a per-list product cache first and an LLM as
// the fallback.
package categorizer

import "context"

// GroupID is one member of the fixed, closed set of grocery departments.
type GroupID string

const (
	GroupFruitsVeg  GroupID = "fruits_veg"
	GroupDairy      GroupID = "dairy"
	GroupBakery     GroupID = "bakery"
	GroupFrozen     GroupID = "frozen"
	GroupDryGoods   GroupID = "dry_goods"
	GroupCleaning   GroupID = "cleaning"
	GroupButcher    GroupID = "butcher"
	GroupFishes     GroupID = "fishes"
	GroupDrinks     GroupID = "drinks"
	GroupAlcohol    GroupID = "alcohol"
	GroupToiletries GroupID = "toiletries"

	// GroupOther is the catch-all used when classification is uncertain
	// or fails.
	GroupOther GroupID = "other"
)

// AllGroupIDs returns every member of the enumeration.
func AllGroupIDs() []GroupID {
	return []GroupID{
		GroupFruitsVeg,
		GroupDairy,
		GroupBakery,
		GroupFrozen,
		GroupDryGoods,
		GroupCleaning,
		GroupButcher,
		GroupFishes,
		GroupDrinks,
		GroupAlcohol,
		GroupToiletries,
		GroupOther,
	}
}

// IsValid reports whether g is a member of the enumeration.
func (g GroupID) IsValid() bool {
	for _, id := range AllGroupIDs() {
		if g == id {
			return true
		}
	}
	return false
}

// Classifier classifies an item name into a GroupID. Implementations may
// fail; callers are expected to fall back to GroupOther.
type Classifier interface {
	Classify(ctx context.Context, name string, language string) (GroupID, error)
}

// CacheLookup resolves an item name against previously categorized
// products. The second return is false on a miss.
type CacheLookup interface {
	LookupGroup(name string) (GroupID, bool)
}
