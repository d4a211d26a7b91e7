// Package catalog holds the point-in-time copy of sellable items used
// for local matching and stock checks, together with the query
// resolution logic that turns operator input into catalog entries.
package catalog

import (
	"time"

	"github.com/iliyamo/pos-quick-sale/internal/model"
)

// Snapshot is an immutable point-in-time copy of the tenant's
// sellable items.  Items preserves backend catalog order, which is
// also the order resolver matches are returned in.  A snapshot is
// replaced wholesale on refresh and never mutated, so readers may
// keep a reference across several operations without locking.
type Snapshot struct {
	Items     []model.CatalogItem
	FetchedAt time.Time

	byID map[string]int
}

// NewSnapshot builds a snapshot over items, indexing them by id.
func NewSnapshot(items []model.CatalogItem, fetchedAt time.Time) *Snapshot {
	byID := make(map[string]int, len(items))
	for i, it := range items {
		byID[it.ID] = i
	}
	return &Snapshot{Items: items, FetchedAt: fetchedAt, byID: byID}
}

// Item returns the catalog entry with the given id.  The second
// return value is false when the id is not in the snapshot.
func (s *Snapshot) Item(id string) (model.CatalogItem, bool) {
	if s == nil {
		return model.CatalogItem{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return model.CatalogItem{}, false
	}
	return s.Items[i], true
}

// Age reports how long ago the snapshot was fetched.
func (s *Snapshot) Age(now time.Time) time.Duration {
	if s == nil {
		return 1<<63 - 1
	}
	return now.Sub(s.FetchedAt)
}
