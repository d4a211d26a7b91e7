package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/pos-quick-sale/internal/model"
)

// ErrNotFound is returned by ResolveRemote when neither the local
// snapshot nor the backend exact-code lookups produced a match.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("no catalog item matches the query")

// MatchSet is the ordered result of resolving a query: zero, one or
// many catalog entries in snapshot (catalog) order.
type MatchSet []model.CatalogItem

// Unique reports whether the set contains exactly one entry, which is
// the barcode fast path: a scanned code should resolve uniquely and
// go straight onto the ticket.
func (m MatchSet) Unique() bool { return len(m) == 1 }

// Resolve matches a free-text or scanned query against the snapshot.
// The query is trimmed and case-folded, then compared as a substring
// of the item name, custom code and scan code.  An empty query yields
// an empty MatchSet; that is not an error, it simply means there is
// nothing to match yet.  Resolve is a pure function over its
// arguments so it can be exercised without any session state.
func Resolve(query string, snap *Snapshot) MatchSet {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || snap == nil {
		return MatchSet{}
	}
	out := MatchSet{}
	for _, it := range snap.Items {
		if strings.Contains(strings.ToLower(it.Name), q) ||
			(it.CustomCode != "" && strings.Contains(strings.ToLower(it.CustomCode), q)) ||
			(it.ScanCode != "" && strings.Contains(strings.ToLower(it.ScanCode), q)) {
			out = append(out, it)
		}
	}
	return out
}

// RemoteLookup is the backend fallback used when the local snapshot
// has no match: exact scan code first, then exact custom code.
type RemoteLookup interface {
	LookupByScanCode(ctx context.Context, tenant, code string) ([]model.CatalogItem, error)
	LookupByCustomCode(ctx context.Context, tenant, code string) ([]model.CatalogItem, error)
}

// ResolveRemote resolves a query with the remote fallback enabled.
// Local matches win outright.  On zero local matches it performs the
// two sequential exact-code lookups, first hit wins; if both miss the
// resolution fails with ErrNotFound.  Lookup transport errors are
// returned as-is so the caller can distinguish "backend said no" from
// "backend unreachable".
func ResolveRemote(ctx context.Context, lookup RemoteLookup, tenant, query string, snap *Snapshot) (MatchSet, error) {
	if local := Resolve(query, snap); len(local) > 0 {
		return local, nil
	}
	code := strings.TrimSpace(query)
	if code == "" {
		return MatchSet{}, nil
	}
	items, err := lookup.LookupByScanCode(ctx, tenant, code)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		items, err = lookup.LookupByCustomCode(ctx, tenant, code)
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return MatchSet(items), nil
}
