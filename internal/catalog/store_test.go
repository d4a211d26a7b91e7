package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/pos-quick-sale/internal/model"
)

// fakeFetcher returns a scripted catalog and counts fetches.
type fakeFetcher struct {
	items []model.CatalogItem
	err   error
	calls int
}

func (f *fakeFetcher) FetchCatalog(_ context.Context, _ string) ([]model.CatalogItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func TestStoreCurrentFetchesOnFirstUse(t *testing.T) {
	fetcher := &fakeFetcher{items: []model.CatalogItem{{ID: "1", Name: "Espresso"}}}
	store := NewStore(fetcher, time.Minute, zaptest.NewLogger(t))

	snap, err := store.Current(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, 1, fetcher.calls)

	// Fresh snapshot: no second fetch.
	_, err = store.Current(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestStoreRefreshReplacesWholesale(t *testing.T) {
	fetcher := &fakeFetcher{items: []model.CatalogItem{{ID: "1", Name: "Espresso", Stock: 10}}}
	store := NewStore(fetcher, 0, zaptest.NewLogger(t))

	first, err := store.Refresh(context.Background(), "t1")
	require.NoError(t, err)

	fetcher.items = []model.CatalogItem{{ID: "1", Name: "Espresso", Stock: 7}}
	second, err := store.Refresh(context.Background(), "t1")
	require.NoError(t, err)

	// The old snapshot stays intact for anyone still holding it.
	item, _ := first.Item("1")
	assert.Equal(t, 10, item.Stock)
	item, _ = second.Item("1")
	assert.Equal(t, 7, item.Stock)

	current, err := store.Peek("t1")
	require.NoError(t, err)
	assert.Same(t, second, current)
}

func TestStoreServesStaleSnapshotWhenRefreshFails(t *testing.T) {
	fetcher := &fakeFetcher{items: []model.CatalogItem{{ID: "1"}}}
	store := NewStore(fetcher, time.Nanosecond, zaptest.NewLogger(t))

	snap, err := store.Current(context.Background(), "t1")
	require.NoError(t, err)

	time.Sleep(time.Millisecond) // let the snapshot age past the TTL
	fetcher.err = errors.New("backend down")
	got, err := store.Current(context.Background(), "t1")
	require.NoError(t, err)
	assert.Same(t, snap, got, "stale snapshot beats no snapshot")
}

func TestStoreRefreshErrorWithNoCache(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("backend down")}
	store := NewStore(fetcher, time.Minute, zaptest.NewLogger(t))

	_, err := store.Current(context.Background(), "t1")
	assert.Error(t, err)
}

func TestStorePeekWithoutSnapshot(t *testing.T) {
	store := NewStore(&fakeFetcher{}, time.Minute, zaptest.NewLogger(t))
	_, err := store.Peek("unknown")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSnapshotItemLookup(t *testing.T) {
	snap := NewSnapshot([]model.CatalogItem{{ID: "1", Name: "Espresso"}}, time.Now())
	item, ok := snap.Item("1")
	require.True(t, ok)
	assert.Equal(t, "Espresso", item.Name)

	_, ok = snap.Item("nope")
	assert.False(t, ok)
}
