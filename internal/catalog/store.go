package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/pos-quick-sale/internal/model"
)

// ErrNoSnapshot is returned when a snapshot is requested before the
// first successful fetch for that tenant.
var ErrNoSnapshot = errors.New("no catalog snapshot loaded for tenant")

// Fetcher fetches a tenant's full catalog from the backend.  The
// concrete implementation lives in internal/backend; the interface
// keeps the store testable against an in-memory fake.
type Fetcher interface {
	FetchCatalog(ctx context.Context, tenant string) ([]model.CatalogItem, error)
}

// Store caches one catalog snapshot per tenant.  Snapshots are
// refreshed wholesale: a fetch builds a new Snapshot which replaces
// the old one under the lock, so engine code holding the previous
// snapshot keeps a consistent view.  TTL controls staleness: Current
// transparently refreshes a snapshot older than the TTL.  A TTL of
// zero disables age-based refresh.
type Store struct {
	fetcher Fetcher
	ttl     time.Duration
	logger  *zap.Logger

	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

// NewStore constructs a Store over the given fetcher.
func NewStore(fetcher Fetcher, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logger,
		snaps:   make(map[string]*Snapshot),
	}
}

// Refresh fetches the tenant's catalog and replaces the cached
// snapshot.  It is called when a register session opens, after every
// committed sale (stock has changed server-side), and on explicit
// operator request.
func (s *Store) Refresh(ctx context.Context, tenant string) (*Snapshot, error) {
	items, err := s.fetcher.FetchCatalog(ctx, tenant)
	if err != nil {
		s.logger.Error("catalog refresh failed",
			zap.String("tenant", tenant), zap.Error(err))
		return nil, err
	}
	snap := NewSnapshot(items, time.Now().UTC())
	s.mu.Lock()
	s.snaps[tenant] = snap
	s.mu.Unlock()
	s.logger.Info("catalog snapshot refreshed",
		zap.String("tenant", tenant), zap.Int("items", len(items)))
	return snap, nil
}

// Current returns the tenant's snapshot, fetching one when none is
// cached yet or the cached one is older than the TTL.  When a refresh
// of a stale snapshot fails, the stale snapshot is returned instead:
// advisory stock checks against slightly old data beat refusing to
// sell, and the backend re-validates at submission time anyway.
func (s *Store) Current(ctx context.Context, tenant string) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snaps[tenant]
	s.mu.RUnlock()

	if snap == nil {
		return s.Refresh(ctx, tenant)
	}
	if s.ttl > 0 && snap.Age(time.Now().UTC()) > s.ttl {
		if fresh, err := s.Refresh(ctx, tenant); err == nil {
			return fresh, nil
		}
		s.logger.Warn("serving stale catalog snapshot after failed refresh",
			zap.String("tenant", tenant))
	}
	return snap, nil
}

// Peek returns the cached snapshot without any fetch, or ErrNoSnapshot
// when the tenant has none.
func (s *Store) Peek(tenant string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap := s.snaps[tenant]; snap != nil {
		return snap, nil
	}
	return nil, ErrNoSnapshot
}
