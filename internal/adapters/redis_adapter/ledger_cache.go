// internal/adapters/redis_adapter/ledger_cache.go
package redis_a

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// SnapshotCache caches snapshot rows under snap:<warehouse>:<product>:<client>.
type SnapshotCache struct {
	cache ports.CacheRepository
	ttl   time.Duration
}

var _ ports.SnapshotCache = (*SnapshotCache)(nil)

// NewSnapshotCache creates a snapshot cache
func NewSnapshotCache(cache ports.CacheRepository, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{cache: cache, ttl: ttl}
}

func snapshotKey(key domain.SnapshotKey) string {
	return BuildKey(PrefixSnapshot, key.WarehouseID.String(), key.ProductID.String(), key.ClientID.String())
}

func (c *SnapshotCache) GetSnapshot(ctx context.Context, key domain.SnapshotKey) (*domain.InventorySnapshot, error) {
	var snap domain.InventorySnapshot
	if err := c.cache.Get(ctx, snapshotKey(key), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *SnapshotCache) SetSnapshot(ctx context.Context, snap *domain.InventorySnapshot) error {
	return c.cache.SetWithTTL(ctx, snapshotKey(snap.Key()), snap, c.ttl)
}

func (c *SnapshotCache) InvalidateSnapshot(ctx context.Context, key domain.SnapshotKey) error {
	return c.cache.Delete(ctx, snapshotKey(key))
}

// ScanSessionStore keeps batch scan sessions in Redis. Each save renews the
// TTL, so an idle session expires on its own.
type ScanSessionStore struct {
	cache ports.CacheRepository
	ttl   time.Duration
}

var _ ports.ScanSessionStore = (*ScanSessionStore)(nil)

// NewScanSessionStore creates a session store
func NewScanSessionStore(cache ports.CacheRepository, ttl time.Duration) *ScanSessionStore {
	return &ScanSessionStore{cache: cache, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return BuildKey(PrefixScan, id.String())
}

func (s *ScanSessionStore) SaveSession(ctx context.Context, session *domain.ScanSession) error {
	return s.cache.SetWithTTL(ctx, sessionKey(session.ID), session, s.ttl)
}

func (s *ScanSessionStore) GetSession(ctx context.Context, id uuid.UUID) (*domain.ScanSession, error) {
	var session domain.ScanSession
	if err := s.cache.Get(ctx, sessionKey(id), &session); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (s *ScanSessionStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return s.cache.Delete(ctx, sessionKey(id))
}

// ExportStatusStore keeps async export progress under export:<id>.
type ExportStatusStore struct {
	cache ports.CacheRepository
	ttl   time.Duration
}

var _ ports.ExportStatusStore = (*ExportStatusStore)(nil)

// NewExportStatusStore creates an export status store
func NewExportStatusStore(cache ports.CacheRepository, ttl time.Duration) *ExportStatusStore {
	return &ExportStatusStore{cache: cache, ttl: ttl}
}

func (s *ExportStatusStore) SaveExport(ctx context.Context, status *ports.ExportStatus) error {
	return s.cache.SetWithTTL(ctx, BuildKey(PrefixExport, status.ID), status, s.ttl)
}

func (s *ExportStatusStore) GetExport(ctx context.Context, id string) (*ports.ExportStatus, error) {
	var status ports.ExportStatus
	if err := s.cache.Get(ctx, BuildKey(PrefixExport, id), &status); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

// ErrLockLost is returned by a release func when the lock expired and may now
// belong to someone else.
var ErrLockLost = errors.New("lock expired before release")

// Locker hands out best-effort exclusive locks with an expiry.
type Locker struct {
	cache ports.CacheRepository
}

// NewLocker creates a locker
func NewLocker(cache ports.CacheRepository) *Locker {
	return &Locker{cache: cache}
}

// TryLock takes the named lock for ttl. The returned release func is nil when
// the lock is already held. Release only deletes the lock while it still
// carries this holder's token, so a holder that outlived ttl cannot drop a
// lock another worker has since taken.
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error) {
	key := BuildKey(PrefixLock, name)
	token := uuid.NewString()
	ok, err := l.cache.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to take lock %s: %w", name, err)
	}
	if !ok {
		return nil, nil
	}
	return func(ctx context.Context) error {
		released, err := l.cache.DeleteIfEqual(ctx, key, token)
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", name, err)
		}
		if !released {
			return fmt.Errorf("%w: %s", ErrLockLost, name)
		}
		return nil
	}, nil
}
