// internal/core/ports/cache.go
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/google/uuid"
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for cache operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get decodes the cached JSON into dest or returns ErrCacheMiss.
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// SetNX sets key only when absent; it backs the job locks.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	// DeleteIfEqual deletes key only while it still holds value.
	DeleteIfEqual(ctx context.Context, key string, value interface{}) (bool, error)
	Ping(ctx context.Context) error
}

// SnapshotCache is a read-through cache of snapshot rows. Get returns
// ErrCacheMiss when the key is absent.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, key domain.SnapshotKey) (*domain.InventorySnapshot, error)
	SetSnapshot(ctx context.Context, snap *domain.InventorySnapshot) error
	InvalidateSnapshot(ctx context.Context, key domain.SnapshotKey) error
}

// ScanSessionStore keeps batch scan sessions. Get returns nil, nil when the
// session expired or never existed.
type ScanSessionStore interface {
	SaveSession(ctx context.Context, session *domain.ScanSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*domain.ScanSession, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
