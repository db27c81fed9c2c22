// internal/workers/ledger_processor_test.go
package workers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/stockledger/internal/adapters/redis_adapter"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
	"github.com/ammerola/stockledger/internal/workers"
	"github.com/ammerola/stockledger/test/helpers"
	"github.com/ammerola/stockledger/test/mocks"
)

type stubRelay struct {
	calls int
	n     int
	err   error
}

func (s *stubRelay) Relay(ctx context.Context, batchSize int) (int, error) {
	s.calls++
	return s.n, s.err
}

func newLocker(t *testing.T) *redis_a.Locker {
	t.Helper()
	rdb := helpers.SetupTestRedis(t)
	return redis_a.NewLocker(redis_a.NewCache(rdb.Client, time.Hour, helpers.TestLogger()))
}

func TestLedgerProcessor_ProcessReconcile(t *testing.T) {
	ctx := context.Background()
	key := domain.SnapshotKey{WarehouseID: uuid.New(), ProductID: uuid.New(), ClientID: uuid.New()}

	t.Run("single_key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		movements := mocks.NewMockMovementService(ctrl)
		movements.EXPECT().Reconcile(gomock.Any(), key).Return(&ports.ReconcileResult{Key: key, Repaired: true}, nil)

		processor := workers.NewLedgerProcessor(movements, &stubRelay{}, newLocker(t), 50, 50, time.Minute, helpers.TestLogger())
		task, err := workers.NewReconcileTask(&key)
		require.NoError(t, err)

		require.NoError(t, processor.ProcessReconcile(ctx, task))
	})

	t.Run("sweep", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		movements := mocks.NewMockMovementService(ctrl)
		movements.EXPECT().ReconcileAll(gomock.Any(), 50).Return(&ports.ReconcileSummary{Checked: 4, Failed: 1}, nil)

		processor := workers.NewLedgerProcessor(movements, &stubRelay{}, newLocker(t), 50, 50, time.Minute, helpers.TestLogger())
		task, err := workers.NewReconcileTask(nil)
		require.NoError(t, err)

		require.NoError(t, processor.ProcessReconcile(ctx, task))
	})

	t.Run("sweep_skipped_while_locked", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		movements := mocks.NewMockMovementService(ctrl)
		locker := newLocker(t)
		release, err := locker.TryLock(ctx, "reconcile-sweep", time.Minute)
		require.NoError(t, err)
		require.NotNil(t, release)

		processor := workers.NewLedgerProcessor(movements, &stubRelay{}, locker, 50, 50, time.Minute, helpers.TestLogger())
		task, err := workers.NewReconcileTask(nil)
		require.NoError(t, err)

		require.NoError(t, processor.ProcessReconcile(ctx, task))
	})

	t.Run("key_error_is_returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		movements := mocks.NewMockMovementService(ctrl)
		movements.EXPECT().Reconcile(gomock.Any(), key).Return(nil, errors.New("replay failed"))

		processor := workers.NewLedgerProcessor(movements, &stubRelay{}, newLocker(t), 50, 50, time.Minute, helpers.TestLogger())
		task, err := workers.NewReconcileTask(&key)
		require.NoError(t, err)

		require.Error(t, processor.ProcessReconcile(ctx, task))
	})
}

func TestLedgerProcessor_ProcessOutbox(t *testing.T) {
	ctx := context.Background()
	task := asynq.NewTask(workers.TypeOutboxRelay, nil)

	tests := []struct {
		name  string
		relay *stubRelay
	}{
		{name: "publishes", relay: &stubRelay{n: 3}},
		{name: "publish_failure_waits_for_next_run", relay: &stubRelay{n: 1, err: errors.New("broker down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			locker := newLocker(t)
			processor := workers.NewLedgerProcessor(mocks.NewMockMovementService(ctrl), tt.relay, locker, 50, 50, time.Minute, helpers.TestLogger())

			require.NoError(t, processor.ProcessOutbox(ctx, task))
			assert.Equal(t, 1, tt.relay.calls)

			release, err := locker.TryLock(ctx, "outbox-relay", time.Minute)
			require.NoError(t, err)
			assert.NotNil(t, release, "lock released after run")
		})
	}
}
