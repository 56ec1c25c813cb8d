package worker

import (
	"context"
	"time"

	"adr.app/ledger/internal/queue"
	"adr.app/ledger/internal/store"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// OrphanSource finds change messages left unacknowledged by a dead consumer.
type OrphanSource interface {
	Orphans(ctx context.Context, minIdle time.Duration, limit int64) ([]queue.Orphan, error)
	Adopt(ctx context.Context, claimant string, orphan queue.Orphan) (*queue.Message, error)
}

// Mirrors service.StoreProvider - defined here to avoid import cycles.
type StoreProvider interface {
	Incidents() store.IncidentStore
	Index() store.IndexStore
	Audit() store.AuditStore
	Changes() store.ChangeStore
}

// Mirrors service.TxRunner - defined here to avoid import cycles.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

// ChangeVerifier checks that a committed change reached the index.
type ChangeVerifier interface {
	Verify(ctx context.Context, msg queue.Message) (Outcome, error)
}
