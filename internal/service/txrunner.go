package service

import (
	"context"

	"adr.app/ledger/core/db"
	"adr.app/ledger/core/db/sqlc"
	"adr.app/ledger/internal/store"
)

// StoreProvider exposes the stores a ledger operation may touch.
type StoreProvider interface {
	Incidents() store.IncidentStore
	Index() store.IndexStore
	Audit() store.AuditStore
	Changes() store.ChangeStore
	SOPs() store.SOPStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q *sqlc.Queries) error {
		return fn(store.NewStores(q))
	})
}
