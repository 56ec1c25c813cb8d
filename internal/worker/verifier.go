package worker

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"adr.app/ledger/internal/model"
	"adr.app/ledger/internal/queue"
	"adr.app/ledger/internal/store"
)

type Outcome string

const (
	OutcomeVerified        Outcome = "verified"
	OutcomeRepaired        Outcome = "repaired"
	OutcomeAlreadyVerified Outcome = "already_verified"
	OutcomeUnknownChange   Outcome = "unknown_change"
	// OutcomeAuditGap marks a verified change whose incident has fewer audit
	// entries than committed writes. The gap is reported, not repaired.
	OutcomeAuditGap Outcome = "audit_gap"
)

// Verifier compares an incident's index rows with the projections of its
// current record and rewrites them when they drifted.
type Verifier struct {
	txRunner TxRunner
	changes  store.ChangeStore
}

func NewVerifier(txRunner TxRunner, changes store.ChangeStore) *Verifier {
	return &Verifier{txRunner: txRunner, changes: changes}
}

func (v *Verifier) Verify(ctx context.Context, msg queue.Message) (Outcome, error) {
	var outcome Outcome
	err := v.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		change, err := sp.Changes().Get(ctx, msg.ChangeID)
		if errors.Is(err, store.ErrNotFound) {
			outcome = OutcomeUnknownChange
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading change: %w", err)
		}
		if change.VerifiedAt != nil {
			outcome = OutcomeAlreadyVerified
			return nil
		}

		key := change.Key()
		incident, err := sp.Incidents().GetForUpdate(ctx, key)
		if err != nil {
			return fmt.Errorf("locking incident: %w", err)
		}
		rows, err := sp.Index().Rows(ctx, key)
		if err != nil {
			return fmt.Errorf("reading index rows: %w", err)
		}

		outcome = OutcomeVerified
		if !ProjectionsMatch(incident, rows) {
			slog.WarnContext(ctx, "index projections drifted, repairing",
				"generation", incident.Generation,
				"rows", len(rows))
			if err := sp.Index().Refresh(ctx, incident); err != nil {
				return fmt.Errorf("repairing index: %w", err)
			}
			outcome = OutcomeRepaired
		}

		// Creation plus one entry per swap; notes only add to this.
		entries, err := sp.Audit().Count(ctx, key)
		if err != nil {
			return fmt.Errorf("counting audit entries: %w", err)
		}
		if entries < incident.Generation+1 {
			slog.WarnContext(ctx, "audit trail shorter than write history",
				"generation", incident.Generation,
				"audit_entries", entries)
			if outcome == OutcomeVerified {
				outcome = OutcomeAuditGap
			}
		}

		if err := sp.Changes().MarkVerified(ctx, change.ID); err != nil {
			return fmt.Errorf("marking change verified: %w", err)
		}
		return nil
	})
	if err != nil {
		if recErr := v.changes.RecordError(ctx, msg.ChangeID, err.Error()); recErr != nil {
			slog.WarnContext(ctx, "failed to record change error", "error", recErr)
		}
		return "", err
	}
	return outcome, nil
}

type projectionKey struct {
	dimension  model.Dimension
	value      string
	key        string
	generation int64
}

// ProjectionsMatch reports whether rows are exactly the projections of incident.
func ProjectionsMatch(incident *model.Incident, rows []model.IndexEntry) bool {
	want := keysOf(model.Projections(incident))
	got := keysOf(rows)
	return slices.Equal(want, got)
}

func keysOf(entries []model.IndexEntry) []projectionKey {
	keys := make([]projectionKey, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, projectionKey{
			dimension:  e.Dimension,
			value:      e.Value,
			key:        e.OccurredAtKey,
			generation: e.Generation,
		})
	}
	slices.SortFunc(keys, func(a, b projectionKey) int {
		return cmp.Or(cmp.Compare(a.dimension, b.dimension), cmp.Compare(a.value, b.value))
	})
	return keys
}
