package queue

import (
	"time"

	"adr.app/ledger/internal/model"
)

type TaskType string

const (
	// TaskTypeChangeCommitted is published right after an incident write commits.
	TaskTypeChangeCommitted TaskType = "change_committed"
	// TaskTypeChangeReconciled is republished by the reconciler for changes never verified.
	TaskTypeChangeReconciled TaskType = "change_reconciled"
)

func (t TaskType) Valid() bool {
	return t == TaskTypeChangeCommitted || t == TaskTypeChangeReconciled
}

// ChangeMessage announces one committed incident write.
type ChangeMessage struct {
	TaskType   TaskType
	ChangeID   int64
	TrackingID string
	OccurredAt time.Time
	Generation int64
	TraceID    *string
	Attempt    int
}

func NewChangeMessage(taskType TaskType, change *model.IncidentChange) ChangeMessage {
	return ChangeMessage{
		TaskType:   taskType,
		ChangeID:   change.ID,
		TrackingID: change.TrackingID,
		OccurredAt: change.OccurredAt,
		Generation: change.Generation,
		TraceID:    change.TraceID,
	}
}
