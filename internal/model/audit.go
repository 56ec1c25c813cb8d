package model

import (
	"encoding/json"
	"time"
)

type AuditAction string

const (
	AuditActionCreated           AuditAction = "Created"
	AuditActionStatusChange      AuditAction = "StatusChange"
	AuditActionFieldUpdate       AuditAction = "FieldUpdate"
	AuditActionNote              AuditAction = "Note"
	AuditActionRemediationReview AuditAction = "RemediationReview"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionCreated, AuditActionStatusChange, AuditActionFieldUpdate, AuditActionNote, AuditActionRemediationReview:
		return true
	}
	return false
}

type AuditLevel string

const (
	AuditLevelDebug AuditLevel = "DEBUG"
	AuditLevelInfo  AuditLevel = "INFO"
	AuditLevelWarn  AuditLevel = "WARN"
	AuditLevelError AuditLevel = "ERROR"
)

func (l AuditLevel) Valid() bool {
	switch l {
	case AuditLevelDebug, AuditLevelInfo, AuditLevelWarn, AuditLevelError:
		return true
	}
	return false
}

// AuditEntry is an immutable record of one action taken against one incident.
// Before and After hold only the fields the action changed.
type AuditEntry struct {
	AuditID    int64           `json:"auditId,string"`
	TrackingID string          `json:"trackingId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Action     AuditAction     `json:"action"`
	Level      AuditLevel      `json:"level"`
	Status     Status          `json:"status"`
	Actor      string          `json:"actor"`
	Timestamp  time.Time       `json:"timestamp"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Detail     string          `json:"detail,omitempty"`
	Generation int64           `json:"generation"`
}

// StatusTransition reads the status recorded in Before and After, if any.
func (e *AuditEntry) StatusTransition() (before, after Status) {
	var b, a struct {
		Status Status `json:"status"`
	}
	if len(e.Before) > 0 {
		_ = json.Unmarshal(e.Before, &b)
	}
	if len(e.After) > 0 {
		_ = json.Unmarshal(e.After, &a)
	}
	return b.Status, a.Status
}
