package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every record logged with a context that carries them.
type LogFields struct {
	TrackingID *string // Incident tracking id
	AuditID    *int64  // Audit entry id written by the current operation
	ChangeID   *int64  // incident_changes row being published or verified
	MessageID  *string // Redis stream message ID
	Dimension  *string // Index dimension under inspection
	Actor      *string
	Component  string // e.g. "ledger.worker.verifier"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, newer non-nil values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.TrackingID != nil {
		result.TrackingID = new.TrackingID
	}
	if new.AuditID != nil {
		result.AuditID = new.AuditID
	}
	if new.ChangeID != nil {
		result.ChangeID = new.ChangeID
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.Dimension != nil {
		result.Dimension = new.Dimension
	}
	if new.Actor != nil {
		result.Actor = new.Actor
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// logger.WithLogFields(ctx, logger.LogFields{TrackingID: logger.Ptr(key.TrackingID)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen bytes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
