package logger

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"

	"adr.app/ledger/core/config"
)

func Setup(cfg config.Config) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	switch {
	case cfg.IsProduction() && cfg.OTel.Enabled():
		handler = otelslog.NewHandler(
			cfg.OTel.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)
	case cfg.IsProduction():
		handler = NewTraceHandler(slog.NewJSONHandler(os.Stdout, opts))
	default:
		handler = NewTraceHandler(slog.NewTextHandler(os.Stdout, opts))
	}

	slog.SetDefault(slog.New(handler).With("service", string(cfg.Service)))
}

type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	r.AddAttrs(fieldAttrs(GetLogFields(ctx))...)

	return h.Handler.Handle(ctx, r)
}

func fieldAttrs(fields LogFields) []slog.Attr {
	var attrs []slog.Attr
	if fields.TrackingID != nil {
		attrs = append(attrs, slog.String("tracking_id", *fields.TrackingID))
	}
	if fields.AuditID != nil {
		attrs = append(attrs, slog.Int64("audit_id", *fields.AuditID))
	}
	if fields.ChangeID != nil {
		attrs = append(attrs, slog.Int64("change_id", *fields.ChangeID))
	}
	if fields.MessageID != nil {
		attrs = append(attrs, slog.String("message_id", *fields.MessageID))
	}
	if fields.Dimension != nil {
		attrs = append(attrs, slog.String("dimension", *fields.Dimension))
	}
	if fields.Actor != nil {
		attrs = append(attrs, slog.String("actor", *fields.Actor))
	}
	if fields.Component != "" {
		attrs = append(attrs, slog.String("component", fields.Component))
	}
	return attrs
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}
