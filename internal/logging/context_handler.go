package logging

import (
	"context"
	"log/slog"
)

// contextFieldHandler wraps another handler and stamps every record with the
// correlation attributes carried by the context (run id, stage, title id).
// Call sites that use the Context log variants get the fields for free.
type contextFieldHandler struct {
	base slog.Handler
}

func newContextFieldHandler(base slog.Handler) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &contextFieldHandler{base: base}
}

func (h *contextFieldHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *contextFieldHandler) Handle(ctx context.Context, record slog.Record) error {
	if fields := ContextFields(ctx); len(fields) > 0 {
		record.AddAttrs(fields...)
	}
	return h.base.Handle(ctx, record)
}

func (h *contextFieldHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextFieldHandler{base: h.base.WithAttrs(attrs)}
}

func (h *contextFieldHandler) WithGroup(name string) slog.Handler {
	return &contextFieldHandler{base: h.base.WithGroup(name)}
}
