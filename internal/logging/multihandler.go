package logging

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler is an slog.Handler that forwards each record to a fixed set
// of targets, so one logger can feed the console, the session log file, and
// a network sink at once.
type MultiHandler struct {
	targets []slog.Handler
}

// NewMultiHandler builds a MultiHandler over the given targets. Nil entries
// are dropped.
func NewMultiHandler(targets ...slog.Handler) *MultiHandler {
	kept := make([]slog.Handler, 0, len(targets))
	for _, h := range targets {
		if h != nil {
			kept = append(kept, h)
		}
	}
	return &MultiHandler{targets: kept}
}

// Enabled reports whether at least one target accepts the level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.targets {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every target that accepts its level. A
// failing target does not stop delivery to the others; their errors are
// joined.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.targets {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs applies the attributes to every target.
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.targets))
	for i, h := range m.targets {
		next[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{targets: next}
}

// WithGroup applies the group to every target.
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return m
	}
	next := make([]slog.Handler, len(m.targets))
	for i, h := range m.targets {
		next[i] = h.WithGroup(name)
	}
	return &MultiHandler{targets: next}
}
