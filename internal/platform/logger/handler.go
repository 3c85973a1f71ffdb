package logger

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Handler is a slog.Handler backed by the Pipeline, so components can log
// through the standard structured API while every record still flows through
// the single ordered queue. Handle never blocks and never returns an error
// to the caller; a full or stopped pipeline drops the record.
type Handler struct {
	pipeline *Pipeline
	level    slog.Leveler
	// source labels every record produced through this handler.
	source string
	attrs  []slog.Attr
	groups []string
}

// NewHandler creates a pipeline-backed handler emitting records at or above
// level, labelled with source.
func NewHandler(p *Pipeline, level slog.Leveler, source string) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{
		pipeline: p,
		level:    level,
		source:   source,
	}
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, h.qualify(a))
	}
	return &clone
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// Handle implements the slog.Handler interface by converting the slog record
// into a pipeline Record and enqueuing it.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify(a))
		return true
	})

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	h.pipeline.Enqueue(Record{
		Level:   r.Level,
		Message: r.Message,
		Time:    ts,
		Source:  h.source,
		Attrs:   attrs,
	})
	return nil
}

// qualify prefixes an attribute key with the open group names.
func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if len(h.groups) == 0 {
		return a
	}
	a.Key = strings.Join(h.groups, ".") + "." + a.Key
	return a
}
