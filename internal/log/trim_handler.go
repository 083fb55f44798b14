package log

import (
	"context"
	"io"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen is the length above which string attribute values
// are truncated. Long enough to keep any realistic IRI intact; short
// enough that an inlined SPARQL query or page body does not swamp the
// log line.
const DefaultMaxValueLen = 512

// Ellipsis marks a truncated value.
const Ellipsis = "...(truncated)"

// TrimHandler wraps an slog.Handler and truncates oversized string
// attribute values before passing records on.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites keep logging values as-is with no length discipline
type TrimHandler struct {
	// handler is the underlying slog handler receiving trimmed records.
	handler slog.Handler

	// maxLen is the maximum string value length kept verbatim.
	maxLen int
}

// TrimOption configures a TrimHandler.
type TrimOption func(*TrimHandler)

// WithMaxValueLen overrides the truncation threshold.
func WithMaxValueLen(n int) TrimOption {
	return func(h *TrimHandler) {
		if n > 0 {
			h.maxLen = n
		}
	}
}

// NewTrimHandler creates a TrimHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewTrimHandler(handler slog.Handler, opts ...TrimOption) *TrimHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	h := &TrimHandler{
		handler: handler,
		maxLen:  DefaultMaxValueLen,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Enabled reports whether the handler handles records at the given
// level. It delegates to the underlying handler.
func (h *TrimHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle trims the record's attributes and passes it on.
func (h *TrimHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(h.trimAttr(a))
		return true
	})

	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs returns a new handler with the given attributes added,
// trimmed first.
func (h *TrimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		trimmedAttrs[i] = h.trimAttr(a)
	}
	return &TrimHandler{handler: h.handler.WithAttrs(trimmedAttrs), maxLen: h.maxLen}
}

// WithGroup returns a new handler with the given group name.
func (h *TrimHandler) WithGroup(name string) slog.Handler {
	return &TrimHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen}
}

// trimAttr trims a single attribute, recursively handling groups.
func (h *TrimHandler) trimAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		trimmedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			trimmedAttrs[i] = h.trimAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(trimmedAttrs...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	value := a.Value.String()
	if len(value) <= h.maxLen {
		return a
	}

	// Cut on a rune boundary so truncation never produces invalid UTF-8
	// in the middle of an internationalized IRI.
	cut := h.maxLen
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return slog.String(a.Key, value[:cut]+Ellipsis)
}

// NewTrimLogger creates a slog.Logger that writes text records to w
// with oversized values truncated.
//
// If verbose is true the level is Debug, otherwise Warn.
func NewTrimLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTrimHandler(textHandler))
}
