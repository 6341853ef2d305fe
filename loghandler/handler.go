package loghandler

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

const timeFormat = "2006/01/02 15:04:05"

const tagKey = "tag"

// CompactHandler writes logs in a compact form: timestamp + optional level + optional [tag] + message + attrs.
// Timestamp format: 2006/01/02 15:04:05 (no TZ, no milliseconds). Levels below warn carry no level prefix.
// A "tag" attribute, whether on the record or added through WithAttrs, is rendered as "[tag] "
// and omitted from the key=value list. Groups prefix attribute keys with "group.".
type CompactHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	tag    string
	attrs  []slog.Attr
	prefix string
}

// NewCompactHandler returns a handler that writes to w with minimum level.
func NewCompactHandler(w io.Writer, level slog.Leveler) *CompactHandler {
	return &CompactHandler{mu: &sync.Mutex{}, w: w, level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats the record as: 2006/01/02 15:04:05 [WARN] [tag] message key=value ...
func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	tag := h.tag
	rest := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	rest = append(rest, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey && a.Value.Kind() == slog.KindString {
			tag = a.Value.String()
			return true
		}
		a.Key = h.prefix + a.Key
		rest = append(rest, a)
		return true
	})

	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format(timeFormat)...)
	buf = append(buf, ' ')
	if r.Level >= slog.LevelWarn {
		buf = append(buf, '[')
		buf = append(buf, r.Level.String()...)
		buf = append(buf, "] "...)
	}
	if tag != "" {
		buf = append(buf, '[')
		buf = append(buf, tag...)
		buf = append(buf, "] "...)
	}
	buf = append(buf, r.Message...)
	for _, a := range rest {
		buf = appendAttr(buf, a)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func appendAttr(buf []byte, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			if a.Key != "" {
				ga.Key = a.Key + "." + ga.Key
			}
			buf = appendAttr(buf, ga)
		}
		return buf
	}
	if a.Equal(slog.Attr{}) {
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	buf = append(buf, a.Value.String()...)
	return buf
}

// WithAttrs returns a new handler that prepends attrs to every record.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if a.Key == tagKey && a.Value.Kind() == slog.KindString {
			h2.tag = a.Value.String()
			continue
		}
		a.Key = h.prefix + a.Key
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup returns a new handler whose subsequent attribute keys are qualified by name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}
