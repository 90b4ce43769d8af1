// Package log provides logging output for the interpreter and its tools.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultLogger returns a new logger that writes formatted records to os.Stderr. Components
	// grab it once during startup and cache the result.
	DefaultLogger = func() *Logger { return NewFormattedLogger(os.Stderr) }

	// SetDefault overrides slog's default logger. It does not change what DefaultLogger returns.
	SetDefault = slog.SetDefault

	// LogLevel holds the log level. It can be changed at runtime.
	LogLevel = &slog.LevelVar{}
)

// NewFormattedLogger returns a logger that formats records with a Handler and writes them to out.
func NewFormattedLogger(out io.Writer) *Logger {
	return slog.New(NewHandler(out))
}

// Handler implements slog.Handler. It writes one line per record: a timestamp, the level, the
// message, then attributes as key=value pairs. The format stays terse and greppable.
type Handler struct {
	mut *sync.Mutex // Guards out.
	out io.Writer

	level  slog.Leveler
	prefix string // Joined group names, dot-separated.
	attrs  []Attr
}

// NewHandler creates a Handler that writes formatted records to out.
func NewHandler(out io.Writer) *Handler {
	return &Handler{
		mut:   new(sync.Mutex),
		out:   out,
		level: LogLevel,
	}
}

// Enabled returns true if the record's level is at or above the configured level.
func (h *Handler) Enabled(_ context.Context, level Level) bool {
	return level >= h.level.Level()
}

// Handle formats a record and writes it to the handler's writer.
func (h *Handler) Handle(_ context.Context, rec slog.Record) error {
	var out strings.Builder

	if !rec.Time.IsZero() {
		out.WriteString(rec.Time.Format(time.TimeOnly))
		out.WriteByte(' ')
	}

	fmt.Fprintf(&out, "%-5s %s", rec.Level, rec.Message)

	for _, a := range h.attrs {
		h.appendAttr(&out, a)
	}

	rec.Attrs(func(attr Attr) bool {
		h.appendAttr(&out, attr)
		return true
	})

	out.WriteByte('\n')

	h.mut.Lock()
	defer h.mut.Unlock()

	_, err := io.WriteString(h.out, out.String())

	return err
}

// WithGroup returns a handler that qualifies attribute keys with the group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	next := h.clone()
	if next.prefix == "" {
		next.prefix = name
	} else {
		next.prefix += "." + name
	}

	return next
}

// WithAttrs returns a handler that prepends attrs to every record.
func (h *Handler) WithAttrs(attrs []Attr) slog.Handler {
	next := h.clone()
	next.attrs = append(next.attrs, attrs...)

	return next
}

func (h *Handler) clone() *Handler {
	attrs := make([]Attr, len(h.attrs))
	copy(attrs, h.attrs)

	return &Handler{
		mut:    h.mut,
		out:    h.out,
		level:  h.level,
		prefix: h.prefix,
		attrs:  attrs,
	}
}

func (h *Handler) appendAttr(out *strings.Builder, attr Attr) {
	attr.Value = attr.Value.Resolve()

	if attr.Equal(Attr{}) {
		return
	}

	key := attr.Key
	if h.prefix != "" && key != "" {
		key = h.prefix + "." + key
	}

	if attr.Value.Kind() == slog.KindGroup {
		sub := Handler{prefix: key}
		for _, a := range attr.Value.Group() {
			sub.appendAttr(out, a)
		}

		return
	}

	fmt.Fprintf(out, " %s=%v", key, attr.Value.Any())
}

// Loggable components accept a logger after construction.
type Loggable interface {
	WithLogger(*Logger)
}

// Type aliases so that callers need not import log/slog alongside this package.
type (
	Attr   = slog.Attr
	Level  = slog.Level
	Logger = slog.Logger
	Value  = slog.Value
)

var (
	String      = slog.String
	Int         = slog.Int
	Float64     = slog.Float64
	Bool        = slog.Bool
	Group       = slog.Group
	GroupValue  = slog.GroupValue
	StringValue = slog.StringValue
	Any         = slog.Any
	AnyValue    = slog.AnyValue
)

const (
	Debug = slog.LevelDebug
	Info  = slog.LevelInfo
	Warn  = slog.LevelWarn
	Error = slog.LevelError
)
