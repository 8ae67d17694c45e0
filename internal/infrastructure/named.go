package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"sosurvey/internal/config"
)

// Named text loggers understood by ConfiguredLogger.
const (
	// LoggerDefault writes DEBUG and above to stdout and WARNING and above
	// to a rotating log file.
	LoggerDefault = "default"
	// LoggerStdout writes to stdout only.
	LoggerStdout = "stdout"
)

const verboseTimeFormat = "2006-01-02 15:04:05"

// ConfiguredLogger returns the named text logger and a closer for its log file.
// Both named loggers drop records below INFO. An empty filename logs to
// log.txt in the working directory. With verbose set, lines read
// "2006-01-02 15:04:05 - name - LEVEL - message"; otherwise only the message
// is written. Unknown names are configured like LoggerStdout.
func ConfiguredLogger(name, filename string, verbose bool) (*slog.Logger, io.Closer, error) {
	return configuredLogger(name, filename, verbose, os.Stdout)
}

func configuredLogger(name, filename string, verbose bool, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	return newNamedLogger(namedOptions{
		name:     name,
		filename: filename,
		verbose:  verbose,
		console:  stdout,
		level:    slog.LevelInfo,
		output:   "both",
	})
}

// namedOptions configure a named text logger. output is "console", "file"
// or "both" and only matters for LoggerDefault, the one logger with a file.
type namedOptions struct {
	name     string
	filename string
	verbose  bool
	console  io.Writer
	level    slog.Leveler
	output   string
}

func newNamedLogger(o namedOptions) (*slog.Logger, io.Closer, error) {
	name := o.name
	if name == "" {
		name = LoggerDefault
	}
	level := o.level
	if level == nil {
		level = slog.LevelInfo
	}

	console := newLineHandler(o.console, slog.LevelDebug, name, o.verbose)

	if name != LoggerDefault || o.output == "console" {
		return slog.New(newFanoutHandler(level, console)), closerFunc(nil), nil
	}

	filename := o.filename
	if filename == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		filename = filepath.Join(wd, config.DefaultLogFile)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    config.LogFileMaxSizeMB,
		MaxBackups: config.LogFileMaxBackups,
	}
	file := newLineHandler(rotating, slog.LevelWarn, name, o.verbose)

	if o.output == "file" {
		return slog.New(newFanoutHandler(level, file)), rotating, nil
	}
	return slog.New(newFanoutHandler(level, console, file)), rotating, nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	if f == nil {
		return nil
	}
	return f()
}

// fanoutHandler passes records at or above level to every child handler
// that accepts them.
type fanoutHandler struct {
	level    slog.Leveler
	handlers []slog.Handler
}

func newFanoutHandler(level slog.Leveler, handlers ...slog.Handler) *fanoutHandler {
	return &fanoutHandler{level: level, handlers: handlers}
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.level.Level() {
		return false
	}
	for _, child := range h.handlers {
		if child.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, child := range h.handlers {
		if !child.Enabled(ctx, r.Level) {
			continue
		}
		if err := child.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, child := range h.handlers {
		next[i] = child.WithAttrs(attrs)
	}
	return &fanoutHandler{level: h.level, handlers: next}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, child := range h.handlers {
		next[i] = child.WithGroup(name)
	}
	return &fanoutHandler{level: h.level, handlers: next}
}

// lineHandler writes one plain-text line per record.
type lineHandler struct {
	mu      *sync.Mutex
	w       io.Writer
	level   slog.Leveler
	name    string
	verbose bool
	prefix  string // group prefix, e.g. "request."
	attrs   string // preformatted attributes from WithAttrs
}

func newLineHandler(w io.Writer, level slog.Leveler, name string, verbose bool) *lineHandler {
	return &lineHandler{mu: &sync.Mutex{}, w: w, level: level, name: name, verbose: verbose}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if h.verbose {
		ts := r.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		fmt.Fprintf(&b, "%s - %s - %s - ", ts.Format(verboseTimeFormat), h.name, levelName(r.Level))
	}
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	next.attrs = b.String()
	return &next
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, groupPrefix, ga)
		}
		return
	}

	value := a.Value.String()
	if strings.ContainsAny(value, " \t\n\"=") || value == "" {
		value = strconv.Quote(value)
	}
	fmt.Fprintf(b, " %s%s=%s", prefix, a.Key, value)
}

// levelName renders levels the way log files in this project always have.
func levelName(level slog.Level) string {
	switch {
	case level == slog.LevelDebug:
		return "DEBUG"
	case level == slog.LevelInfo:
		return "INFO"
	case level == slog.LevelWarn:
		return "WARNING"
	case level == slog.LevelError:
		return "ERROR"
	default:
		return level.String()
	}
}
