package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// consoleHandler renders compact human-oriented lines:
//
//	15:04:05 INF message key=value key=value
//
// Colors are applied only when the writer is a terminal.
type consoleHandler struct {
	mu    sync.Mutex
	w     io.Writer
	level *slog.LevelVar
	attrs []slog.Attr
	color bool
}

func newConsoleHandler(w io.Writer, level *slog.LevelVar) slog.Handler {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &consoleHandler{w: w, level: level, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var buf bytes.Buffer
	buf.Grow(128)
	buf.WriteString(ts.Format("15:04:05"))
	buf.WriteByte(' ')
	buf.WriteString(h.levelTag(record.Level))
	buf.WriteByte(' ')
	buf.WriteString(record.Message)

	for _, attr := range h.attrs {
		writeAttr(&buf, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&buf, attr)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &consoleHandler{w: h.w, level: h.level, color: h.color}
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return clone
}

func (h *consoleHandler) WithGroup(string) slog.Handler { return h }

const (
	ansiDim    = "\x1b[2m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiReset  = "\x1b[0m"
)

func (h *consoleHandler) levelTag(level slog.Level) string {
	tag, color := "INF", ""
	switch {
	case level < slog.LevelInfo:
		tag, color = "DBG", ansiDim
	case level >= slog.LevelError:
		tag, color = "ERR", ansiRed
	case level >= slog.LevelWarn:
		tag, color = "WRN", ansiYellow
	}
	if h.color && color != "" {
		return color + tag + ansiReset
	}
	return tag
}

func writeAttr(buf *bytes.Buffer, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(attr.Key)
	buf.WriteByte('=')
	value := attr.Value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		buf.WriteString(strconv.Quote(value.String()))
	default:
		fmt.Fprint(buf, value.Any())
	}
}
