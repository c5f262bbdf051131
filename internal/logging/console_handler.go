package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\x1b[0m"
	colorDim    = "\x1b[2m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
	colorCyan   = "\x1b[36m"
)

func writerIsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type consoleHandler struct {
	mu     sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
	color  bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, color bool) slog.Handler {
	return &consoleHandler{writer: w, level: lvl, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var buf bytes.Buffer
	h.writeDim(&buf, timestamp.Format("15:04:05"))
	buf.WriteByte(' ')
	h.writeLevel(&buf, record.Level)
	buf.WriteByte(' ')
	buf.WriteString(record.Message)

	for _, attr := range h.attrs {
		h.writeAttr(&buf, h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.writeAttr(&buf, h.groups, attr)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		writer: h.writer,
		level:  h.level,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
		color:  h.color,
	}
}

func (h *consoleHandler) writeAttr(buf *bytes.Buffer, groups []string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		nested := append(groups, attr.Key)
		for _, inner := range attr.Value.Group() {
			h.writeAttr(buf, nested, inner)
		}
		return
	}
	if attr.Key == "" {
		return
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	buf.WriteByte(' ')
	h.writeDim(buf, key+"=")
	buf.WriteString(formatValue(attr.Value))
}

func (h *consoleHandler) writeLevel(buf *bytes.Buffer, level slog.Level) {
	label := "INFO "
	color := colorBlue
	switch {
	case level >= slog.LevelError:
		label = "ERROR"
		color = colorRed
	case level >= slog.LevelWarn:
		label = "WARN "
		color = colorYellow
	case level < slog.LevelInfo:
		label = "DEBUG"
		color = colorCyan
	}
	if h.color {
		buf.WriteString(color)
		buf.WriteString(label)
		buf.WriteString(colorReset)
		return
	}
	buf.WriteString(label)
}

func (h *consoleHandler) writeDim(buf *bytes.Buffer, text string) {
	if h.color {
		buf.WriteString(colorDim)
		buf.WriteString(text)
		buf.WriteString(colorReset)
		return
	}
	buf.WriteString(text)
}

func formatValue(value slog.Value) string {
	switch value.Kind() {
	case slog.KindString:
		text := value.String()
		if strings.ContainsAny(text, " \t\"") {
			return strconv.Quote(text)
		}
		return text
	case slog.KindDuration:
		return value.Duration().String()
	case slog.KindTime:
		return value.Time().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(value.Float64(), 'g', -1, 64)
	default:
		return fmt.Sprint(value.Any())
	}
}
