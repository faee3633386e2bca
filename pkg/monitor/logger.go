package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
)

const timeLayout = "2006-01-02 15:04:05"

// LineHandler is a slog.Handler writing one line per record:
//
//	[2006-01-02 15:04:05] [INFO] [debug-id] message key="value" n=2
//
// The debug id comes from llm.WithDebugID and is left out when unset.
// Grouped attributes are flattened to dotted keys.
type LineHandler struct {
	out    *syncWriter
	level  slog.Leveler
	preset string // attributes rendered by WithAttrs
	group  string // dotted prefix for keys added later
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(p)
	return err
}

// NewLineHandler writes to w. A nil level means info.
func NewLineHandler(w io.Writer, level slog.Leveler) *LineHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &LineHandler{out: &syncWriter{w: w}, level: level}
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LineHandler) Handle(ctx context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString("[" + r.Time.Format(timeLayout) + "] [" + r.Level.String() + "]")
	if ctx != nil {
		if id := llm.DebugID(ctx); id != "" {
			sb.WriteString(" [" + id + "]")
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(r.Message)
	sb.WriteString(h.preset)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})
	sb.WriteByte('\n')
	return h.out.write([]byte(sb.String()))
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.preset)
	for _, a := range attrs {
		writeAttr(&sb, h.group, a)
	}
	clone := *h
	clone.preset = sb.String()
	return &clone
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if v.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub += a.Key + "."
		}
		for _, ga := range v.Group() {
			writeAttr(sb, sub, ga)
		}
		return
	}

	sb.WriteString(" " + prefix + a.Key + "=")
	switch v.Kind() {
	case slog.KindString:
		sb.WriteString(strconv.Quote(v.String()))
	case slog.KindTime:
		sb.WriteString(v.Time().Format(time.RFC3339))
	case slog.KindDuration:
		sb.WriteString(v.Duration().String())
	default:
		if err, ok := v.Any().(error); ok {
			sb.WriteString(strconv.Quote(err.Error()))
			return
		}
		fmt.Fprintf(sb, "%v", v.Any())
	}
}

// ParseLevel maps a config log level onto slog. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

var (
	logLevel    = new(slog.LevelVar)
	installSlog sync.Once
)

// SetupSlog installs a LineHandler on stderr as the default logger. Later
// calls, such as after a config reload, only change the level.
func SetupSlog(level string) {
	logLevel.Set(ParseLevel(level))
	installSlog.Do(func() {
		slog.SetDefault(slog.New(NewLineHandler(os.Stderr, logLevel)))
	})
}

// PrintBanner prints the startup banner
func PrintBanner(agentName, model string) {
	rule := strings.Repeat("=", 50)
	fmt.Printf("%s\n  %s\n  model: %s\n%s\n", rule, agentName, model, rule)
}
