package logger

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// NewSlogHandler returns a slog.Handler that forwards records to l.
// If l is nil, it returns nil.
func NewSlogHandler(l *Logger) slog.Handler {
	if l == nil {
		return nil
	}
	return &slogAdapter{log: l}
}

// Slog wraps l in a *slog.Logger. A nil l yields a logger that discards.
func Slog(l *Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(NewSlogHandler(l))
}

type slogAdapter struct {
	log    *Logger
	groups []string
	attrs  []slog.Attr
}

func (h *slogAdapter) Enabled(_ context.Context, level slog.Level) bool {
	return slogLevelToLoggerLevel(level) >= h.log.GetLevel()
}

func (h *slogAdapter) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)

	for _, attr := range h.attrs {
		writeAttr(&sb, attr, nil)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&sb, attr, h.groups)
		return true
	})

	message := strings.TrimPrefix(sb.String(), " ")
	h.log.log(slogLevelToLoggerLevel(record.Level), "%s", message)
	return nil
}

func (h *slogAdapter) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	qualified := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	qualified = append(qualified, h.attrs...)
	for _, attr := range attrs {
		qualified = append(qualified, qualify(attr, h.groups))
	}
	return &slogAdapter{
		log:    h.log,
		groups: append([]string(nil), h.groups...),
		attrs:  qualified,
	}
}

func (h *slogAdapter) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slogAdapter{
		log:    h.log,
		groups: append(append([]string(nil), h.groups...), name),
		attrs:  append([]slog.Attr(nil), h.attrs...),
	}
}

func slogLevelToLoggerLevel(level slog.Level) Level {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarn
	case level >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// qualify prefixes the attribute key with the open groups.
func qualify(attr slog.Attr, groups []string) slog.Attr {
	if len(groups) == 0 {
		return attr
	}
	attr.Key = strings.Join(append(append([]string(nil), groups...), attr.Key), ".")
	return attr
}

func writeAttr(sb *strings.Builder, attr slog.Attr, groups []string) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		nested := groups
		if attr.Key != "" {
			nested = append(append([]string(nil), groups...), attr.Key)
		}
		for _, a := range attr.Value.Group() {
			writeAttr(sb, a, nested)
		}
		return
	}

	key := attr.Key
	if key == "" {
		key = "attr"
	}
	attr = qualify(slog.Attr{Key: key, Value: attr.Value}, groups)

	value := attr.Value.String()
	if strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}

	sb.WriteByte(' ')
	sb.WriteString(attr.Key)
	sb.WriteByte('=')
	sb.WriteString(value)
}
