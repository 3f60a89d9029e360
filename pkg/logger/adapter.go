package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/Raimguhinov/sleep-monster/pkg/logger/slogpretty"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
)

const queryLog = "Query"

// NewTracer routes pgx query traces into the service logger.
func NewTracer(l *Logger) pgx.QueryTracer {
	return &tracelog.TraceLog{
		Logger:   &Logger{l.Logger},
		LogLevel: tracelog.LogLevelTrace,
	}
}

func (l *Logger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if msg != queryLog {
		return
	}
	attrs := make([]slog.Attr, 0, 2)
	if sql, ok := data["sql"].(string); ok {
		attrs = append(attrs, slog.String("sql", slogpretty.PrettySQL(sql)))
	}
	if d, ok := data["time"].(time.Duration); ok {
		attrs = append(attrs, slog.String("took", d.String()))
	}
	if err, ok := data["err"].(error); ok {
		attrs = append(attrs, Err(err))
	}
	l.Logger.LogAttrs(ctx, translateLevel(level), "pgx."+msg, attrs...)
}

func translateLevel(level tracelog.LogLevel) slog.Level {
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug, tracelog.LogLevelInfo:
		return slog.LevelDebug
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
