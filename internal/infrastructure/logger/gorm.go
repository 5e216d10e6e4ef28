package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// SQLLogger routes GORM statements to zap. Statements are logged by verb
// unless full SQL is enabled, and carry the import run and trace of ctx.
type SQLLogger struct {
	logger      *zap.Logger
	level       gormlogger.LogLevel
	slow        time.Duration
	logNotFound bool
	fullSQL     bool
}

var _ gormlogger.Interface = (*SQLLogger)(nil)

// SQLOption configures an SQLLogger
type SQLOption func(*SQLLogger)

// WithSlowThreshold sets the duration above which a statement is logged as
// slow. Zero disables slow query warnings.
func WithSlowThreshold(d time.Duration) SQLOption {
	return func(l *SQLLogger) { l.slow = d }
}

// WithNotFoundLogged reports gorm.ErrRecordNotFound as an error. Repositories
// map it to a nil result, so it is silent by default.
func WithNotFoundLogged() SQLOption {
	return func(l *SQLLogger) { l.logNotFound = true }
}

// WithFullSQL logs statements with bound values. Supplier contacts and
// customer emails end up in those values, so keep it off outside development.
func WithFullSQL(enabled bool) SQLOption {
	return func(l *SQLLogger) { l.fullSQL = enabled }
}

// NewSQLLogger creates a GORM logger writing to the "gorm" child of log
func NewSQLLogger(log *zap.Logger, level gormlogger.LogLevel, opts ...SQLOption) *SQLLogger {
	l := &SQLLogger{
		logger: log.Named("gorm"),
		level:  level,
		slow:   defaultSlowQuery,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode returns a copy logging at level
func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *SQLLogger) Info(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *SQLLogger) Warn(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *SQLLogger) Error(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *SQLLogger) printf(at gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < at {
		return
	}
	if ce := l.logger.Check(lvl, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write()
	}
}

// Trace logs one executed statement: failures at error, statements over the
// slow threshold at warn, everything else at debug when the level is Info.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	lvl, msg, ok := l.classify(elapsed, err)
	if !ok {
		return
	}
	ce := l.logger.Check(lvl, msg)
	if ce == nil {
		return
	}

	sql, rows := fc()
	fields := make([]zap.Field, 0, 8)
	if l.fullSQL {
		fields = append(fields, zap.String("sql", sql))
	} else {
		fields = append(fields, zap.String("operation", statementVerb(sql)))
	}
	fields = append(fields, zap.Duration("elapsed", elapsed), zap.Int64("rows", rows))
	if lvl == zapcore.WarnLevel {
		fields = append(fields, zap.Duration("threshold", l.slow))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(append(fields, statementContext(ctx)...)...)
}

func (l *SQLLogger) classify(elapsed time.Duration, err error) (zapcore.Level, string, bool) {
	switch {
	case l.level <= gormlogger.Silent:
		return 0, "", false
	case err != nil:
		if errors.Is(err, gormlogger.ErrRecordNotFound) && !l.logNotFound {
			return 0, "", false
		}
		return zapcore.ErrorLevel, "query failed", l.level >= gormlogger.Error
	case l.slow > 0 && elapsed > l.slow:
		return zapcore.WarnLevel, "slow query", l.level >= gormlogger.Warn
	default:
		return zapcore.DebugLevel, "query", l.level >= gormlogger.Info
	}
}

// statementContext returns the import run and trace fields carried by ctx
func statementContext(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if runID := GetImportRunID(ctx); runID != "" {
		fields = append(fields, zap.String("import_run_id", runID), zap.String("erp_provider", GetProvider(ctx)))
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID), zap.String("span_id", GetSpanID(ctx)))
	}
	return fields
}

func statementVerb(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	return strings.ToUpper(verb)
}

// SQLLogLevel maps an application log level name to a GORM log level.
// Unknown names map to Warn.
func SQLLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
