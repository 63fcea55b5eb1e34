package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ammar0144/catalog4go/pkg/logging"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger routes GORM output through the zerolog logger carried on the context.
// Queries are logged at trace level; slow queries and query errors at warn.
type GormLogger struct {
	level         logger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger creates a GORM logger for the given level name (silent, error, warn, info)
func NewGormLogger(level string, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		level:         getLogLevel(level),
		slowThreshold: slowThreshold,
	}
}

// LogMode returns a copy of the logger at the requested level
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info logs informational GORM messages at debug level
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		logging.Ctx(ctx).Debug().Str("component", "gorm").Msg(fmt.Sprintf(msg, data...))
	}
}

// Warn logs GORM warnings
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		logging.Ctx(ctx).Warn().Str("component", "gorm").Msg(fmt.Sprintf(msg, data...))
	}
}

// Error logs GORM errors
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		logging.Ctx(ctx).Error().Str("component", "gorm").Msg(fmt.Sprintf(msg, data...))
	}
}

// Trace logs a finished SQL statement
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	log := logging.Ctx(ctx)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		log.Warn().Err(err).Str("sql", sql).Int64("rows_affected", rows).Dur("elapsed", elapsed).Msg("query error")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		log.Warn().Str("sql", sql).Int64("rows_affected", rows).Dur("elapsed", elapsed).Msg("slow query")
	default:
		log.Trace().Str("sql", sql).Int64("rows_affected", rows).Dur("elapsed", elapsed).Msg("query")
	}
}

func getLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Error // Default to error
	}
}
