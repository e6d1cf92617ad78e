package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts logrus to gorm's logger.Interface. SQL is logged at trace
// level; slow queries and query errors at warn.
type GormLogger struct {
	log           *logrus.Logger
	slowThreshold time.Duration
}

func NewGormLogger(log *logrus.Logger, slowThreshold time.Duration) *GormLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GormLogger{log: log, slowThreshold: slowThreshold}
}

// LogMode is a no-op; verbosity follows the logrus level.
func (l *GormLogger) LogMode(_ gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.log.WithContext(ctx).Debug(fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.log.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.log.WithContext(ctx).Error(fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := l.log.WithContext(ctx).WithFields(logrus.Fields{
		"sql":           sql,
		"rows_affected": rows,
		"duration_ms":   elapsed.Milliseconds(),
	})

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		entry.WithError(err).Warn("query error")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		entry.WithField("threshold", l.slowThreshold.String()).Warn("slow query")
	default:
		entry.Trace("sql query")
	}
}
