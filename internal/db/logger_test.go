package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newBufferLogger(level logrus.Level) (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log, &buf
}

func TestGormLoggerQueryError(t *testing.T) {
	log, buf := newBufferLogger(logrus.InfoLevel)
	l := NewGormLogger(log, 0)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	assert.Contains(t, buf.String(), "query error")
	assert.Contains(t, buf.String(), "boom")
}

func TestGormLoggerIgnoresRecordNotFound(t *testing.T) {
	log, buf := newBufferLogger(logrus.InfoLevel)
	l := NewGormLogger(log, 0)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())
}

func TestGormLoggerSlowQuery(t *testing.T) {
	log, buf := newBufferLogger(logrus.InfoLevel)
	l := NewGormLogger(log, time.Millisecond)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Contains(t, buf.String(), "slow query")
}
