package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ecohub-backend/log"
)

// SlowThreshold is the query duration above which a warning is logged.
var SlowThreshold = 200 * time.Millisecond

// sqlLogger routes gorm output through the zap based log package.
type sqlLogger struct{}

func NewSQLLogger() gormlogger.Interface {
	return &sqlLogger{}
}

func (s *sqlLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return s
}

func (s *sqlLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	log.InfoLog("sql log", "msg", msg, "vals", data)
}

func (s *sqlLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	log.WarnLog("sql log", "msg", msg, "vals", data)
}

func (s *sqlLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	log.ErrorLog("sql log", "msg", msg, "vals", data)
}

func (s *sqlLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	took := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		log.ErrorLog("Call sql", "sql", sql, "rows-affected", rows, "took", took, "err", err)
	case took > SlowThreshold:
		sql, rows := fc()
		log.WarnLog("Slow sql", "sql", sql, "rows-affected", rows, "took", took)
	case log.DebugEnabled():
		sql, rows := fc()
		log.DebugLog("Call sql", "sql", sql, "rows-affected", rows, "took", took)
	}
}
