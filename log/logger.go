// Package log wraps a zap SugaredLogger with key/value helpers.
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	slogger *zap.SugaredLogger
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	mux     sync.Mutex
)

func init() {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}
	slogger = logger.Sugar()
}

// SetDebug toggles debug output, which includes SQL statements.
func SetDebug(on bool) {
	mux.Lock()
	defer mux.Unlock()
	if on {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

func DebugEnabled() bool {
	return level.Enabled(zapcore.DebugLevel)
}

// Replace swaps the underlying logger, for tests that want to observe output.
func Replace(l *zap.Logger) {
	mux.Lock()
	defer mux.Unlock()
	slogger = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

func DebugLog(msg string, keysAndValues ...interface{}) {
	slogger.Debugw(msg, keysAndValues...)
}

func InfoLog(msg string, keysAndValues ...interface{}) {
	slogger.Infow(msg, keysAndValues...)
}

func WarnLog(msg string, keysAndValues ...interface{}) {
	slogger.Warnw(msg, keysAndValues...)
}

func ErrorLog(msg string, keysAndValues ...interface{}) {
	slogger.Errorw(msg, keysAndValues...)
}

func FatalLog(msg string, keysAndValues ...interface{}) {
	slogger.Fatalw(msg, keysAndValues...)
}

func Sync() {
	_ = slogger.Sync()
}
