// Package logx is eureka's logging façade. The original media-luna
// call sites (cmd/main.go, internal/eureka) call logx.Info/logx.Error
// as free functions against a single shared logger; this package gives
// that shape a concrete body on top of charmbracelet/log instead of
// hand-rolling a log writer.
package logx

import (
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
	Prefix:          "eureka",
})

// SetLevel adjusts verbosity; accepted values are debug, info, warn, error.
func SetLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
}

func Debug(msg string, keyvals ...interface{}) { logger.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { logger.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { logger.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { logger.Error(msg, keyvals...) }

// With returns a child logger carrying the given key/value pairs on
// every subsequent call, e.g. logx.With("file", path).Info("decoding").
func With(keyvals ...interface{}) *log.Logger {
	return logger.With(keyvals...)
}
