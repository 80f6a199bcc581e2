package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLoggerAdapter adapts slog.Logger to cron's Logger interface.
type cronLoggerAdapter struct {
	logger *slog.Logger
}

var _ cron.Logger = (*cronLoggerAdapter)(nil)

// Info logs cron's routine messages at debug level; they fire on every tick.
// Skipped overlapping runs are raised to warnings.
func (a *cronLoggerAdapter) Info(msg string, keysAndValues ...any) {
	if msg == "skip" {
		a.logger.Warn("skipping tick, previous run still in progress", keysAndValues...)
		return
	}
	a.logger.Debug(msg, keysAndValues...)
}

func (a *cronLoggerAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error(msg, append(keysAndValues, "err", err)...)
}
