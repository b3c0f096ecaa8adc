package observability

import (
	"log/slog"
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
)

// Logger writes every diagnostic as a structured log record.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a diagnostics sink backed by logger.
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With("component", "diagnostics")}
}

func (l *Logger) OnInternalError(kind domain.InternalError) {
	l.logger.Warn("internal error", "kind", kind.String())
}

func (l *Logger) OnZeroStateShown(reason domain.ZeroStateReason) {
	l.logger.Info("zero state shown", "reason", reason.String())
}

func (l *Logger) OnTokenCompleted(wasSynthetic bool, contentCount, tokenCount int) {
	l.logger.Info("token completed", "synthetic", wasSynthetic, "contents", contentCount, "tokens", tokenCount)
}

func (l *Logger) OnZeroStateRefreshCompleted(contentCount, tokenCount int) {
	l.logger.Info("zero state refresh completed", "contents", contentCount, "tokens", tokenCount)
}

func (l *Logger) OnSpinnerStarted() {
	l.logger.Debug("spinner started")
}

func (l *Logger) OnSpinnerFinished(elapsed time.Duration) {
	l.logger.Debug("spinner finished", "elapsed", elapsed)
}

func (l *Logger) OnSpinnerDestroyedWithoutCompleting(elapsed time.Duration) {
	l.logger.Info("spinner destroyed without completing", "elapsed", elapsed)
}

func (l *Logger) OnTokenFailedToComplete(wasSynthetic bool, failureCount int) {
	l.logger.Warn("token failed to complete", "synthetic", wasSynthetic, "failures", failureCount)
}
