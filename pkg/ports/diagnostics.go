package ports

import (
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
)

// Diagnostics is the fire-and-forget logging collaborator.
type Diagnostics interface {
	OnInternalError(kind domain.InternalError)
	OnZeroStateShown(reason domain.ZeroStateReason)
	OnTokenCompleted(wasSynthetic bool, contentCount, tokenCount int)
	OnZeroStateRefreshCompleted(contentCount, tokenCount int)

	OnSpinnerStarted()
	OnSpinnerFinished(elapsed time.Duration)
	OnSpinnerDestroyedWithoutCompleting(elapsed time.Duration)
	OnTokenFailedToComplete(wasSynthetic bool, failureCount int)
}

// NopDiagnostics discards every report.
type NopDiagnostics struct{}

func (NopDiagnostics) OnInternalError(domain.InternalError)              {}
func (NopDiagnostics) OnZeroStateShown(domain.ZeroStateReason)           {}
func (NopDiagnostics) OnTokenCompleted(bool, int, int)                   {}
func (NopDiagnostics) OnZeroStateRefreshCompleted(int, int)              {}
func (NopDiagnostics) OnSpinnerStarted()                                 {}
func (NopDiagnostics) OnSpinnerFinished(time.Duration)                   {}
func (NopDiagnostics) OnSpinnerDestroyedWithoutCompleting(time.Duration) {}
func (NopDiagnostics) OnTokenFailedToComplete(bool, int)                 {}
