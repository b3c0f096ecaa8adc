package observability

import (
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
)

// Multi forwards every report to each sink in order.
type Multi []ports.Diagnostics

func (m Multi) OnInternalError(kind domain.InternalError) {
	for _, d := range m {
		d.OnInternalError(kind)
	}
}

func (m Multi) OnZeroStateShown(reason domain.ZeroStateReason) {
	for _, d := range m {
		d.OnZeroStateShown(reason)
	}
}

func (m Multi) OnTokenCompleted(wasSynthetic bool, contentCount, tokenCount int) {
	for _, d := range m {
		d.OnTokenCompleted(wasSynthetic, contentCount, tokenCount)
	}
}

func (m Multi) OnZeroStateRefreshCompleted(contentCount, tokenCount int) {
	for _, d := range m {
		d.OnZeroStateRefreshCompleted(contentCount, tokenCount)
	}
}

func (m Multi) OnSpinnerStarted() {
	for _, d := range m {
		d.OnSpinnerStarted()
	}
}

func (m Multi) OnSpinnerFinished(elapsed time.Duration) {
	for _, d := range m {
		d.OnSpinnerFinished(elapsed)
	}
}

func (m Multi) OnSpinnerDestroyedWithoutCompleting(elapsed time.Duration) {
	for _, d := range m {
		d.OnSpinnerDestroyedWithoutCompleting(elapsed)
	}
}

func (m Multi) OnTokenFailedToComplete(wasSynthetic bool, failureCount int) {
	for _, d := range m {
		d.OnTokenFailedToComplete(wasSynthetic, failureCount)
	}
}
