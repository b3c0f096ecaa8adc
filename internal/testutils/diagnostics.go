package testutils

import (
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
)

// TokenCompletion is one recorded OnTokenCompleted.
type TokenCompletion struct {
	Synthetic bool
	Contents  int
	Tokens    int
}

// Diagnostics records every report.
type Diagnostics struct {
	Errors            []domain.InternalError
	ZeroStates        []domain.ZeroStateReason
	Completions       []TokenCompletion
	Refreshes         []TokenCompletion
	SpinnersStarted   int
	SpinnersFinished  []time.Duration
	SpinnersAbandoned []time.Duration
	Failures          []int
}

func (d *Diagnostics) OnInternalError(kind domain.InternalError) {
	d.Errors = append(d.Errors, kind)
}

func (d *Diagnostics) OnZeroStateShown(reason domain.ZeroStateReason) {
	d.ZeroStates = append(d.ZeroStates, reason)
}

func (d *Diagnostics) OnTokenCompleted(wasSynthetic bool, contentCount, tokenCount int) {
	d.Completions = append(d.Completions, TokenCompletion{wasSynthetic, contentCount, tokenCount})
}

func (d *Diagnostics) OnZeroStateRefreshCompleted(contentCount, tokenCount int) {
	d.Refreshes = append(d.Refreshes, TokenCompletion{Contents: contentCount, Tokens: tokenCount})
}

func (d *Diagnostics) OnSpinnerStarted() { d.SpinnersStarted++ }

func (d *Diagnostics) OnSpinnerFinished(elapsed time.Duration) {
	d.SpinnersFinished = append(d.SpinnersFinished, elapsed)
}

func (d *Diagnostics) OnSpinnerDestroyedWithoutCompleting(elapsed time.Duration) {
	d.SpinnersAbandoned = append(d.SpinnersAbandoned, elapsed)
}

func (d *Diagnostics) OnTokenFailedToComplete(wasSynthetic bool, failureCount int) {
	d.Failures = append(d.Failures, failureCount)
}
