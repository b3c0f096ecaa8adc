package driver

import (
	"log/slog"
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
)

// ContinuationDriver is the leaf for an unexpanded pagination token.
//
// Activation hands the token to the model and shows a spinner until the page
// arrives. Failures are only retried when the user activates it again.
type ContinuationDriver struct {
	viewHolder
	token     domain.Token
	deps      *Deps
	handler   NewChildrenHandler
	logger    *slog.Logger
	restoring bool

	state        domain.TokenState
	initialized  bool
	spinnerShown bool
	spinnerStart time.Time
	completed    bool
	destroyed    bool
	failures     int
}

// NewContinuationDriver creates the "load more" leaf for token. handler
// receives the children the token resolves to.
func NewContinuationDriver(token domain.Token, deps *Deps, handler NewChildrenHandler) *ContinuationDriver {
	return &ContinuationDriver{
		token:     token,
		deps:      deps,
		handler:   handler,
		logger:    deps.Logger.With("token", string(token.Key())),
		restoring: deps.Restoring,
		state:     domain.TokenState{Synthetic: token.Synthetic()},
	}
}

func (d *ContinuationDriver) isLeaf() {}

func (d *ContinuationDriver) Kind() domain.LeafKind { return domain.LeafContinuation }
func (d *ContinuationDriver) Key() domain.ChildKey  { return d.token.Key() }

// TokenState returns the activation state of the token.
func (d *ContinuationDriver) TokenState() domain.TokenState { return d.state }

// Failures returns how many times the token failed to complete.
func (d *ContinuationDriver) Failures() int { return d.failures }

func (d *ContinuationDriver) IsSpinnerShowing() bool { return d.spinnerShown }

func (d *ContinuationDriver) State() domain.ViewState {
	return domain.ViewState{Kind: domain.LeafContinuation, Key: d.token.Key(), SpinnerShown: d.spinnerShown}
}

func (d *ContinuationDriver) Bind(slot ports.ViewSlot) {
	d.attach(slot)
	slot.Render(d.State())
}

func (d *ContinuationDriver) LeafFeatureDriver() LeafFeatureDriver { return d }

func (d *ContinuationDriver) Initialize() {
	if d.initialized || d.destroyed {
		return
	}
	d.initialized = true
	d.deps.Provider.RegisterTokenObserver(d.token, d)

	switch {
	case d.token.Synthetic():
		if d.consumesSynthetic() {
			d.logger.Debug("consuming synthetic token", "restoring", d.restoring)
			d.request()
		}
	case d.deps.Policy.TriggerImmediatePagination:
		d.request()
	}
}

func (d *ContinuationDriver) consumesSynthetic() bool {
	if !d.deps.Policy.ConsumeSyntheticTokens {
		return false
	}
	return !d.restoring || d.deps.Policy.ConsumeSyntheticTokensWhileRestoring
}

// OnClick is the explicit "load more" activation.
func (d *ContinuationDriver) OnClick() {
	d.request()
}

func (d *ContinuationDriver) request() {
	if d.destroyed || d.completed {
		return
	}
	if d.spinnerShown {
		d.logger.Debug("continuation already in flight")
		return
	}

	d.setSpinner(true)
	d.spinnerStart = d.deps.Now()
	d.deps.Diagnostics.OnSpinnerStarted()

	d.state.Phase = domain.TokenHandled
	if !d.deps.Provider.HandleToken(d.token) {
		d.deps.report(domain.UnhandledToken, "token", d.token.Key(), "error", domain.ErrTokenRejected)
		d.state.Phase = domain.TokenPending
		d.finishSpinner()
	}
}

func (d *ContinuationDriver) OnTokenCompleted(event domain.TokenCompletedEvent) {
	d.deps.assertMainThread()
	if d.destroyed {
		d.logger.Debug("token completed after driver was destroyed")
		return
	}
	d.completed = true
	d.state.Phase = domain.TokenHandled
	d.finishSpinner()

	synthetic := d.token.Synthetic()
	contents, tokens := domain.CountChildren(event.Children)
	d.deps.Diagnostics.OnTokenCompleted(synthetic, contents, tokens)
	d.logger.Debug("token completed", "synthetic", synthetic, "contents", contents, "tokens", tokens)
	if contents == 0 {
		d.deps.Snackbar.Show(d.deps.Messages.NoNewSuggestions, "", nil)
	}

	d.handler.OnNewChildren(d.token.Key(), event.Children, synthetic)
}

func (d *ContinuationDriver) OnError(err error) {
	d.deps.assertMainThread()
	if d.destroyed {
		d.logger.Debug("token failed after driver was destroyed", "error", err)
		return
	}
	d.state.Phase = domain.TokenPending
	d.failures++
	d.deps.Diagnostics.OnTokenFailedToComplete(d.token.Synthetic(), d.failures)
	d.logger.Warn("token failed to complete", "failures", d.failures, "error", err)
	d.deps.Snackbar.Show(d.deps.Messages.RetryFailed, "", nil)
	d.finishSpinner()
}

func (d *ContinuationDriver) OnDestroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if d.spinnerShown && !d.completed {
		elapsed := d.deps.Now().Sub(d.spinnerStart)
		d.deps.Diagnostics.OnSpinnerDestroyedWithoutCompleting(elapsed)
		d.logger.Info("spinner destroyed without completing", "elapsed", elapsed)
	}
	if d.initialized {
		d.deps.Provider.UnregisterTokenObserver(d.token, d)
	}
	d.Unbind()
}

// finishSpinner hides a showing spinner and reports how long it ran.
func (d *ContinuationDriver) finishSpinner() {
	if !d.spinnerShown {
		return
	}
	d.deps.Diagnostics.OnSpinnerFinished(d.deps.Now().Sub(d.spinnerStart))
	d.setSpinner(false)
}

func (d *ContinuationDriver) setSpinner(shown bool) {
	d.spinnerShown = shown
	if d.slot != nil {
		d.slot.Render(d.State())
	}
}
