package driver

import (
	"log/slog"
	"time"

	"github.com/aretw0/feedstream/internal/logging"
	"github.com/aretw0/feedstream/internal/mainloop"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
)

// FeatureDriver is a node of the driver tree. It resolves to at most one leaf.
type FeatureDriver interface {
	// LeafFeatureDriver returns the leaf this driver renders as, or nil when
	// the underlying feature is malformed. The result is computed once.
	LeafFeatureDriver() LeafFeatureDriver
	OnDestroy()
}

// LeafFeatureDriver is the closed set of leaves: *ContentDriver,
// *ContinuationDriver, *ZeroStateDriver and *NoContentDriver.
type LeafFeatureDriver interface {
	ports.Leaf
	isLeaf()
}

// TokenDriver is the driver created for a top-level pagination token.
type TokenDriver interface {
	FeatureDriver
	// Initialize registers with the model and applies the consumption policy.
	// The stream calls it once the driver's leaf is part of the list.
	Initialize()
}

// NewChildrenHandler receives the page a token resolved to.
type NewChildrenHandler interface {
	OnNewChildren(key domain.ChildKey, children []domain.Child, wasSynthetic bool)
}

// Factory creates the drivers of a stream.
type Factory interface {
	ClusterDriver(feature domain.Feature, deps *Deps) FeatureDriver
	CardDriver(feature domain.Feature, deps *Deps) FeatureDriver
	ContinuationDriver(token domain.Token, deps *Deps, handler NewChildrenHandler) TokenDriver
}

// DefaultFactory builds the stock drivers.
type DefaultFactory struct{}

func (DefaultFactory) ClusterDriver(feature domain.Feature, deps *Deps) FeatureDriver {
	return NewClusterDriver(feature, deps)
}

func (DefaultFactory) CardDriver(feature domain.Feature, deps *Deps) FeatureDriver {
	return NewCardDriver(feature, deps)
}

func (DefaultFactory) ContinuationDriver(token domain.Token, deps *Deps, handler NewChildrenHandler) TokenDriver {
	return NewContinuationDriver(token, deps, handler)
}

// Messages are the user-visible strings handed to the snackbar.
type Messages struct {
	NoNewSuggestions string
	RetryFailed      string
	Undo             string
}

// DefaultMessages returns the English defaults.
func DefaultMessages() Messages {
	return Messages{
		NoNewSuggestions: "No new suggestions",
		RetryFailed:      "Couldn't load more content. Tap to try again.",
		Undo:             "Undo",
	}
}

// Deps are the collaborators shared by every driver of a stream.
type Deps struct {
	Provider    ports.ModelProvider
	Diagnostics ports.Diagnostics
	Snackbar    ports.Snackbar
	MainThread  ports.MainThread
	Factory     Factory
	Logger      *slog.Logger
	Policy      domain.Policy
	Messages    Messages
	// Restoring is true when the session rebuilds previously seen state.
	Restoring bool
	Now       func() time.Time
}

// withDefaults fills every unset collaborator with a no-op.
func (d *Deps) withDefaults() *Deps {
	if d.Diagnostics == nil {
		d.Diagnostics = ports.NopDiagnostics{}
	}
	if d.Snackbar == nil {
		d.Snackbar = nopSnackbar{}
	}
	if d.MainThread == nil {
		// Nothing drains this queue, so token callbacks are rejected until
		// a real main thread is configured.
		d.MainThread = mainloop.NewQueue()
	}
	if d.Factory == nil {
		d.Factory = DefaultFactory{}
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Messages == (Messages{}) {
		d.Messages = DefaultMessages()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// report sends an internal error to diagnostics and the log.
func (d *Deps) report(kind domain.InternalError, attrs ...any) {
	d.Diagnostics.OnInternalError(kind)
	d.Logger.Warn("internal feed error", append([]any{"kind", kind.String()}, attrs...)...)
}

func (d *Deps) assertMainThread() {
	if !d.MainThread.IsMainThread() {
		panic(domain.ErrNotMainThread)
	}
}

type nopSnackbar struct{}

func (nopSnackbar) Show(string, string, ports.SnackbarCallback) {}
