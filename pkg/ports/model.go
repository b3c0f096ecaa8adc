package ports

import "github.com/aretw0/feedstream/pkg/domain"

// FeatureObserver receives structural changes of a feature's children.
type FeatureObserver interface {
	OnChange(change domain.FeatureChange)
}

// TokenObserver receives the outcome of a handled token.
// Both callbacks are delivered on the main thread.
type TokenObserver interface {
	OnTokenCompleted(event domain.TokenCompletedEvent)
	OnError(err error)
}

// ModelProvider is the content model the engine flattens.
type ModelProvider interface {
	State() domain.ModelState

	// Root returns the root feature of the session, if the model has one.
	Root() (domain.Feature, bool)

	RegisterObserver(key domain.ChildKey, observer FeatureObserver)
	UnregisterObserver(key domain.ChildKey, observer FeatureObserver)

	RegisterTokenObserver(token domain.Token, observer TokenObserver)
	UnregisterTokenObserver(token domain.Token, observer TokenObserver)

	// HandleToken asks the model to resolve a token. It returns immediately;
	// the page arrives later through the token observers. False means the
	// token was rejected (already in flight, or the model is not ready).
	HandleToken(token domain.Token) bool

	// TriggerRefresh requests new root content.
	TriggerRefresh(reason domain.RefreshReason)
}
