package ports

// MainThread is the single logical thread driver state is confined to.
// Background work re-dispatches onto it with Post before touching drivers.
type MainThread interface {
	Post(fn func())
	IsMainThread() bool
}
