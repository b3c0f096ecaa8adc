package domain

import "errors"

// ErrDriverDesync is the panic value raised when a change notification
// references a child the engine has no driver for. It means the content model
// and the engine disagree about the tree and is a programming error.
var ErrDriverDesync = errors.New("driver index out of sync with content model")

// ErrNotMainThread is the panic value raised when a main-thread-confined
// callback runs elsewhere.
var ErrNotMainThread = errors.New("called off the main thread")

// ErrSnapshotNotFound is returned when a session snapshot cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrTokenRejected is reported when the model refuses to handle a token.
var ErrTokenRejected = errors.New("token rejected by content model")

// ErrLeafNotFound is returned when an index or key does not address a leaf.
var ErrLeafNotFound = errors.New("leaf not found")
