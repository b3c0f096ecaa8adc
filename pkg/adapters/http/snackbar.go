package http

import (
	"errors"
	"sync"
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
	"github.com/google/uuid"
)

// ErrSnackbarNotFound is returned when resolving an unknown or already resolved snackbar.
var ErrSnackbarNotFound = errors.New("snackbar not found")

// Snackbar is a message waiting for the client to act on it.
type Snackbar struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Action    string    `json:"action,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	callback ports.SnackbarCallback
}

// SnackbarBoard implements ports.Snackbar by holding messages until an HTTP
// client resolves them. Callbacks run on the main thread.
type SnackbarBoard struct {
	mu         sync.Mutex
	items      []*Snackbar
	mainThread ports.MainThread
	events     *Broadcaster
}

// NewSnackbarBoard creates a board posting callbacks to mainThread. events may be nil.
func NewSnackbarBoard(mainThread ports.MainThread, events *Broadcaster) *SnackbarBoard {
	return &SnackbarBoard{mainThread: mainThread, events: events}
}

func (b *SnackbarBoard) Show(message, actionLabel string, callback ports.SnackbarCallback) {
	item := &Snackbar{
		ID:        uuid.NewString(),
		Message:   message,
		Action:    actionLabel,
		CreatedAt: time.Now().UTC(),
		callback:  callback,
	}
	b.mu.Lock()
	b.items = append(b.items, item)
	b.mu.Unlock()

	if b.events != nil {
		b.events.Publish(Event{Op: "snackbar", Key: domain.ChildKey(item.ID)})
	}
}

// List returns the pending snackbars, oldest first.
func (b *SnackbarBoard) List() []Snackbar {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Snackbar, len(b.items))
	for i, item := range b.items {
		out[i] = *item
	}
	return out
}

// Resolve removes the snackbar and reports whether the user took its action.
func (b *SnackbarBoard) Resolve(id string, withAction bool) error {
	b.mu.Lock()
	var item *Snackbar
	for i, cur := range b.items {
		if cur.ID == id {
			item = cur
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}
	b.mu.Unlock()

	if item == nil {
		return ErrSnackbarNotFound
	}
	if item.callback == nil {
		return nil
	}
	b.mainThread.Post(func() {
		if withAction {
			item.callback.OnDismissedWithAction()
		} else {
			item.callback.OnDismissNoAction()
		}
	})
	return nil
}
