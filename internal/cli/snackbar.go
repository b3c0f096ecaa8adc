package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/feedstream/internal/mainloop"
	"github.com/aretw0/feedstream/pkg/ports"
)

// Snackbar prints messages and holds their callbacks until resolved.
type Snackbar struct {
	mu       sync.Mutex
	out      io.Writer
	messages []string
	pending  []ports.SnackbarCallback
}

// NewSnackbar creates a snackbar writing to out. out may be nil.
func NewSnackbar(out io.Writer) *Snackbar {
	return &Snackbar{out: out}
}

func (s *Snackbar) Show(message, actionLabel string, callback ports.SnackbarCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	if callback != nil {
		s.pending = append(s.pending, callback)
	}
	if s.out == nil {
		return
	}
	if actionLabel != "" {
		fmt.Fprintf(s.out, "» %s [%s]\n", message, actionLabel)
	} else {
		fmt.Fprintf(s.out, "» %s\n", message)
	}
}

// Messages returns every message shown so far.
func (s *Snackbar) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// Resolve runs every pending callback on loop, taking the action or not.
func (s *Snackbar) Resolve(ctx context.Context, loop *mainloop.Loop, withAction bool) (int, error) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	err := loop.Do(ctx, func() {
		for _, cb := range pending {
			if withAction {
				cb.OnDismissedWithAction()
			} else {
				cb.OnDismissNoAction()
			}
		}
	})
	return len(pending), err
}
