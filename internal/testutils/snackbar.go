package testutils

import "github.com/aretw0/feedstream/pkg/ports"

// SnackbarCall is one recorded Show.
type SnackbarCall struct {
	Message  string
	Action   string
	Callback ports.SnackbarCallback
}

// Snackbar records every message shown.
type Snackbar struct {
	Calls []SnackbarCall
}

func (s *Snackbar) Show(message, actionLabel string, callback ports.SnackbarCallback) {
	s.Calls = append(s.Calls, SnackbarCall{Message: message, Action: actionLabel, Callback: callback})
}

// Last returns the most recent call. It panics when nothing was shown.
func (s *Snackbar) Last() SnackbarCall {
	return s.Calls[len(s.Calls)-1]
}

// Messages returns the shown messages in order.
func (s *Snackbar) Messages() []string {
	out := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		out[i] = c.Message
	}
	return out
}
