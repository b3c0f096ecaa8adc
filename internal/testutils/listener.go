// Package testutils holds recording fakes for the engine's collaborators.
package testutils

import (
	"fmt"
	"slices"
	"testing"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// ListenerEvent is one notification received by a Listener.
type ListenerEvent struct {
	Op    string // "removed", "added" or "cleared"
	Index int
	Keys  []domain.ChildKey
}

func (e ListenerEvent) String() string {
	switch e.Op {
	case "removed":
		return fmt.Sprintf("removed(%d)", e.Index)
	case "added":
		return fmt.Sprintf("added(%d,%v)", e.Index, e.Keys)
	default:
		return e.Op
	}
}

// Listener records notifications and replays them onto a mirror of the list.
type Listener struct {
	Events []ListenerEvent
	Mirror []ports.Leaf
}

func (l *Listener) ContentRemoved(index int) {
	l.Events = append(l.Events, ListenerEvent{Op: "removed", Index: index})
	l.Mirror = slices.Delete(l.Mirror, index, index+1)
}

func (l *Listener) ContentsAdded(start int, leaves []ports.Leaf) {
	l.Events = append(l.Events, ListenerEvent{Op: "added", Index: start, Keys: Keys(leaves)})
	l.Mirror = slices.Insert(l.Mirror, start, leaves...)
}

func (l *Listener) ContentsCleared() {
	l.Events = append(l.Events, ListenerEvent{Op: "cleared"})
	l.Mirror = nil
}

// Seed initializes the mirror with the list as first observed.
func (l *Listener) Seed(leaves []ports.Leaf) {
	l.Mirror = slices.Clone(leaves)
}

// Reset forgets the recorded events but keeps the mirror.
func (l *Listener) Reset() {
	l.Events = nil
}

// Ops renders the recorded events, handy for compact assertions.
func (l *Listener) Ops() []string {
	out := make([]string, len(l.Events))
	for i, e := range l.Events {
		out[i] = e.String()
	}
	return out
}

// AssertMirrors checks that replaying the events reproduced want.
func (l *Listener) AssertMirrors(t *testing.T, want []ports.Leaf) bool {
	t.Helper()
	return assert.Equal(t, Keys(want), Keys(l.Mirror), "listener mirror diverged from the stream")
}

// Keys returns the keys of leaves.
func Keys(leaves []ports.Leaf) []domain.ChildKey {
	keys := make([]domain.ChildKey, len(leaves))
	for i, leaf := range leaves {
		keys[i] = leaf.Key()
	}
	return keys
}

// Kinds returns the kinds of leaves.
func Kinds(leaves []ports.Leaf) []domain.LeafKind {
	kinds := make([]domain.LeafKind, len(leaves))
	for i, leaf := range leaves {
		kinds[i] = leaf.Kind()
	}
	return kinds
}
