package ports

import "github.com/aretw0/feedstream/pkg/domain"

// ViewSlot is a host-owned view a leaf renders into.
type ViewSlot interface {
	Render(state domain.ViewState)
}

// Leaf is a renderable, non-decomposable unit of the flattened list.
type Leaf interface {
	Kind() domain.LeafKind
	Key() domain.ChildKey
	State() domain.ViewState

	// Bind attaches the leaf to a slot and renders it. Binding an already
	// bound leaf moves it to the new slot.
	Bind(slot ViewSlot)
	Unbind()
	IsBound() bool

	OnDestroy()
}

// Clickable is implemented by leaves that react to activation.
type Clickable interface {
	OnClick()
}

// StreamContentListener mirrors the flattened list.
// Indices are relative to the list at the moment of the call.
type StreamContentListener interface {
	ContentRemoved(index int)
	ContentsAdded(start int, leaves []Leaf)
	ContentsCleared()
}

// ScrollRestorer repositions the host view after a restored session settles.
type ScrollRestorer interface {
	MaybeRestoreScroll()
}
