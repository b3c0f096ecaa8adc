package domain

import "fmt"

// LeafKind is the closed set of leaf variants.
type LeafKind uint8

const (
	LeafContent LeafKind = iota + 1
	LeafContinuation
	LeafZeroState
	LeafNoContent
)

func (k LeafKind) String() string {
	switch k {
	case LeafContent:
		return "content"
	case LeafContinuation:
		return "continuation"
	case LeafZeroState:
		return "zero_state"
	case LeafNoContent:
		return "no_content"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON payloads.
func (k LeafKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name written by MarshalText.
func (k *LeafKind) UnmarshalText(text []byte) error {
	for _, kind := range []LeafKind{LeafContent, LeafContinuation, LeafZeroState, LeafNoContent} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown leaf kind %q", text)
}

// ViewState is what a leaf renders into its view slot.
type ViewState struct {
	Kind         LeafKind `json:"kind"`
	Key          ChildKey `json:"key"`
	Content      *Content `json:"content,omitempty"`
	SpinnerShown bool     `json:"spinner_shown,omitempty"`
}
