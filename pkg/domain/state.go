package domain

import "fmt"

// ModelState is the lifecycle state of the content model session.
type ModelState uint8

const (
	ModelInitializing ModelState = iota
	ModelReady
	ModelInvalidated
)

func (s ModelState) String() string {
	switch s {
	case ModelInitializing:
		return "initializing"
	case ModelReady:
		return "ready"
	case ModelInvalidated:
		return "invalidated"
	default:
		return fmt.Sprintf("model_state(%d)", uint8(s))
	}
}

// ParseModelState maps a fixture name to a ModelState. Unknown names are Ready.
func ParseModelState(s string) ModelState {
	switch s {
	case "initializing":
		return ModelInitializing
	case "invalidated":
		return ModelInvalidated
	default:
		return ModelReady
	}
}

// TokenPhase tracks whether a token has been handed to the model.
type TokenPhase uint8

const (
	TokenPending TokenPhase = iota
	TokenHandled
)

// TokenState is Pending, Handled or Synthetic(consumed).
// A synthetic token is consumed once it reaches TokenHandled.
type TokenState struct {
	Phase     TokenPhase
	Synthetic bool
}

func (s TokenState) IsPending() bool { return s.Phase == TokenPending }

// Consumed reports whether a synthetic token was handed to the model.
func (s TokenState) Consumed() bool { return s.Synthetic && s.Phase == TokenHandled }

func (s TokenState) String() string {
	if s.Synthetic {
		return fmt.Sprintf("synthetic(consumed=%t)", s.Consumed())
	}
	if s.Phase == TokenHandled {
		return "handled"
	}
	return "pending"
}

// Policy holds the pagination rules applied by continuation drivers.
type Policy struct {
	// TriggerImmediatePagination activates non-synthetic tokens as soon as
	// their driver is initialized.
	TriggerImmediatePagination bool `json:"trigger_immediate_pagination" yaml:"trigger_immediate_pagination" mapstructure:"trigger_immediate_pagination"`
	// ConsumeSyntheticTokens hands synthetic tokens to the model without user interaction.
	ConsumeSyntheticTokens bool `json:"consume_synthetic_tokens" yaml:"consume_synthetic_tokens" mapstructure:"consume_synthetic_tokens"`
	// ConsumeSyntheticTokensWhileRestoring extends auto-consumption to restoring sessions.
	ConsumeSyntheticTokensWhileRestoring bool `json:"consume_synthetic_tokens_while_restoring" yaml:"consume_synthetic_tokens_while_restoring" mapstructure:"consume_synthetic_tokens_while_restoring"`
}

// DefaultPolicy consumes synthetic tokens, except while restoring.
func DefaultPolicy() Policy {
	return Policy{ConsumeSyntheticTokens: true}
}
