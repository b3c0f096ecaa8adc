package domain

// ZeroStateReason explains why the zero state is shown.
type ZeroStateReason uint8

const (
	ZeroStateError ZeroStateReason = iota + 1
	ZeroStateNoContent
	ZeroStateContentDismissed
	ZeroStateNoContentFromContinuationToken
)

func (r ZeroStateReason) String() string {
	switch r {
	case ZeroStateError:
		return "ERROR"
	case ZeroStateNoContent:
		return "NO_CONTENT"
	case ZeroStateContentDismissed:
		return "CONTENT_DISMISSED"
	case ZeroStateNoContentFromContinuationToken:
		return "NO_CONTENT_FROM_CONTINUATION_TOKEN"
	default:
		return "UNKNOWN"
	}
}

// RefreshReason tags a model refresh so its results can be logged separately.
type RefreshReason uint8

const (
	RefreshManual RefreshReason = iota
	RefreshZeroState
)

func (r RefreshReason) String() string {
	if r == RefreshZeroState {
		return "zero_state"
	}
	return "manual"
}
