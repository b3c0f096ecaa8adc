package domain

// InternalError classifies structural problems found while flattening.
// None of them are fatal: the offending node is dropped and reported.
type InternalError uint8

const (
	TopLevelUnboundChild InternalError = iota + 1
	TopLevelInvalidFeatureType
	NoRootFeature
	FailedToCreateLeaf
	ClusterChildMissingFeature
	ClusterChildNotCard
	CardChildMissingFeature
	NullSharedStates
	UnhandledToken
)

var internalErrorNames = map[InternalError]string{
	TopLevelUnboundChild:       "TOP_LEVEL_UNBOUND_CHILD",
	TopLevelInvalidFeatureType: "TOP_LEVEL_INVALID_FEATURE_TYPE",
	NoRootFeature:              "NO_ROOT_FEATURE",
	FailedToCreateLeaf:         "FAILED_TO_CREATE_LEAF",
	ClusterChildMissingFeature: "CLUSTER_CHILD_MISSING_FEATURE",
	ClusterChildNotCard:        "CLUSTER_CHILD_NOT_CARD",
	CardChildMissingFeature:    "CARD_CHILD_MISSING_FEATURE",
	NullSharedStates:           "NULL_SHARED_STATES",
	UnhandledToken:             "UNHANDLED_TOKEN",
}

func (e InternalError) String() string {
	if name, ok := internalErrorNames[e]; ok {
		return name
	}
	return "UNKNOWN_INTERNAL_ERROR"
}

// InternalErrors lists every kind, in declaration order.
func InternalErrors() []InternalError {
	return []InternalError{
		TopLevelUnboundChild,
		TopLevelInvalidFeatureType,
		NoRootFeature,
		FailedToCreateLeaf,
		ClusterChildMissingFeature,
		ClusterChildNotCard,
		CardChildMissingFeature,
		NullSharedStates,
		UnhandledToken,
	}
}
