package domain

// FeatureChange describes a structural mutation of a feature's children.
type FeatureChange struct {
	// Key of the feature whose children changed.
	Key      ChildKey
	Appended []Child
	Removed  []Child
}

// IsEmpty reports whether the change carries no mutation.
func (c FeatureChange) IsEmpty() bool {
	return len(c.Appended) == 0 && len(c.Removed) == 0
}

// TokenCompletedEvent carries the page a token resolved to.
// Children may themselves contain a trailing token for the next page.
type TokenCompletedEvent struct {
	Token    Token
	Children []Child
}

// UndoAction labels the snackbar offered after an optimistic dismiss.
type UndoAction struct {
	ConfirmationLabel string `json:"confirmation_label"`
	ActionLabel       string `json:"action_label"`
}
