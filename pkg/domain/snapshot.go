package domain

import "time"

// Snapshot records the flattened list of a session so it can be restored.
// CBOR encoding uses integer keys for compactness.
type Snapshot struct {
	SessionID string     `json:"session_id" cbor:"1,keyasint"`
	Keys      []ChildKey `json:"keys" cbor:"2,keyasint"`
	// Anchor is the index of the first visible leaf when the snapshot was taken.
	Anchor  int       `json:"anchor" cbor:"3,keyasint,omitempty"`
	SavedAt time.Time `json:"saved_at" cbor:"4,keyasint"`
}

// NewSnapshot creates a snapshot for the given session.
func NewSnapshot(sessionID string, keys []ChildKey) *Snapshot {
	return &Snapshot{
		SessionID: sessionID,
		Keys:      keys,
		SavedAt:   time.Now().UTC(),
	}
}

// AnchorKey returns the key at the anchor position, if any.
func (s *Snapshot) AnchorKey() (ChildKey, bool) {
	if s == nil || s.Anchor < 0 || s.Anchor >= len(s.Keys) {
		return "", false
	}
	return s.Keys[s.Anchor], true
}
