package ports

import (
	"context"

	"github.com/aretw0/feedstream/pkg/domain"
)

// SnapshotStore persists session snapshots for later restoration.
type SnapshotStore interface {
	// Save persists the snapshot under its session ID.
	Save(ctx context.Context, snapshot *domain.Snapshot) error

	// Load retrieves the snapshot for a session.
	// Returns domain.ErrSnapshotNotFound if the session has none.
	Load(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	Delete(ctx context.Context, sessionID string) error

	// List returns the session IDs that have a snapshot.
	List(ctx context.Context) ([]string, error)
}
