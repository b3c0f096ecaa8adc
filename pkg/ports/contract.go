package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot(sessionID, []domain.ChildKey{"c1", "c2", "token-1"})
		snap.Anchor = 1

		require.NoError(t, store.Save(ctx, snap), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.SessionID, loaded.SessionID)
		assert.Equal(t, snap.Keys, loaded.Keys)
		assert.Equal(t, 1, loaded.Anchor)
		assert.WithinDuration(t, snap.SavedAt, loaded.SavedAt, time.Second)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSnapshot(sessionID, []domain.ChildKey{"a"})))
		require.NoError(t, store.Save(ctx, domain.NewSnapshot(sessionID, []domain.ChildKey{"b", "c"})))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, []domain.ChildKey{"b", "c"}, loaded.Keys)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSnapshot(sessionID, nil)))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSnapshot(id1, nil))
		_ = store.Save(ctx, domain.NewSnapshot(id2, nil))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
