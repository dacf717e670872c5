package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot()
		snap.Values["HasKey"] = domain.BoolValue(true)
		snap.Values["Gold"] = domain.IntValue(42)
		snap.Values["Speed"] = domain.FloatValue(1.5)
		snap.Values["Title"] = domain.StringValue("Knight")

		require.NoError(t, store.Save(ctx, key, snap))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		require.Len(t, loaded.Values, 4)
		for name, want := range snap.Values {
			// Types must survive the round trip: an Int stays an Int.
			assert.True(t, want.Equal(loaded.Values[name]), "%s: got %v want %v", name, loaded.Values[name], want)
		}
		assert.WithinDuration(t, snap.SavedAt, loaded.SavedAt, time.Second)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		snap := domain.NewSnapshot()
		snap.Values["Gold"] = domain.IntValue(7)
		require.NoError(t, store.Save(ctx, key, snap))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Len(t, loaded.Values, 1)
		assert.True(t, loaded.Values["Gold"].Equal(domain.IntValue(7)))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, domain.NewSnapshot()))
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1, k2 := key+"-1", key+"-2"
		require.NoError(t, store.Save(ctx, k1, domain.NewSnapshot()))
		require.NoError(t, store.Save(ctx, k2, domain.NewSnapshot()))
		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
