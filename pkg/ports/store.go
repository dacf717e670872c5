package ports

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
)

// SnapshotStore defines the interface for persisting variable store snapshots.
// This allows a conversation's narrative state to survive a restart.
type SnapshotStore interface {
	// Save persists the snapshot under key, replacing any previous one.
	Save(ctx context.Context, key string, snap *domain.Snapshot) error

	// Load retrieves the snapshot stored under key.
	// Returns domain.ErrSnapshotNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*domain.Snapshot, error)

	// Delete removes the snapshot stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key.
	List(ctx context.Context) ([]string, error)
}
