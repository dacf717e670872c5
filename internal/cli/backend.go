package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/colloquy/internal/config"
	"github.com/aretw0/colloquy/pkg/adapters/file"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/adapters/redis"
	"github.com/aretw0/colloquy/pkg/persistence/middleware"
	"github.com/aretw0/colloquy/pkg/ports"
)

// Backend is an opened snapshot store. Locker is only set for redis.
type Backend struct {
	Store  ports.SnapshotStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend opens the snapshot backend named in cfg.
// BackendNone yields a nil Backend. A configured secret seals every snapshot.
func OpenBackend(cfg config.Config, logger *slog.Logger) (*Backend, error) {
	backend, err := openBackend(cfg, logger)
	if err != nil || backend == nil {
		return backend, err
	}
	key, err := cfg.SecretKey()
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	if key != nil {
		logger.Debug("Snapshot encryption enabled")
		backend.Store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(backend.Store)
	}
	return backend, nil
}

func openBackend(cfg config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.SnapshotBackend {
	case config.BackendNone, "":
		return nil, nil
	case config.BackendMemory:
		return &Backend{Store: memory.NewStore()}, nil
	case config.BackendFile:
		logger.Debug("Using file snapshots", "dir", cfg.SnapshotDir)
		return &Backend{Store: file.New(cfg.SnapshotDir)}, nil
	case config.BackendRedis:
		logger.Debug("Using redis snapshots", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.RedisTTL))
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), ""),
			close:  store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}
