// Package locks manages the land-lock registry.
package locks

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/dlog-universe/dlogd/internal/app/domain/landlock"
	"github.com/dlog-universe/dlogd/internal/app/storage"
	"github.com/dlog-universe/dlogd/pkg/logger"
)

// Service mints and lists land locks.
type Service struct {
	store storage.LockStore
	log   *logger.Logger
}

// New constructs a land-lock service.
func New(store storage.LockStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("locks")
	}
	return &Service{store: store, log: log}
}

// Mint registers a new land lock. An empty id defaults to
// "world:x:z:tier".
func (s *Service) Mint(ctx context.Context, lock landlock.Lock) (landlock.Lock, error) {
	lock.World = strings.TrimSpace(lock.World)
	lock.Tier = strings.TrimSpace(lock.Tier)
	if lock.World == "" {
		return landlock.Lock{}, fmt.Errorf("world is required")
	}
	if lock.Tier == "" {
		return landlock.Lock{}, fmt.Errorf("tier is required")
	}
	if lock.Size <= 0 {
		return landlock.Lock{}, fmt.Errorf("size must be positive")
	}
	if lock.ID == "" {
		lock.ID = fmt.Sprintf("%s:%d:%d:%s", lock.World, lock.X, lock.Z, lock.Tier)
	}
	if lock.ZillowEstimateAmount == nil {
		lock.ZillowEstimateAmount = new(big.Int)
	}

	minted, err := s.store.CreateLock(ctx, lock)
	if err != nil {
		return landlock.Lock{}, err
	}

	s.log.WithField("lock_id", minted.ID).
		WithField("world", minted.World).
		WithField("owner", minted.OwnerPhone).
		Info("land lock minted")
	return minted, nil
}

// List returns locks, optionally filtered by world.
func (s *Service) List(ctx context.Context, world string) ([]landlock.Lock, error) {
	return s.store.ListLocks(ctx, strings.TrimSpace(world))
}

// Get retrieves one lock by id.
func (s *Service) Get(ctx context.Context, id string) (landlock.Lock, error) {
	return s.store.GetLock(ctx, id)
}
