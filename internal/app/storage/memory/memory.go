package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dlog-universe/dlogd/internal/app/domain/bridge"
	"github.com/dlog-universe/dlogd/internal/app/domain/landlock"
	"github.com/dlog-universe/dlogd/internal/app/domain/ledger"
	"github.com/dlog-universe/dlogd/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use; the node runs on it by default since durability is out
// of scope.
type Store struct {
	mu      sync.RWMutex
	journal []ledger.JournalEntry
	locks   map[string]landlock.Lock
	lockIDs []string // creation order
	players map[string]bridge.PlayerState
}

var _ storage.JournalStore = (*Store)(nil)
var _ storage.LockStore = (*Store)(nil)
var _ storage.PlayerStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		locks:   make(map[string]landlock.Lock),
		players: make(map[string]bridge.PlayerState),
	}
}

// JournalStore implementation ------------------------------------------------

func (s *Store) AppendJournal(_ context.Context, entry ledger.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = append(s.journal, entry)
	return nil
}

func (s *Store) ListJournal(_ context.Context, limit int) ([]ledger.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.journal)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]ledger.JournalEntry, n)
	copy(out, s.journal[len(s.journal)-n:])
	return out, nil
}

// LockStore implementation ---------------------------------------------------

func (s *Store) CreateLock(_ context.Context, lock landlock.Lock) (landlock.Lock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.locks[lock.ID]; exists {
		return landlock.Lock{}, fmt.Errorf("lock %s already exists", lock.ID)
	}
	s.locks[lock.ID] = lock
	s.lockIDs = append(s.lockIDs, lock.ID)
	return lock, nil
}

func (s *Store) GetLock(_ context.Context, id string) (landlock.Lock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lock, ok := s.locks[id]
	if !ok {
		return landlock.Lock{}, fmt.Errorf("lock %s not found", id)
	}
	return lock, nil
}

func (s *Store) ListLocks(_ context.Context, world string) ([]landlock.Lock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]landlock.Lock, 0, len(s.lockIDs))
	for _, id := range s.lockIDs {
		lock := s.locks[id]
		if world != "" && lock.World != world {
			continue
		}
		out = append(out, lock)
	}
	return out, nil
}

// PlayerStore implementation -------------------------------------------------

func (s *Store) UpsertPlayer(_ context.Context, player bridge.PlayerState) (bridge.PlayerState, error) {
	if player.PlayerUUID == "" {
		return bridge.PlayerState{}, fmt.Errorf("player uuid is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.PlayerUUID] = player
	return player, nil
}

func (s *Store) GetPlayer(_ context.Context, playerUUID string) (bridge.PlayerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, ok := s.players[playerUUID]
	if !ok {
		return bridge.PlayerState{}, fmt.Errorf("player %s not found", playerUUID)
	}
	return player, nil
}

func (s *Store) ListPlayers(_ context.Context) ([]bridge.PlayerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]bridge.PlayerState, 0, len(s.players))
	for _, player := range s.players {
		out = append(out, player)
	}
	return out, nil
}
