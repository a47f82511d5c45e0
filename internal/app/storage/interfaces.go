package storage

import (
	"context"

	"github.com/dlog-universe/dlogd/internal/app/domain/bridge"
	"github.com/dlog-universe/dlogd/internal/app/domain/landlock"
	"github.com/dlog-universe/dlogd/internal/app/domain/ledger"
)

// JournalStore records completed ledger mutations in order. Appends are
// best-effort observability, never a precondition of the mutation itself.
type JournalStore interface {
	AppendJournal(ctx context.Context, entry ledger.JournalEntry) error
	ListJournal(ctx context.Context, limit int) ([]ledger.JournalEntry, error)
}

// LockStore persists land locks.
type LockStore interface {
	CreateLock(ctx context.Context, lock landlock.Lock) (landlock.Lock, error)
	GetLock(ctx context.Context, id string) (landlock.Lock, error)
	ListLocks(ctx context.Context, world string) ([]landlock.Lock, error)
}

// PlayerStore persists Minecraft bridge player state keyed by player UUID.
type PlayerStore interface {
	UpsertPlayer(ctx context.Context, player bridge.PlayerState) (bridge.PlayerState, error)
	GetPlayer(ctx context.Context, playerUUID string) (bridge.PlayerState, error)
	ListPlayers(ctx context.Context) ([]bridge.PlayerState, error)
}
