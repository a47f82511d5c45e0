// Package bank exposes the ledger state machine as an application service:
// transfers, balance queries, block ticks and snapshot folds, with journal
// and metrics side channels around the core.
package bank

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"

	domain "github.com/dlog-universe/dlogd/internal/app/domain/ledger"
	"github.com/dlog-universe/dlogd/internal/app/ledger"
	"github.com/dlog-universe/dlogd/internal/app/metrics"
	"github.com/dlog-universe/dlogd/internal/app/storage"
	"github.com/dlog-universe/dlogd/pkg/logger"
)

// Service wraps a ledger.State with logging, metrics and the mutation
// journal. All value movement in the node goes through here.
type Service struct {
	state   *ledger.State
	journal storage.JournalStore
	log     *logger.Logger
}

// New constructs a bank service around an existing ledger state.
func New(state *ledger.State, journal storage.JournalStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("bank")
	}
	return &Service{
		state:   state,
		journal: journal,
		log:     log,
	}
}

// BalanceOf reports the balance for an account, zero for unknown accounts.
func (s *Service) BalanceOf(_ context.Context, id domain.AccountID) domain.BalanceView {
	return domain.BalanceView{Account: id, Balance: s.state.BalanceOf(id)}
}

// Seed overwrites an account balance. Startup/genesis only.
func (s *Service) Seed(ctx context.Context, id domain.AccountID, amount *big.Int) {
	s.state.SetBalance(id, amount)
	s.appendJournal(ctx, domain.JournalEntry{
		ID:     uuid.New().String(),
		Kind:   "seed",
		To:     id,
		Amount: new(big.Int).Set(amount),
		Height: s.state.Height(),
		TimeMS: time.Now().UnixMilli(),
	})
	s.log.WithField("phone", id.Phone).
		WithField("label", id.Label).
		WithField("amount", amount.String()).
		Info("balance seeded")
}

// Transfer moves value between accounts and returns both post-transfer
// balances. On failure the error is the ledger's sentinel and the returned
// balances are the unchanged ones.
func (s *Service) Transfer(ctx context.Context, from, to domain.AccountID, amount *big.Int) (*big.Int, *big.Int, error) {
	err := s.state.Transfer(from, to, amount)

	fromBal := s.state.BalanceOf(from)
	toBal := s.state.BalanceOf(to)

	switch {
	case err == nil:
		metrics.RecordTransfer("ok")
		s.appendJournal(ctx, domain.JournalEntry{
			ID:     uuid.New().String(),
			Kind:   "transfer",
			From:   from,
			To:     to,
			Amount: new(big.Int).Set(amount),
			Height: s.state.Height(),
			TimeMS: time.Now().UnixMilli(),
		})
	case errors.Is(err, ledger.ErrInvalidAmount):
		metrics.RecordTransfer("invalid_amount")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		metrics.RecordTransfer("insufficient_balance")
	default:
		metrics.RecordTransfer("error")
	}

	return fromBal, toBal, err
}

// Tick advances the chain height, compounds holder interest, and folds a
// snapshot of the resulting state.
func (s *Service) Tick(ctx context.Context) domain.Snapshot {
	start := time.Now()
	height := s.state.Tick()
	metrics.RecordTick(time.Since(start))
	metrics.SetLedgerGauges(height, s.state.Accounts())

	s.appendJournal(ctx, domain.JournalEntry{
		ID:     uuid.New().String(),
		Kind:   "tick",
		Height: height,
		TimeMS: time.Now().UnixMilli(),
	})

	return s.state.Snapshot()
}

// Snapshot folds the current state without advancing the height.
func (s *Service) Snapshot(_ context.Context) domain.Snapshot {
	return s.state.Snapshot()
}

// Height returns the current block height.
func (s *Service) Height(_ context.Context) uint64 {
	return s.state.Height()
}

// Journal lists the most recent journal entries, newest last.
func (s *Service) Journal(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.ListJournal(ctx, limit)
}

func (s *Service) appendJournal(ctx context.Context, entry domain.JournalEntry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.AppendJournal(ctx, entry); err != nil {
		s.log.WithError(err).Warn("journal append failed")
	}
}
