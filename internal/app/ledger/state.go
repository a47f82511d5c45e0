// Package ledger implements the in-memory ledger state machine: a balance
// map keyed by account, an all-or-nothing transfer operation, a block tick
// that compounds holder interest across every account, and a deterministic
// snapshot digest of the whole state.
//
// A State is an owned instance with interior locking; callers share one
// instance per node and every operation is atomic from their perspective.
package ledger

import (
	"errors"
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/dlog-universe/dlogd/internal/app/domain/ledger"
)

var (
	// ErrInvalidAmount rejects transfers with a non-positive amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientBalance rejects transfers that would drive the sender
	// negative. Accounts with no entry have an implicit zero balance, so
	// transfers from unknown accounts fail with this error as well.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// factorScale is the fixed-point denominator for the per-tick interest
// factor. Balances are multiplied by factorNum and divided by this scale
// with round-half-up, so the same rounding is applied to every account on
// every tick.
const factorScale = 1_000_000_000_000

// Params fixes the monetary behavior of a State at construction. The rate
// is annual; TicksPerYear converts it into the per-tick compounding factor
// (1+rate)^(1/ticksPerYear), which keeps the annualized growth independent
// of the tick cadence.
type Params struct {
	AnnualHolderInterest float64
	TicksPerYear         float64
}

// State is the aggregate root of the ledger. The zero value is not usable;
// construct with New.
type State struct {
	mu sync.RWMutex

	height     uint64
	balances   map[ledger.AccountID]*big.Int
	lastDigest string

	// per-tick factor numerator over factorScale, fixed at construction
	factorNum *big.Int
}

// New creates an empty ledger at height 0.
func New(params Params) *State {
	rate := params.AnnualHolderInterest
	ticksPerYear := params.TicksPerYear
	if ticksPerYear <= 0 {
		ticksPerYear = 1
	}
	perTick := math.Pow(1+rate, 1/ticksPerYear)
	if perTick < 0 || math.IsNaN(perTick) || math.IsInf(perTick, 0) {
		perTick = 1
	}

	return &State{
		balances:  make(map[ledger.AccountID]*big.Int),
		factorNum: big.NewInt(int64(math.Round(perTick * factorScale))),
	}
}

// Height returns the current block height.
func (s *State) Height() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

// BalanceOf returns the balance for an account, zero for accounts that have
// never been seen. The returned value is a copy.
func (s *State) BalanceOf(id ledger.AccountID) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceLocked(id)
}

// must hold lock
func (s *State) balanceLocked(id ledger.AccountID) *big.Int {
	if bal, ok := s.balances[id]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// SetBalance overwrites (or creates) an account's balance. Seeding only:
// normal value movement goes through Transfer. Negative values are clamped
// to zero.
func (s *State) SetBalance(id ledger.AccountID, balance *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := new(big.Int)
	if balance != nil && balance.Sign() > 0 {
		v.Set(balance)
	}
	s.balances[id] = v
}

// Transfer atomically moves amount from one account to another. On any
// error no balance changes. A self-transfer with sufficient balance
// succeeds and leaves the balance unchanged.
func (s *State) Transfer(from, to ledger.AccountID, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fromBal := s.balanceLocked(from)
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if from == to {
		// net no-op, but the funds check above still applies
		return nil
	}

	toBal := s.balanceLocked(to)
	s.balances[from] = fromBal.Sub(fromBal, amount)
	s.balances[to] = toBal.Add(toBal, amount)
	return nil
}

// Tick advances the height by one (saturating at the maximum) and compounds
// one tick of holder interest onto every balance. Returns the new height.
func (s *State) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.height < math.MaxUint64 {
		s.height++
	}

	half := big.NewInt(factorScale / 2)
	scale := big.NewInt(factorScale)
	for id, bal := range s.balances {
		// round half up on the fixed-point product
		v := new(big.Int).Mul(bal, s.factorNum)
		v.Add(v, half)
		v.Div(v, scale)
		s.balances[id] = v
	}

	return s.height
}

// Snapshot folds the current state into its master root digest. The digest
// is a pure function of (height, balances): repeated calls without an
// intervening mutation yield the identical string. The timestamp is
// display-only.
func (s *State) Snapshot() ledger.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	root := masterRoot(s.height, s.balances)
	s.lastDigest = root

	return ledger.Snapshot{
		Height:      s.height,
		MasterRoot:  root,
		TimestampMS: time.Now().UnixMilli(),
	}
}

// LastDigest returns the digest cached by the most recent Snapshot, or the
// empty string if none has been taken.
func (s *State) LastDigest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastDigest
}

// Accounts returns the number of known balance entries.
func (s *State) Accounts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.balances)
}

// TotalSupply sums every balance. Transfer conserves this; only Tick
// changes it.
func (s *State) TotalSupply() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := new(big.Int)
	for _, bal := range s.balances {
		total.Add(total, bal)
	}
	return total
}
