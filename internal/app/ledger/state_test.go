package ledger

import (
	"math/big"
	"testing"

	domain "github.com/dlog-universe/dlogd/internal/app/domain/ledger"
)

var (
	genesis = domain.AccountID{Phone: "TEST", Label: "genesis"}
	fun     = domain.AccountID{Phone: "TEST", Label: "fun"}
)

func newTestState() *State {
	// 61.8% annual, ticks every 8 seconds
	return New(Params{AnnualHolderInterest: 0.618, TicksPerYear: 365.25 * 24 * 3600 / 8})
}

func TestBalanceOfUnknownAccountIsZero(t *testing.T) {
	s := newTestState()
	if got := s.BalanceOf(domain.AccountID{Phone: "555", Label: "nope"}); got.Sign() != 0 {
		t.Fatalf("expected zero balance, got %s", got)
	}
	if s.Accounts() != 0 {
		t.Fatalf("read must not create entries, have %d", s.Accounts())
	}
}

func TestTransferMovesValue(t *testing.T) {
	s := newTestState()
	s.SetBalance(genesis, big.NewInt(1_000_000))

	if err := s.Transfer(genesis, fun, big.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := s.BalanceOf(genesis); got.Cmp(big.NewInt(999_900)) != 0 {
		t.Fatalf("sender balance %s, want 999900", got)
	}
	if got := s.BalanceOf(fun); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("receiver balance %s, want 100", got)
	}
}

func TestTransferZeroAmountRejected(t *testing.T) {
	s := newTestState()
	s.SetBalance(genesis, big.NewInt(500))

	if err := s.Transfer(genesis, fun, big.NewInt(0)); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := s.Transfer(genesis, fun, big.NewInt(-5)); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}
	if got := s.BalanceOf(genesis); got.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("sender mutated on rejected transfer: %s", got)
	}
}

func TestTransferInsufficientBalanceIsAtomic(t *testing.T) {
	s := newTestState()
	s.SetBalance(genesis, big.NewInt(100))

	if err := s.Transfer(genesis, fun, big.NewInt(500)); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := s.BalanceOf(genesis); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("sender balance changed on failed transfer: %s", got)
	}
	if got := s.BalanceOf(fun); got.Sign() != 0 {
		t.Fatalf("receiver balance changed on failed transfer: %s", got)
	}
}

func TestTransferFromUnknownAccountFails(t *testing.T) {
	s := newTestState()
	err := s.Transfer(domain.AccountID{Phone: "777", Label: "ghost"}, fun, big.NewInt(1))
	if err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestSelfTransferIsNoOp(t *testing.T) {
	s := newTestState()
	s.SetBalance(genesis, big.NewInt(1000))

	if err := s.Transfer(genesis, genesis, big.NewInt(300)); err != nil {
		t.Fatalf("self transfer: %v", err)
	}
	if got := s.BalanceOf(genesis); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("self transfer changed balance: %s", got)
	}

	// still checks funds
	if err := s.Transfer(genesis, genesis, big.NewInt(5000)); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestTransferConservesTotalSupply(t *testing.T) {
	s := newTestState()
	s.SetBalance(genesis, big.NewInt(1_000_000))
	s.SetBalance(fun, big.NewInt(250_000))
	before := s.TotalSupply()

	steps := []struct {
		from, to domain.AccountID
		amount   int64
	}{
		{genesis, fun, 10_000},
		{fun, genesis, 5},
		{genesis, domain.AccountID{Phone: "555", Label: "gift1"}, 777},
		{fun, fun, 1000},
	}
	for _, step := range steps {
		if err := s.Transfer(step.from, step.to, big.NewInt(step.amount)); err != nil {
			t.Fatalf("transfer %v -> %v: %v", step.from, step.to, err)
		}
	}

	if after := s.TotalSupply(); after.Cmp(before) != 0 {
		t.Fatalf("supply changed by transfers: %s -> %s", before, after)
	}
}

func TestTickIncrementsHeightByOne(t *testing.T) {
	s := newTestState()
	for i := uint64(1); i <= 5; i++ {
		if got := s.Tick(); got != i {
			t.Fatalf("height after tick %d: %d", i, got)
		}
	}
	if s.Height() != 5 {
		t.Fatalf("height accessor: %d", s.Height())
	}
}

func TestTickPreservesBalanceRatios(t *testing.T) {
	// A large balance makes the per-tick growth visible despite rounding.
	s := New(Params{AnnualHolderInterest: 0.618, TicksPerYear: 365.25 * 24 * 3600 / 8})
	a := domain.AccountID{Phone: "A", Label: "x"}
	b := domain.AccountID{Phone: "B", Label: "y"}
	s.SetBalance(a, big.NewInt(100_000_000_000))
	s.SetBalance(b, big.NewInt(200_000_000_000))

	s.Tick()

	balA := s.BalanceOf(a)
	balB := s.BalanceOf(b)
	if balA.Cmp(big.NewInt(100_000_000_000)) <= 0 {
		t.Fatalf("balance did not grow: %s", balA)
	}

	// ratio 2:1 preserved up to one unit of rounding per account
	twiceA := new(big.Int).Mul(balA, big.NewInt(2))
	diff := new(big.Int).Sub(twiceA, balB)
	if diff.CmpAbs(big.NewInt(2)) > 0 {
		t.Fatalf("ratio drifted: 2*%s vs %s", balA, balB)
	}
}

func TestTickGrowthMatchesConfiguredRate(t *testing.T) {
	// One tick per year degenerates the per-tick factor to (1 + rate).
	s := New(Params{AnnualHolderInterest: 0.5, TicksPerYear: 1})
	s.SetBalance(genesis, big.NewInt(1_000_000))

	s.Tick()

	if got := s.BalanceOf(genesis); got.Cmp(big.NewInt(1_500_000)) != 0 {
		t.Fatalf("expected 1500000 after one annual tick at 50%%, got %s", got)
	}
}

func TestZeroRateTickLeavesBalances(t *testing.T) {
	s := New(Params{AnnualHolderInterest: 0, TicksPerYear: 1})
	s.SetBalance(genesis, big.NewInt(123_456))

	s.Tick()
	s.Tick()

	if got := s.BalanceOf(genesis); got.Cmp(big.NewInt(123_456)) != 0 {
		t.Fatalf("zero rate changed balance: %s", got)
	}
}

func TestNoNegativeBalances(t *testing.T) {
	s := newTestState()
	s.SetBalance(genesis, big.NewInt(10))

	for i := 0; i < 5; i++ {
		_ = s.Transfer(genesis, fun, big.NewInt(4))
	}
	if got := s.BalanceOf(genesis); got.Sign() < 0 {
		t.Fatalf("negative balance: %s", got)
	}
	if got := s.BalanceOf(fun); got.Cmp(big.NewInt(8)) != 0 {
		t.Fatalf("expected exactly two transfers to land, got %s", got)
	}
}

func TestSetBalanceClampsNegative(t *testing.T) {
	s := newTestState()
	s.SetBalance(genesis, big.NewInt(-42))
	if got := s.BalanceOf(genesis); got.Sign() != 0 {
		t.Fatalf("expected clamp to zero, got %s", got)
	}
}
