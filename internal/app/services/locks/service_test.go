package locks

import (
	"context"
	"math/big"
	"testing"

	"github.com/dlog-universe/dlogd/internal/app/domain/landlock"
	"github.com/dlog-universe/dlogd/internal/app/storage/memory"
)

func TestMintDefaultsID(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	minted, err := svc.Mint(ctx, landlock.Lock{
		OwnerPhone:           "9132077554",
		World:                "earth_shell",
		Tier:                 "gold",
		X:                    128,
		Z:                    -64,
		Size:                 16,
		ZillowEstimateAmount: big.NewInt(80_000),
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if minted.ID != "earth_shell:128:-64:gold" {
		t.Fatalf("unexpected default id: %s", minted.ID)
	}

	got, err := svc.Get(ctx, minted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerPhone != "9132077554" {
		t.Fatalf("owner lost: %s", got.OwnerPhone)
	}
}

func TestMintValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Mint(ctx, landlock.Lock{Tier: "iron", Size: 4}); err == nil {
		t.Fatalf("expected error for missing world")
	}
	if _, err := svc.Mint(ctx, landlock.Lock{World: "moon_core", Size: 4}); err == nil {
		t.Fatalf("expected error for missing tier")
	}
	if _, err := svc.Mint(ctx, landlock.Lock{World: "moon_core", Tier: "iron"}); err == nil {
		t.Fatalf("expected error for non-positive size")
	}
}

func TestListFiltersByWorld(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	worlds := []string{"earth_shell", "moon_core", "earth_shell"}
	for i, world := range worlds {
		if _, err := svc.Mint(ctx, landlock.Lock{World: world, Tier: "iron", X: int64(i), Size: 8}); err != nil {
			t.Fatalf("mint %d: %v", i, err)
		}
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 locks, got %d", len(all))
	}

	earth, err := svc.List(ctx, "earth_shell")
	if err != nil {
		t.Fatalf("list earth: %v", err)
	}
	if len(earth) != 2 {
		t.Fatalf("expected 2 earth locks, got %d", len(earth))
	}
}
