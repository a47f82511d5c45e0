package bank

import (
	"context"
	"testing"
	"time"

	domain "github.com/dlog-universe/dlogd/internal/app/domain/ledger"
)

func TestTickerAdvancesHeightAndNotifies(t *testing.T) {
	svc := newTestService()

	snapshots := make(chan domain.Snapshot, 8)
	ticker := NewTicker(svc, 10*time.Millisecond, nil)
	ticker.AddListener(func(snap domain.Snapshot) {
		select {
		case snapshots <- snap:
		default:
		}
	})

	ctx := context.Background()
	if err := ticker.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer ticker.Stop(ctx)

	select {
	case snap := <-snapshots:
		if snap.Height == 0 {
			t.Fatalf("listener saw height 0")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no tick observed")
	}
}

func TestTickerStopIsIdempotent(t *testing.T) {
	svc := newTestService()
	ticker := NewTicker(svc, time.Hour, nil)

	ctx := context.Background()
	if err := ticker.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ticker.Start(ctx); err != nil {
		t.Fatalf("double start: %v", err)
	}
	if err := ticker.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := ticker.Stop(ctx); err != nil {
		t.Fatalf("double stop: %v", err)
	}
}
