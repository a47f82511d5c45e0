package bridge

import (
	"context"
	"math/big"
	"strings"
	"testing"

	domainbridge "github.com/dlog-universe/dlogd/internal/app/domain/bridge"
	domainledger "github.com/dlog-universe/dlogd/internal/app/domain/ledger"
	"github.com/dlog-universe/dlogd/internal/app/ledger"
	"github.com/dlog-universe/dlogd/internal/app/services/bank"
	"github.com/dlog-universe/dlogd/internal/app/storage/memory"
)

func newTestBridge(t *testing.T) (*Service, *bank.Service) {
	t.Helper()
	store := memory.New()
	state := ledger.New(ledger.Params{AnnualHolderInterest: 0.618, TicksPerYear: 3_944_700})
	bankSvc := bank.New(state, store, nil)
	return New(store, bankSvc, 1000.0, nil), bankSvc
}

func TestRegisterComputesTuning(t *testing.T) {
	svc, _ := newTestBridge(t)

	state, err := svc.Register(context.Background(), domainbridge.RegisterRequest{
		PlayerUUID: "uuid-1",
		Nickname:   "steve",
		PlanetID:   "earth",
		World:      "earth_shell",
		ClientFPS:  60,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if state.LastTuning.TicksPerFrame != 1000.0/60 {
		t.Fatalf("ticks per frame: %v", state.LastTuning.TicksPerFrame)
	}
	if state.LastTuning.GFall <= state.LastTuning.GFly {
		t.Fatalf("earth fall gravity should exceed fly gravity: %+v", state.LastTuning)
	}

	got, err := svc.Player(context.Background(), "uuid-1")
	if err != nil {
		t.Fatalf("player lookup: %v", err)
	}
	if got.Nickname != "steve" {
		t.Fatalf("nickname lost: %s", got.Nickname)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := newTestBridge(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, domainbridge.RegisterRequest{PlayerUUID: "u", PlanetID: "earth", ClientFPS: 0}); err == nil {
		t.Fatalf("expected error for zero fps")
	}
	if _, err := svc.Register(ctx, domainbridge.RegisterRequest{PlayerUUID: "u", PlanetID: "pluto", ClientFPS: 30}); err == nil {
		t.Fatalf("expected error for unknown planet")
	}
	if _, err := svc.Register(ctx, domainbridge.RegisterRequest{PlanetID: "earth", ClientFPS: 30}); err == nil {
		t.Fatalf("expected error for missing uuid")
	}
}

func TestHandleFrameBalanceQuery(t *testing.T) {
	svc, bankSvc := newTestBridge(t)
	ctx := context.Background()
	bankSvc.Seed(ctx, domainledger.AccountID{Phone: "9132077554", Label: "comet"}, big.NewInt(1_000_000))

	reply := svc.HandleFrame(ctx, []byte(`{"kind":"balance_query","phone":"9132077554","label":"comet"}`))
	if !strings.Contains(reply, "1000000") {
		t.Fatalf("unexpected reply: %s", reply)
	}
}

func TestHandleFrameTransfer(t *testing.T) {
	svc, bankSvc := newTestBridge(t)
	ctx := context.Background()
	from := domainledger.AccountID{Phone: "9132077554", Label: "comet"}
	to := domainledger.AccountID{Phone: "9132077554", Label: "fun"}
	bankSvc.Seed(ctx, from, big.NewInt(500))

	reply := svc.HandleFrame(ctx, []byte(`{"kind":"transfer","from":{"phone":"9132077554","label":"comet"},"to":{"phone":"9132077554","label":"fun"},"amount":200}`))
	if !strings.HasSuffix(reply, "ok") {
		t.Fatalf("transfer frame failed: %s", reply)
	}
	if got := bankSvc.BalanceOf(ctx, to).Balance; got.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("receiver balance %s", got)
	}

	reply = svc.HandleFrame(ctx, []byte(`{"kind":"transfer","from":{"phone":"9132077554","label":"comet"},"to":{"phone":"9132077554","label":"fun"},"amount":0}`))
	if !strings.Contains(reply, "rejected") {
		t.Fatalf("zero amount should be rejected: %s", reply)
	}
}

func TestHandleFrameUnknownKind(t *testing.T) {
	svc, _ := newTestBridge(t)

	reply := svc.HandleFrame(context.Background(), []byte(`{"kind":"mine_job","seq":7}`))
	if !strings.Contains(reply, "routed") {
		t.Fatalf("unexpected reply: %s", reply)
	}
	reply = svc.HandleFrame(context.Background(), []byte(`not json`))
	if !strings.Contains(reply, "invalid json") {
		t.Fatalf("unexpected reply: %s", reply)
	}
}
