package httpapi

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	app "github.com/dlog-universe/dlogd/internal/app"
	domainledger "github.com/dlog-universe/dlogd/internal/app/domain/ledger"
	"github.com/dlog-universe/dlogd/internal/config"
)

func TestSnapshotStreamSendsCurrentState(t *testing.T) {
	cfg := config.Default()
	application, err := app.New(*cfg, app.Stores{}, nil)
	if err != nil {
		t.Fatalf("build application: %v", err)
	}
	srv := httptest.NewServer(NewHandler(application))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/snapshots"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read first snapshot: %v", err)
	}

	var snap domainledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v (%s)", err, data)
	}
	if snap.Height != 0 || snap.MasterRoot == "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestSnapshotStreamFollowsTicker(t *testing.T) {
	cfg := config.Default()
	cfg.Monetary.TargetBlockTimeSeconds = 0.02
	application, err := app.New(*cfg, app.Stores{}, nil)
	if err != nil {
		t.Fatalf("build application: %v", err)
	}
	srv := httptest.NewServer(NewHandler(application))
	defer srv.Close()

	ctx := context.Background()
	if err := application.Start(ctx); err != nil {
		t.Fatalf("start application: %v", err)
	}
	defer application.Stop(ctx)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/snapshots"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}

	// The ticker folds every block interval and fans out to subscribers.
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read ticked snapshot: %v", err)
	}
	var got domainledger.Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Height == 0 || got.MasterRoot == "" {
		t.Fatalf("streamed snapshot should follow a tick: %+v", got)
	}
}
