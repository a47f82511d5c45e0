package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	domainledger "github.com/dlog-universe/dlogd/internal/app/domain/ledger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// snapshotBroker fans folded snapshots out to websocket subscribers. Slow
// clients are skipped rather than allowed to stall the tick path.
type snapshotBroker struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

func newSnapshotBroker() *snapshotBroker {
	return &snapshotBroker{
		clients: make(map[chan []byte]struct{}),
	}
}

func (b *snapshotBroker) register(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
}

func (b *snapshotBroker) unregister(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, client)
	close(client)
}

func (b *snapshotBroker) broadcast(snap domainledger.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client <- data:
		default:
			// Client is slow/blocked, skip
		}
	}
}

// wsSnapshots upgrades to a websocket and streams one JSON snapshot per
// block tick, starting with the current one.
func (h *handler) wsSnapshots(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	first, err := json.Marshal(h.app.Bank.Snapshot(r.Context()))
	if err == nil {
		if err := conn.WriteMessage(websocket.TextMessage, first); err != nil {
			return
		}
	}

	client := make(chan []byte, 8)
	h.broker.register(client)
	defer h.broker.unregister(client)

	// Drain the read side so close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case data, ok := <-client:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
