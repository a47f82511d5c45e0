package bank

import (
	"context"
	"sync"
	"time"

	domain "github.com/dlog-universe/dlogd/internal/app/domain/ledger"
	"github.com/dlog-universe/dlogd/internal/app/system"
	"github.com/dlog-universe/dlogd/pkg/logger"
)

var _ system.Service = (*Ticker)(nil)

// SnapshotListener receives the snapshot folded after each block tick.
type SnapshotListener func(domain.Snapshot)

// Ticker drives the ledger's block tick on a fixed cadence. A single
// goroutine owns the loop, so overlapping fires cannot double-tick.
type Ticker struct {
	service  *Service
	log      *logger.Logger
	interval time.Duration

	mu        sync.Mutex
	listeners []SnapshotListener
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
}

// NewTicker creates a lifecycle-managed block ticker.
func NewTicker(service *Service, interval time.Duration, log *logger.Logger) *Ticker {
	if log == nil {
		log = logger.NewDefault("block-ticker")
	}
	if interval <= 0 {
		interval = 8 * time.Second
	}
	return &Ticker{
		service:  service,
		log:      log,
		interval: interval,
	}
}

// AddListener registers a callback invoked after every tick with the folded
// snapshot. Call before Start.
func (t *Ticker) AddListener(fn SnapshotListener) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

func (t *Ticker) Name() string { return "block-ticker" }

func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.running = true
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				t.tick(runCtx)
			}
		}
	}()

	t.log.Infof("block ticker started, interval %s", t.interval)
	return nil
}

func (t *Ticker) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	cancel := t.cancel
	t.running = false
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		t.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	t.log.Info("block ticker stopped")
	return nil
}

func (t *Ticker) tick(ctx context.Context) {
	snap := t.service.Tick(ctx)

	t.mu.Lock()
	listeners := make([]SnapshotListener, len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}

	t.log.WithField("height", snap.Height).Debug("block tick applied")
}
