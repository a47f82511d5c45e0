package app

import (
	"context"
	"fmt"
	"math/big"

	domainledger "github.com/dlog-universe/dlogd/internal/app/domain/ledger"
	"github.com/dlog-universe/dlogd/internal/app/ledger"
	banksvc "github.com/dlog-universe/dlogd/internal/app/services/bank"
	bridgesvc "github.com/dlog-universe/dlogd/internal/app/services/bridge"
	lockssvc "github.com/dlog-universe/dlogd/internal/app/services/locks"
	skysvc "github.com/dlog-universe/dlogd/internal/app/services/sky"
	"github.com/dlog-universe/dlogd/internal/app/storage"
	"github.com/dlog-universe/dlogd/internal/app/storage/memory"
	"github.com/dlog-universe/dlogd/internal/app/system"
	"github.com/dlog-universe/dlogd/internal/config"
	"github.com/dlog-universe/dlogd/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Journal storage.JournalStore
	Locks   storage.LockStore
	Players storage.PlayerStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger
	cfg     config.Config
	closers []func() error

	Bank   *banksvc.Service
	Ticker *banksvc.Ticker
	Locks  *lockssvc.Service
	Bridge *bridgesvc.Service
	Sky    *skysvc.Scheduler
}

// New builds a fully initialised application from the node config and the
// provided stores. Genesis balances are seeded before any service starts.
func New(cfg config.Config, stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Journal == nil {
		stores.Journal = mem
	}
	if stores.Locks == nil {
		stores.Locks = mem
	}
	if stores.Players == nil {
		stores.Players = mem
	}

	app := &Application{
		manager: system.NewManager(),
		log:     log,
		cfg:     cfg,
	}

	if cfg.JournalPath != "" {
		journal, err := storage.NewJSONLJournal(stores.Journal, cfg.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("open journal file: %w", err)
		}
		if c, ok := journal.(interface{ Close() error }); ok {
			app.closers = append(app.closers, c.Close)
		}
		stores.Journal = journal
	}

	state := ledger.New(ledger.Params{
		AnnualHolderInterest: cfg.Monetary.AnnualHolderInterest,
		TicksPerYear:         cfg.TicksPerYear(),
	})

	app.Bank = banksvc.New(state, stores.Journal, log)
	app.Locks = lockssvc.New(stores.Locks, log)
	app.Bridge = bridgesvc.New(stores.Players, app.Bank, cfg.PhiTickRate, log)
	app.Sky = skysvc.NewScheduler(cfg.Sky, app.Bank, log)
	app.Ticker = banksvc.NewTicker(app.Bank, cfg.BlockInterval(), log)

	ctx := context.Background()
	for _, g := range cfg.Genesis {
		id := domainledger.AccountID{Phone: g.Phone, Label: g.Label}
		app.Bank.Seed(ctx, id, big.NewInt(g.Amount))
	}

	for _, svc := range []system.Service{app.Ticker, app.Sky} {
		if err := app.manager.Register(svc); err != nil {
			return nil, fmt.Errorf("register %s: %w", svc.Name(), err)
		}
	}

	return app, nil
}

// Config returns the configuration the application was built with.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services and closes any journal sinks.
func (a *Application) Stop(ctx context.Context) error {
	err := a.manager.Stop(ctx)
	for _, closeFn := range a.closers {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
