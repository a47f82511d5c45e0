// Package sky turns the ledger height into a looping sky slideshow.
package sky

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/dlog-universe/dlogd/internal/app/services/bank"
	"github.com/dlog-universe/dlogd/internal/config"
	"github.com/dlog-universe/dlogd/pkg/logger"
)

// Timeline resolves which slide is visible at a given ledger tick.
// The show loops forever over the configured slides.
type Timeline struct {
	slides []config.Slide
	total  uint64
}

// NewTimeline builds a timeline from the configured slides. The total
// duration is clamped to at least one tick so modular lookup is safe.
func NewTimeline(slides []config.Slide) *Timeline {
	var total uint64
	for _, s := range slides {
		total += s.DurationTicks
	}
	if total == 0 {
		total = 1
	}
	return &Timeline{slides: slides, total: total}
}

// SlideAtTick returns the slide covering the given tick, wrapping around
// the total show duration. The second result is false when no slides are
// configured.
func (t *Timeline) SlideAtTick(tick uint64) (config.Slide, bool) {
	if len(t.slides) == 0 {
		return config.Slide{}, false
	}
	rem := tick % t.total
	for _, s := range t.slides {
		if rem < s.DurationTicks {
			return s, true
		}
		rem -= s.DurationTicks
	}
	return t.slides[len(t.slides)-1], true
}

// TotalDurationTicks reports the length of one full show cycle.
func (t *Timeline) TotalDurationTicks() uint64 { return t.total }

// View is the scheduler state exposed over the HTTP API.
type View struct {
	Height             uint64 `json:"height"`
	TickInCycle        uint64 `json:"tick_in_cycle"`
	SlideID            string `json:"slide_id"`
	TotalDurationTicks uint64 `json:"total_duration_ticks"`
}

// Scheduler re-evaluates the current slide on a cron beat and logs
// transitions. The HTTP layer reads Current directly, so the beat only
// exists for operator visibility.
type Scheduler struct {
	timeline *Timeline
	bank     *bank.Service
	schedule string
	log      *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	current string
	running bool
}

// NewScheduler wires a scheduler over the bank's ledger height.
func NewScheduler(cfg config.Sky, bankSvc *bank.Service, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewDefault("sky")
	}
	return &Scheduler{
		timeline: NewTimeline(cfg.Slides),
		bank:     bankSvc,
		schedule: cfg.Schedule,
		log:      log,
	}
}

// Name identifies the scheduler to the service manager.
func (s *Scheduler) Name() string { return "sky-scheduler" }

// Start begins the cron beat. Starting twice is a no-op.
func (s *Scheduler) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.beat); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.running = true
	s.log.WithField("schedule", s.schedule).Info("sky scheduler started")
	return nil
}

// Stop halts the cron beat, waiting for an in-flight beat to finish or
// the context to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	c := s.cron
	s.cron = nil
	s.running = false
	s.mu.Unlock()

	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	s.log.Info("sky scheduler stopped")
	return nil
}

// Current resolves the slideshow state at the present ledger height.
func (s *Scheduler) Current(ctx context.Context) View {
	height := s.bank.Height(ctx)
	view := View{
		Height:             height,
		TickInCycle:        height % s.timeline.TotalDurationTicks(),
		TotalDurationTicks: s.timeline.TotalDurationTicks(),
	}
	if slide, ok := s.timeline.SlideAtTick(height); ok {
		view.SlideID = slide.ID
	}
	return view
}

func (s *Scheduler) beat() {
	view := s.Current(context.Background())

	s.mu.Lock()
	changed := view.SlideID != s.current
	s.current = view.SlideID
	s.mu.Unlock()

	if changed {
		s.log.WithField("slide", view.SlideID).
			WithField("height", view.Height).
			Info("sky slide changed")
	}
}
