package sky

import (
	"context"
	"testing"

	"github.com/dlog-universe/dlogd/internal/app/ledger"
	"github.com/dlog-universe/dlogd/internal/app/services/bank"
	"github.com/dlog-universe/dlogd/internal/app/storage/memory"
	"github.com/dlog-universe/dlogd/internal/config"
)

func defaultSlides() []config.Slide {
	return config.Default().Sky.Slides
}

func TestTimelineWrapsAround(t *testing.T) {
	tl := NewTimeline(defaultSlides())
	if tl.TotalDurationTicks() != 32 {
		t.Fatalf("total duration: %d", tl.TotalDurationTicks())
	}

	cases := []struct {
		tick uint64
		want string
	}{
		{0, "dawn"},
		{7, "dawn"},
		{8, "noon"},
		{16, "dusk"},
		{24, "void"},
		{31, "void"},
		{32, "dawn"}, // loops
		{100, "dawn"},
	}
	for _, c := range cases {
		slide, ok := tl.SlideAtTick(c.tick)
		if !ok {
			t.Fatalf("tick %d: no slide", c.tick)
		}
		if slide.ID != c.want {
			t.Fatalf("tick %d: got %s want %s", c.tick, slide.ID, c.want)
		}
	}
}

func TestTimelineEmpty(t *testing.T) {
	tl := NewTimeline(nil)
	if _, ok := tl.SlideAtTick(5); ok {
		t.Fatalf("empty timeline should not resolve a slide")
	}
	if tl.TotalDurationTicks() != 1 {
		t.Fatalf("empty timeline duration: %d", tl.TotalDurationTicks())
	}
}

func TestCurrentFollowsLedgerHeight(t *testing.T) {
	state := ledger.New(ledger.Params{AnnualHolderInterest: 0, TicksPerYear: 3_944_700})
	bankSvc := bank.New(state, memory.New(), nil)
	sched := NewScheduler(config.Default().Sky, bankSvc, nil)

	ctx := context.Background()
	if got := sched.Current(ctx); got.SlideID != "dawn" || got.Height != 0 {
		t.Fatalf("initial view: %+v", got)
	}

	for i := 0; i < 9; i++ {
		bankSvc.Tick(ctx)
	}
	got := sched.Current(ctx)
	if got.SlideID != "noon" {
		t.Fatalf("after 9 ticks: %+v", got)
	}
	if got.TickInCycle != 9 {
		t.Fatalf("tick in cycle: %d", got.TickInCycle)
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	state := ledger.New(ledger.Params{AnnualHolderInterest: 0, TicksPerYear: 3_944_700})
	bankSvc := bank.New(state, memory.New(), nil)
	sched := NewScheduler(config.Sky{Schedule: "@every 1s", Slides: defaultSlides()}, bankSvc, nil)

	ctx := context.Background()
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if err := sched.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := sched.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	state := ledger.New(ledger.Params{AnnualHolderInterest: 0, TicksPerYear: 3_944_700})
	bankSvc := bank.New(state, memory.New(), nil)
	sched := NewScheduler(config.Sky{Schedule: "not a schedule", Slides: defaultSlides()}, bankSvc, nil)

	if err := sched.Start(context.Background()); err == nil {
		t.Fatalf("expected schedule parse error")
	}
}
