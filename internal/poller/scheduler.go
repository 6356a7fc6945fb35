package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// CycleFunc runs one refresh cycle. It receives the scheduler's context and
// must return when that context is cancelled.
type CycleFunc func(ctx context.Context)

// TickerFunc creates a ticker delivering ticks every d. It returns the tick
// channel and a stop function. Tests substitute a manual ticker.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

// SystemTicker is the default [TickerFunc], backed by [time.NewTicker].
func SystemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Config configures a [Scheduler].
type Config struct {
	// Interval is the time between cycle launches.
	Interval time.Duration

	// OverlapGuard skips a tick while the previous cycle is still running.
	// When false every tick launches a cycle and cycles may overlap.
	OverlapGuard bool

	// NewTicker creates the tick source. nil means [SystemTicker].
	NewTicker TickerFunc

	// Logger receives skip and panic events. nil means [slog.Default].
	Logger *slog.Logger
}

// Scheduler launches a [CycleFunc] immediately on start and then on every
// tick until stopped.
//
// Each launch runs in its own goroutine so a slow cycle never delays the
// timer. Without the overlap guard, a cycle that outlives the interval
// overlaps the next one and whichever finishes last wins.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	cfg    Config
	run    CycleFunc
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup // ticker loop plus every launched cycle

	mu      sync.Mutex
	started bool
	stopped bool

	inFlight atomic.Int32
	launched atomic.Int64
	skipped  atomic.Int64
}

// NewScheduler creates a [Scheduler] that calls run on every tick.
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop].
func NewScheduler(cfg Config, run CycleFunc) *Scheduler {
	if cfg.NewTicker == nil {
		cfg.NewTicker = SystemTicker
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{cfg: cfg, run: run, logger: logger}
}

// Start launches the first cycle and the ticker loop in the background.
//
// Start is non-blocking and idempotent. If Stop was called before Start,
// Start is a no-op. If ctx is nil, context.Background() is used.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	loopCtx := s.ctx // capture under lock to avoid race
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ticks, stop := s.cfg.NewTicker(s.cfg.Interval)
		defer stop()

		s.launch(loopCtx)

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticks:
				s.launch(loopCtx)
			}
		}
	}()
}

// Stop cancels the scheduler and blocks until the ticker loop and every
// in-flight cycle have returned.
//
// Stop is idempotent and safe to call before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// InFlight returns the number of cycles currently running.
func (s *Scheduler) InFlight() int {
	return int(s.inFlight.Load())
}

// Launched returns how many cycles have been started.
func (s *Scheduler) Launched() int64 {
	return s.launched.Load()
}

// Skipped returns how many ticks the overlap guard has dropped.
func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}

// launch starts one cycle in its own goroutine, or skips it when the
// overlap guard is on and a cycle is still running.
func (s *Scheduler) launch(ctx context.Context) {
	if s.cfg.OverlapGuard {
		if !s.inFlight.CompareAndSwap(0, 1) {
			s.skipped.Add(1)
			s.logger.Warn("refresh cycle skipped, previous cycle still in flight",
				"interval", s.cfg.Interval.String(),
			)
			return
		}
	} else {
		s.inFlight.Add(1)
	}

	s.launched.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Add(-1)
		s.runSafe(ctx)
	}()
}

// runSafe calls the cycle function with panic recovery. A panicking cycle is
// logged with a correlation ID and the schedule carries on.
func (s *Scheduler) runSafe(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("refresh cycle panic",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	s.run(ctx)
}
