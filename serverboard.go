package serverboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/serverboard/dashboard"
	"github.com/jpalmerr/serverboard/internal/history"
	"github.com/jpalmerr/serverboard/internal/poller"
	"github.com/jpalmerr/serverboard/internal/server"
	"github.com/jpalmerr/serverboard/internal/store"
)

const (
	defaultPollingInterval = 30 * time.Second
	defaultPort            = 8080
	defaultMaxConcurrency  = 1

	// historyWriteTimeout bounds recording one cycle, independent of the
	// cycle's own context so a cycle cancelled at shutdown is still recorded.
	historyWriteTimeout = 5 * time.Second
)

// Board is the main orchestrator for manifest polling, status enrichment and
// dashboard serving.
//
// Board fetches the server manifest, looks up live status for every enabled
// server, builds a [Summary] per server and publishes the whole set as one
// [Snapshot]. It is created using [New] with functional options and started
// with [Board.Start].
//
// The typical lifecycle is:
//
//	b, err := serverboard.New(serverboard.WithManifestURL("https://example.com/servers.json"))
//	if err != nil {
//	    slog.Error("failed to create serverboard", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	b.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the context to
// trigger graceful shutdown.
type Board struct {
	title            string
	manifest         ManifestSource
	provider         StatusProvider
	pollingInterval  time.Duration
	port             int
	maxConcurrency   int
	overlapGuard     bool
	staticDir        string
	manifestFile     string
	historyPath      string
	historyRetention time.Duration
	logger           *slog.Logger
	cycleCallbacks   []func(CycleResult)

	store     *store.MemoryStore
	history   atomic.Pointer[history.Store]
	newTicker poller.TickerFunc
}

// New creates a new [Board] instance with the given options.
//
// A manifest source must be configured via [WithManifest], [WithManifestURL]
// or [WithManifestFile]. Other options have sensible defaults:
//   - Status provider: [MCSrvStatProvider] against api.mcsrvstat.us
//   - Polling interval: 30 seconds
//   - Port: 8080
//   - Max concurrency: 1 (servers are queried one after another)
//
// Returns an error if no manifest is configured or if any option is invalid.
//
// Example:
//
//	b, err := serverboard.New(
//	    serverboard.WithManifestFile("./servers.json"),
//	    serverboard.WithPollingInterval(time.Minute),
//	    serverboard.WithPort(9090),
//	)
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		pollingInterval: defaultPollingInterval,
		port:            defaultPort,
		maxConcurrency:  defaultMaxConcurrency,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.manifest == nil {
		return nil, errors.New("a manifest source is required")
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	provider := cfg.provider
	if provider == nil {
		p, err := NewMCSrvStatProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create default status provider: %w", err)
		}
		provider = p
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Board{
		title:            cfg.title,
		manifest:         cfg.manifest,
		provider:         provider,
		pollingInterval:  cfg.pollingInterval,
		port:             cfg.port,
		maxConcurrency:   cfg.maxConcurrency,
		overlapGuard:     cfg.overlapGuard,
		staticDir:        cfg.staticDir,
		manifestFile:     cfg.manifestFile,
		historyPath:      cfg.historyPath,
		historyRetention: cfg.historyRetention,
		logger:           logger,
		cycleCallbacks:   cfg.cycleCallbacks,
		store:            store.NewMemoryStore(),
		newTicker:        poller.SystemTicker,
	}, nil
}

// Start begins refreshing and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The history database is opened when [WithHistory] is set
//   - The HTTP server starts on the configured port
//   - A refresh cycle runs immediately, then every polling interval
//   - The dashboard is available at http://localhost:<port>
//
// Returns nil on graceful shutdown. Returns an error if the history database
// cannot be opened or the HTTP server fails to start.
func (b *Board) Start(ctx context.Context) error {
	b.logger.Info("serverboard starting", "provider", b.provider.Name())
	b.logger.Info("polling configured", "interval", b.pollingInterval.String())
	b.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", b.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	srvCfg := server.Config{
		Port:         b.port,
		Title:        b.title,
		Assets:       dashboard.Assets,
		StaticDir:    b.staticDir,
		ManifestFile: b.manifestFile,
	}

	if b.historyPath != "" {
		h, err := history.Open(b.historyPath, b.historyRetention, b.logger)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		b.history.Store(h)
		defer func() {
			b.history.Store(nil)
			if err := h.Close(); err != nil {
				b.logger.Error("failed to close history", "error", err)
			}
		}()
		// assigned only when non-nil so the server sees a nil interface otherwise
		srvCfg.History = h
	}

	httpServer := server.NewServer(b.store, srvCfg, b.logger)
	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := b.ScheduleRecurring(ctx, b.pollingInterval); err != nil {
		return err
	}

	b.logger.Info("serverboard stopped")
	return nil
}

// ScheduleRecurring runs [Board.Refresh] immediately and then on every tick
// of interval until ctx is cancelled.
//
// Each tick launches its cycle in its own goroutine. When a cycle outlives
// the interval the next one overlaps it and whichever completes last is
// published. [WithOverlapGuard] skips ticks while a cycle is still running
// instead. There is no backoff and no retry: the next tick is the recovery.
//
// ScheduleRecurring blocks until ctx is done and every in-flight cycle has
// returned.
func (b *Board) ScheduleRecurring(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("polling interval must be positive")
	}

	scheduler := poller.NewScheduler(poller.Config{
		Interval:     interval,
		OverlapGuard: b.overlapGuard,
		NewTicker:    b.newTicker,
		Logger:       b.logger,
	}, func(ctx context.Context) {
		_, _ = b.Refresh(ctx)
	})

	scheduler.Start(ctx)
	<-ctx.Done()
	scheduler.Stop()
	return nil
}

// Refresh runs one cycle: fetch the manifest, fetch live status for every
// enabled server, build the summaries and publish them as one snapshot.
//
// Any manifest or status failure aborts the cycle. Nothing is published and
// the previous snapshot stays in place. The returned error wraps
// [ErrManifest] or [ErrStatus] and is also carried in the result.
//
// Every cycle, successful or not, is passed to the cycle callbacks and
// recorded in the history when enabled.
func (b *Board) Refresh(ctx context.Context) (CycleResult, error) {
	result := CycleResult{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	summaries, err := b.collect(ctx)
	result.Duration = time.Since(result.StartedAt)

	if err != nil {
		result.Err = err
	} else {
		result.Summaries = summaries
		b.publish(result)
	}

	b.record(ctx, result)

	for _, cb := range b.cycleCallbacks {
		invokeCallbackSafe(cb, result, b.logger)
	}

	// log cycle results (DEBUG level for success to reduce noise)
	logAttrs := []any{
		"cycle_id", result.ID,
		"duration_ms", result.Duration.Milliseconds(),
	}
	switch {
	case err == nil:
		b.logger.Debug("refresh cycle completed", append(logAttrs, "server_count", len(summaries))...)
	case ctx.Err() != nil:
		b.logger.Debug("refresh cycle cancelled", append(logAttrs, "error", err.Error())...)
	default:
		b.logger.Warn("refresh cycle failed", append(logAttrs, "error", err.Error())...)
	}

	return result, result.Err
}

// collect fetches the manifest and the live status of every enabled server
// and returns their summaries in manifest order.
func (b *Board) collect(ctx context.Context) ([]Summary, error) {
	descriptors, err := b.manifest.Descriptors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}

	enabled := make([]ServerDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Enabled {
			enabled = append(enabled, d)
		}
	}

	statuses, err := poller.Map(ctx, enabled, b.maxConcurrency, b.fetchStatus)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, len(enabled))
	for i, d := range enabled {
		summaries[i] = BuildSummary(d, statuses[i])
	}
	return summaries, nil
}

// fetchStatus looks up one server and wraps any failure in [ErrStatus].
func (b *Board) fetchStatus(ctx context.Context, d ServerDescriptor) (LiveStatus, error) {
	status, err := b.safeStatus(ctx, d)
	if err != nil {
		return LiveStatus{}, fmt.Errorf("%w: server %q: %w", ErrStatus, d.ID, err)
	}
	return status, nil
}

// safeStatus calls the provider with panic recovery. A panic becomes an
// error carrying a correlation ID that matches the logged stack.
func (b *Board) safeStatus(ctx context.Context, d ServerDescriptor) (status LiveStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			b.logger.Error("status provider panic",
				"correlation_id", correlationID,
				"provider", b.provider.Name(),
				"server", d.ID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("provider panic (correlation_id=%s): %v", correlationID, r)
		}
	}()
	return b.provider.Status(ctx, d)
}

// publish replaces the published snapshot with the cycle's summaries.
func (b *Board) publish(result CycleResult) {
	servers := make([]store.ServerSummary, len(result.Summaries))
	for i, s := range result.Summaries {
		servers[i] = store.ServerSummary(s)
	}
	b.store.Publish(store.Snapshot{
		CycleID:     result.ID,
		PublishedAt: time.Now(),
		Servers:     servers,
	})
}

// record writes the cycle to the history database when one is open.
func (b *Board) record(ctx context.Context, result CycleResult) {
	h := b.history.Load()
	if h == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	cycle := history.Cycle{
		ID:          result.ID,
		StartedAt:   result.StartedAt,
		DurationMs:  result.Duration.Milliseconds(),
		OK:          result.OK(),
		ServerCount: len(result.Summaries),
	}
	if result.Err != nil {
		cycle.Error = result.Err.Error()
	}

	samples := make([]history.Sample, len(result.Summaries))
	for i, s := range result.Summaries {
		samples[i] = history.Sample{
			CycleID:    result.ID,
			ServerID:   s.ID,
			At:         result.StartedAt,
			Online:     s.Online,
			PlayersNow: s.PlayersNow,
			PlayersMax: s.PlayersMax,
		}
	}

	if err := h.Record(ctx, cycle, samples); err != nil {
		b.logger.Error("failed to record cycle history", "cycle_id", result.ID, "error", err)
	}
}

// Published returns the current published snapshot.
//
// Before the first successful cycle the snapshot is empty with a zero
// PublishedAt. The returned value is a copy.
func (b *Board) Published() Snapshot {
	cur := b.store.Current()
	summaries := make([]Summary, len(cur.Servers))
	for i, s := range cur.Servers {
		summaries[i] = Summary(s)
	}
	return Snapshot{
		CycleID:     cur.CycleID,
		PublishedAt: cur.PublishedAt,
		Summaries:   summaries,
	}
}

// Port returns the configured HTTP port for the dashboard server.
func (b *Board) Port() int {
	return b.port
}

// PollingInterval returns the configured interval between refresh cycles.
func (b *Board) PollingInterval() time.Duration {
	return b.pollingInterval
}

// Provider returns the configured status provider.
func (b *Board) Provider() StatusProvider {
	return b.provider
}

// invokeCallbackSafe calls a cycle callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(CycleResult), result CycleResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("cycle callback panicked",
				"panic", r,
				"cycle_id", result.ID,
			)
		}
	}()
	cb(result)
}
