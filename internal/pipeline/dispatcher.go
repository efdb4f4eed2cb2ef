package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/observability"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/store"
)

const (
	// MaxFeedbackLen bounds the status line shown to the operator, in characters.
	MaxFeedbackLen = 100

	initialFeedback = "Starting..."
	appliedFeedback = "Finished lookup"
)

// Renderer receives a snapshot after every change. Render is called from
// the dispatcher goroutine and must not block for long.
type Renderer interface {
	Render(snap domain.Snapshot)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(domain.Snapshot)

func (f RendererFunc) Render(snap domain.Snapshot) { f(snap) }

// Renderers fans a snapshot out to several renderers in order.
type Renderers []Renderer

func (rs Renderers) Render(snap domain.Snapshot) {
	for _, r := range rs {
		r.Render(snap)
	}
}

// SpotLoader exports the spots applied in one dispatcher tick.
type SpotLoader interface {
	LoadBatch(ctx context.Context, spots []domain.Spot) error
}

// DispatcherConfig tunes the dispatcher's schedule.
type DispatcherConfig struct {
	// Interval between queue drains.
	Interval time.Duration
	// MaxBatch caps events applied per tick. 1 applies a single event per
	// tick, which falls behind whenever lines arrive faster than the tick rate.
	MaxBatch int
	// RefreshInterval re-evicts and re-renders so ages advance while the feed
	// is quiet. Zero disables it.
	RefreshInterval time.Duration
	Clock           clockwork.Clock
}

// Dispatcher is the consumer side of the pipeline. It owns the store: all
// mutations happen on the goroutine running Run.
type Dispatcher struct {
	queue    *Queue
	store    *store.Store
	renderer Renderer
	loader   SpotLoader
	cfg      DispatcherConfig
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool

	feedback  string
	updatedAt time.Time
}

// NewDispatcher creates a Dispatcher. loader may be nil.
func NewDispatcher(q *Queue, s *store.Store, r Renderer, loader SpotLoader, cfg DispatcherConfig, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 100 * time.Millisecond
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Dispatcher{
		queue:    q,
		store:    s,
		renderer: r,
		loader:   loader,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		feedback: initialFeedback,
	}
}

// Ready reports whether at least one event has been applied.
func (d *Dispatcher) Ready() bool {
	return d.ready.Load()
}

// Run drains the queue on every tick until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher started",
		"interval", d.cfg.Interval,
		"max_batch", d.cfg.MaxBatch,
		"refresh_interval", d.cfg.RefreshInterval,
	)

	ticker := d.cfg.Clock.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	var refresh <-chan time.Time
	if d.cfg.RefreshInterval > 0 {
		rt := d.cfg.Clock.NewTicker(d.cfg.RefreshInterval)
		defer rt.Stop()
		refresh = rt.Chan()
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopping", "reason", ctx.Err(), "backlog", d.queue.Len())
			return nil
		case <-ticker.Chan():
			d.Tick(ctx)
		case <-refresh:
			d.Refresh()
		}
	}
}

// Tick applies up to MaxBatch queued events in order and renders once if
// any were applied. It returns the number of events applied.
func (d *Dispatcher) Tick(ctx context.Context) int {
	var applied []domain.Spot
	n := 0

	for n < d.cfg.MaxBatch {
		ev, ok := d.queue.TryPop()
		if !ok {
			break
		}
		n++

		switch {
		case ev.Kind == domain.EventSpot:
			evicted := d.store.Upsert(ev.Spot)
			d.metrics.SpotsApplied.WithLabelValues(ev.Spot.Source.String()).Inc()
			d.metrics.SpotsEvicted.Add(float64(evicted))
			d.logger.Debug("spot applied", "source", ev.Spot.Source.String(), "call", ev.Spot.Call, "evicted", evicted)
			applied = append(applied, ev.Spot)
			d.feedback = appliedFeedback
			d.updatedAt = d.cfg.Clock.Now()
		case ev.IsReset():
			evicted := d.store.Reset(domain.SourceSked)
			d.metrics.SkedResets.Inc()
			d.metrics.SpotsEvicted.Add(float64(evicted))
			d.logger.Debug("sked page reset", "evicted", evicted)
			d.updatedAt = d.cfg.Clock.Now()
		default:
			d.feedback = truncateFeedback(ev.Text)
		}
	}

	if n == 0 {
		return 0
	}

	d.ready.Store(true)
	d.metrics.DispatchBatch.Observe(float64(n))
	d.metrics.QueueDepth.Set(float64(d.queue.Len()))

	d.render()
	if d.loader != nil && len(applied) > 0 {
		if err := d.loader.LoadBatch(ctx, applied); err != nil {
			d.logger.Warn("spot export failed", "error", err, "batch_size", len(applied))
		}
	}
	return n
}

// Refresh drops expired spots and re-renders with current ages.
func (d *Dispatcher) Refresh() {
	if evicted := d.store.EvictExpired(); evicted > 0 {
		d.metrics.SpotsEvicted.Add(float64(evicted))
		d.updatedAt = d.cfg.Clock.Now()
	}
	d.render()
}

// Snapshot builds the current presentation state.
func (d *Dispatcher) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		RBN:       d.store.Snapshot(domain.SourceRBN),
		Sked:      d.store.Snapshot(domain.SourceSked),
		Feedback:  d.feedback,
		UpdatedAt: d.updatedAt,
	}
}

func (d *Dispatcher) render() {
	snap := d.Snapshot()
	d.metrics.StoreSize.WithLabelValues(domain.SourceRBN.String()).Set(float64(len(snap.RBN)))
	d.metrics.StoreSize.WithLabelValues(domain.SourceSked.String()).Set(float64(len(snap.Sked)))
	d.metrics.Renders.Inc()
	if d.renderer != nil {
		d.renderer.Render(snap)
	}
}

func truncateFeedback(text string) string {
	if utf8.RuneCountInString(text) <= MaxFeedbackLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxFeedbackLen])
}
