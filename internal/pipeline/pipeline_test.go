package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/pipeline"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/store"
)

// --- mocks ---

// mockSource replays lines, then returns err. A nil err blocks until the
// context is cancelled, like a skimmer that is still running.
type mockSource struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (m *mockSource) ReadLine(ctx context.Context) (string, error) {
	m.mu.Lock()
	if len(m.lines) > 0 {
		line := m.lines[0]
		m.lines = m.lines[1:]
		m.mu.Unlock()
		return line, nil
	}
	m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func newReader(src pipeline.LineSource, q *pipeline.Queue) *pipeline.Reader {
	metrics := newTestMetrics()
	return pipeline.NewReader(src, pipeline.NewTransformer(slog.Default(), metrics), q, slog.Default(), metrics)
}

// --- reader ---

func TestReader_PushesEventsUntilEOF(t *testing.T) {
	q := pipeline.NewQueue()
	src := &mockSource{lines: []string{"....", lineRBN, lineRBNEcho, "", lineSked}, err: io.EOF}

	require.NoError(t, newReader(src, q).Run(context.Background()))

	require.Equal(t, 3, q.Len())
	e, _ := q.TryPop()
	assert.Equal(t, domain.EventFeedback, e.Kind)
	e, _ = q.TryPop()
	assert.Equal(t, domain.SourceRBN, e.Spot.Source)
	e, _ = q.TryPop()
	assert.Equal(t, domain.SourceSked, e.Spot.Source)
}

func TestReader_StopsOnCancel(t *testing.T) {
	q := pipeline.NewQueue()
	src := &mockSource{lines: []string{lineRBN}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- newReader(src, q).Run(ctx) }()

	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reader did not stop")
	}
}

func TestReader_WrapsSourceError(t *testing.T) {
	boom := errors.New("pipe broken")
	src := &mockSource{err: boom}

	err := newReader(src, pipeline.NewQueue()).Run(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "read skimmer line")
}

func TestReader_RunningGauge(t *testing.T) {
	metrics := newTestMetrics()
	src := &mockSource{err: io.EOF}
	r := pipeline.NewReader(src, pipeline.NewTransformer(slog.Default(), metrics), pipeline.NewQueue(), slog.Default(), metrics)

	require.NoError(t, r.Run(context.Background()))
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.ReaderRunning), 0)
}

// --- pipeline ---

func TestPipeline_RunAndReadiness(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 16, 20, 0, 0, time.UTC))
	metrics := newTestMetrics()
	q := pipeline.NewQueue()
	renderer := &recordingRenderer{}

	src := &mockSource{lines: []string{lineRBN, lineSked}, err: io.EOF}
	reader := pipeline.NewReader(src, pipeline.NewTransformer(slog.Default(), metrics), q, slog.Default(), metrics)
	disp := pipeline.NewDispatcher(q, store.New(store.WithClock(clock)), renderer, nil, pipeline.DispatcherConfig{
		Interval: 100 * time.Millisecond,
		MaxBatch: 50,
		Clock:    clock,
	}, slog.Default(), metrics)
	p := pipeline.New(reader, disp, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Error(t, p.CheckReadiness(ctx))

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// Reader hits EOF on its own; the dispatcher keeps running.
	require.Eventually(t, func() bool { return q.Len() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(100 * time.Millisecond)

	require.Eventually(t, func() bool { return renderer.count() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.CheckReadiness(ctx))

	snap := renderer.last()
	assert.Len(t, snap.RBN, 1)
	assert.Len(t, snap.Sked, 1)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop")
	}
}
