package pipeline

import (
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/observability"
)

// LineTransformer implements Transformer using the domain classifier and
// extractor.
type LineTransformer struct {
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// TransformerOption configures a LineTransformer.
type TransformerOption func(*LineTransformer)

// WithTransformerClock sets the clock used to stamp ReceivedAt on spots.
func WithTransformerClock(c clockwork.Clock) TransformerOption {
	return func(t *LineTransformer) { t.clock = c }
}

// NewTransformer creates a LineTransformer.
func NewTransformer(logger *slog.Logger, metrics *observability.Metrics, opts ...TransformerOption) *LineTransformer {
	t := &LineTransformer{
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform converts one raw skimmer line into zero or more events. Lines
// that are not spots are never an error: they become feedback text, and
// RBN echoes of already reported spots are dropped.
func (t *LineTransformer) Transform(raw string) []domain.Event {
	line := domain.StripBell(strings.TrimSpace(raw))
	if line == "" {
		return nil
	}
	t.metrics.LinesRead.Inc()

	kind := domain.Classify(line)
	t.metrics.LinesByKind.WithLabelValues(kind.String()).Inc()

	switch kind {
	case domain.KindRBN, domain.KindSked:
		spot, err := domain.ExtractSpot(line, kind.Source(), t.clock.Now())
		if err != nil {
			t.logger.Warn("spot extraction failed, forwarding as feedback", "error", err, "kind", kind.String(), "line", line)
			t.metrics.ExtractErrors.Inc()
			return []domain.Event{domain.FeedbackEvent(line)}
		}
		t.logger.Debug("parsed spot",
			"source", spot.Source.String(),
			"call", spot.Call,
			"time", spot.Time.String(),
			"frequency", spot.Frequency,
		)
		return []domain.Event{domain.SpotEvent(spot)}
	case domain.KindRBNEcho:
		t.logger.Debug("skipping repeated rbn spot", "line", line)
		return nil
	case domain.KindUnrecognized:
		t.logger.Debug("not a spot line", "line", line)
	case domain.KindUnexpected:
		t.logger.Warn("unexpected line", "line", line)
	}
	return []domain.Event{domain.FeedbackEvent(line)}
}
