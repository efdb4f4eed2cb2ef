package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/observability"
)

// LineSource yields lines from the skimmer's standard output. ReadLine blocks
// until a line is available and returns io.EOF once the stream has ended.
type LineSource interface {
	ReadLine(ctx context.Context) (string, error)
}

// Transformer converts a raw line into pipeline events.
type Transformer interface {
	Transform(line string) []domain.Event
}

// Reader is the producer side of the pipeline: it reads lines continuously
// and pushes the resulting events onto the queue without ever waiting for
// the dispatcher.
type Reader struct {
	source      LineSource
	transformer Transformer
	queue       *Queue
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewReader creates a Reader.
func NewReader(src LineSource, t Transformer, q *Queue, logger *slog.Logger, metrics *observability.Metrics) *Reader {
	return &Reader{
		source:      src,
		transformer: t,
		queue:       q,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run reads until the context is cancelled or the stream ends. End of stream
// returns nil; the feed is not reopened.
func (r *Reader) Run(ctx context.Context) error {
	r.logger.Info("feed reader started")
	r.metrics.ReaderRunning.Set(1)
	defer r.metrics.ReaderRunning.Set(0)

	for {
		line, err := r.source.ReadLine(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				r.logger.Info("feed reader stopping", "reason", ctx.Err())
				return nil
			case errors.Is(err, io.EOF):
				r.logger.Info("skimmer output ended")
				return nil
			default:
				return fmt.Errorf("read skimmer line: %w", err)
			}
		}

		events := r.transformer.Transform(line)
		for _, e := range events {
			r.queue.Push(e)
		}
		if len(events) > 0 {
			r.metrics.QueueDepth.Set(float64(r.queue.Len()))
		}
	}
}
