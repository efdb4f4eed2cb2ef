package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Pipeline runs the feed reader and the dispatcher side by side.
type Pipeline struct {
	reader     *Reader
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// New creates a Pipeline from its two halves.
func New(r *Reader, d *Dispatcher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		reader:     r,
		dispatcher: d,
		logger:     logger,
	}
}

// CheckReadiness returns nil once the dispatcher has applied at least one
// event, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.dispatcher.Ready() {
		return errors.New("no skimmer output has been processed yet")
	}
	return nil
}

// Run blocks until the context is cancelled. When the skimmer stream ends
// the dispatcher keeps serving the spots already collected until then.
func (p *Pipeline) Run(ctx context.Context) error {
	var (
		wg        sync.WaitGroup
		readErr   error
		dispatErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if readErr = p.reader.Run(ctx); readErr != nil {
			p.logger.Error("feed reader stopped", "error", readErr)
		}
	}()
	go func() {
		defer wg.Done()
		dispatErr = p.dispatcher.Run(ctx)
	}()
	wg.Wait()

	return errors.Join(readErr, dispatErr)
}
