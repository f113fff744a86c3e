package indexer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/pkg/logger"
	"github.com/mintforge/edition-engine/pkg/logger/slogx"
)

const (
	// pollingInterval is the default polling interval for the indexer polling worker
	pollingInterval = 15 * time.Second
)

// IndexerWorker is the long-running unit started by the run command for each enabled module.
type IndexerWorker interface {
	Run(ctx context.Context) error
	Shutdown() error
	ShutdownWithContext(ctx context.Context) error
}

// Datasource produces the next batch of pending work items. An empty batch means
// there is nothing to do until the next polling interval.
type Datasource[T any] interface {
	Name() string
	Fetch(ctx context.Context) ([]T, error)
}

// Processor consumes batches produced by a Datasource.
type Processor[T any] interface {
	Name() string

	// Process processes the fetched batch.
	Process(ctx context.Context, inputs []T) error

	// Shutdown cleans up processor resources before the indexer stops.
	Shutdown(ctx context.Context) error
}

// Indexer generic polling worker for fetching and processing data
type Indexer[T any] struct {
	Processor  Processor[T]
	Datasource Datasource[T]

	// Interval overrides the default polling interval when set to a positive duration.
	Interval time.Duration

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

// New create new generic indexer
func New[T any](processor Processor[T], datasource Datasource[T]) *Indexer[T] {
	return &Indexer[T]{
		Processor:  processor,
		Datasource: datasource,

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (i *Indexer[T]) Shutdown() error {
	return i.ShutdownWithContext(context.Background())
}

func (i *Indexer[T]) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return i.ShutdownWithContext(ctx)
}

func (i *Indexer[T]) ShutdownWithContext(ctx context.Context) (err error) {
	i.quitOnce.Do(func() {
		close(i.quit)
		select {
		case <-i.done:
		case <-time.After(180 * time.Second):
			err = errors.Wrap(errs.Timeout, "indexer shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "indexer shutdown context canceled")
		}
	})
	return
}

func (i *Indexer[T]) Run(ctx context.Context) (err error) {
	defer close(i.done)

	ctx = logger.WithContext(ctx,
		slog.String("package", "indexer"),
		slog.String("processor", i.Processor.Name()),
		slog.String("datasource", i.Datasource.Name()),
	)

	interval := i.Interval
	if interval <= 0 {
		interval = pollingInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-i.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping indexer")
			if err := i.Processor.Shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown processor", slogx.Error(err))
				return errors.Wrap(err, "processor shutdown failed")
			}
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := i.process(ctx); err != nil {
				logger.ErrorContext(ctx, "Indexer failed while processing", slogx.Error(err))
				return errors.Wrap(err, "process failed")
			}
			logger.DebugContext(ctx, "Waiting for next polling interval")
		}
	}
}

func (i *Indexer[T]) process(ctx context.Context) error {
	inputs, err := i.Datasource.Fetch(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to fetch input data")
	}
	if len(inputs) == 0 {
		return nil
	}

	startAt := time.Now()
	ctx = logger.WithContext(ctx, slogx.Int("inputs", len(inputs)))
	if err := i.Processor.Process(ctx, inputs); err != nil {
		return errors.Wrap(err, "failed to process input data")
	}
	logger.DebugContext(ctx, "Processed batch", slog.Duration("duration", time.Since(startAt)))
	return nil
}
