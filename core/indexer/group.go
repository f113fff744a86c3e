package indexer

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Make sure Group implements the IndexerWorker interface
var _ IndexerWorker = (*Group)(nil)

// Group runs multiple workers as a single IndexerWorker. The first worker
// to stop with an error stops the whole group.
type Group struct {
	workers []IndexerWorker
}

func NewGroup(workers ...IndexerWorker) *Group {
	return &Group{workers: workers}
}

func (g *Group) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, worker := range g.workers {
		worker := worker
		eg.Go(func() error {
			return errors.WithStack(worker.Run(ctx))
		})
	}
	return errors.WithStack(eg.Wait())
}

func (g *Group) Shutdown() error {
	return g.ShutdownWithContext(context.Background())
}

func (g *Group) ShutdownWithContext(ctx context.Context) error {
	var errList []error
	for _, worker := range g.workers {
		if err := worker.ShutdownWithContext(ctx); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.WithStack(errors.Join(errList...))
}
