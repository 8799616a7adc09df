package syncer

import (
	"context"

	"github.com/dmitrijs2005/classkeeper/internal/client/repositories/queue"
)

// Status is what the UI shows about the sync subsystem.
type Status struct {
	PendingCount int
	Syncing      bool
}

// StatusReporter is a pure read model over the queue and the drainer. It has
// no state of its own and recomputes on demand.
type StatusReporter struct {
	queue   queue.Repository
	drainer *Drainer
}

func NewStatusReporter(q queue.Repository, d *Drainer) *StatusReporter {
	return &StatusReporter{queue: q, drainer: d}
}

func (r *StatusReporter) Status(ctx context.Context) (Status, error) {
	n, err := r.queue.Count(ctx)
	if err != nil {
		return Status{}, err
	}

	return Status{PendingCount: n, Syncing: r.drainer.Syncing()}, nil
}
