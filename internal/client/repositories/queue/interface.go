// Package queue implements the local durable queue of unsynced captures.
// Entries survive process restarts and never depend on network state.
package queue

import (
	"context"

	"github.com/dmitrijs2005/classkeeper/internal/client/models"
)

// Repository describes the operations the capture recorder and the sync
// drainer need from the local durable queue. All operations are local-disk
// effects; none touch the network. Insert and delete are single-statement,
// so interleaving an enqueue with an in-progress drain never corrupts the
// snapshot being processed.
type Repository interface {
	// Enqueue persists a capture and returns the assigned id. The queue
	// assigns the id and the capture timestamp. Failures are local storage
	// failures only (common.ErrStorageFailure).
	Enqueue(ctx context.Context, e *models.QueuedEvidence) (string, error)

	// ListPending returns all stored entries in insertion order. The drainer
	// treats the result as its snapshot for one pass.
	ListPending(ctx context.Context) ([]*models.QueuedEvidence, error)

	// Remove deletes an entry by id. Removing an already-removed id is a
	// no-op, not an error.
	Remove(ctx context.Context, id string) error

	// Count returns the number of stored entries. Used for status display
	// only, never for correctness decisions.
	Count(ctx context.Context) (int, error)
}
