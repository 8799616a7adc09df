// Package records binds the hosted document database holding evidence
// records and the student registry. The sync subsystem only ever creates
// evidence records; browse, export and the registry use the rest.
package records

import (
	"context"

	"github.com/dmitrijs2005/classkeeper/internal/client/models"
)

// EvidenceRepository describes the operations needed from the remote
// evidence collection.
type EvidenceRepository interface {
	// Create persists a new evidence record and returns its id. A rejection
	// of a malformed record is reported as common.ErrValidation (non
	// retryable); any other failure is transient.
	Create(ctx context.Context, e *models.RemoteEvidence) (string, error)

	// GetByID returns a single record; common.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.RemoteEvidence, error)

	// ListByOwner returns the owner's records, newest upload first.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.RemoteEvidence, error)

	// Delete removes a record by id.
	Delete(ctx context.Context, id string) error
}

// StudentRepository describes the operations needed from the remote student
// registry. Students are scoped to the registering teacher.
type StudentRepository interface {
	Create(ctx context.Context, s *models.Student) (string, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Student, error)
	Rename(ctx context.Context, ownerID, id, name string) error
	Delete(ctx context.Context, ownerID, id string) error
}
