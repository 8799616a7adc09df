package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/classkeeper/internal/client/models"
	"github.com/dmitrijs2005/classkeeper/internal/common"
	"github.com/google/uuid"
)

// MemoryEvidenceRepository is an in-memory EvidenceRepository used in tests.
// It applies the same validation as the Postgres implementation, so a
// malformed record fails identically. CreateErr lets tests script transient
// failures per call.
type MemoryEvidenceRepository struct {
	mu      sync.Mutex
	records map[string]*models.RemoteEvidence

	CreateErr func(e *models.RemoteEvidence) error
}

func NewMemoryEvidenceRepository() *MemoryEvidenceRepository {
	return &MemoryEvidenceRepository{records: make(map[string]*models.RemoteEvidence)}
}

func (r *MemoryEvidenceRepository) Create(ctx context.Context, e *models.RemoteEvidence) (string, error) {
	if err := validateEvidence(e); err != nil {
		return "", err
	}
	if r.CreateErr != nil {
		if err := r.CreateErr(e); err != nil {
			return "", err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.UploadedAt = time.Now().UTC()

	cp := *e
	cp.StudentIDs = models.NormalizeStudentIDs(e.StudentIDs)
	r.records[e.ID] = &cp

	return e.ID, nil
}

func (r *MemoryEvidenceRepository) GetByID(ctx context.Context, id string) (*models.RemoteEvidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *MemoryEvidenceRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.RemoteEvidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = defaultListLimit
	}

	var result []*models.RemoteEvidence
	for _, e := range r.records {
		if e.OwnerID != ownerID {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (r *MemoryEvidenceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}

// Len reports the number of stored records.
func (r *MemoryEvidenceRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// MemoryStudentRepository is an in-memory StudentRepository used in tests.
type MemoryStudentRepository struct {
	mu       sync.Mutex
	students map[string]*models.Student
}

func NewMemoryStudentRepository() *MemoryStudentRepository {
	return &MemoryStudentRepository{students: make(map[string]*models.Student)}
}

func (r *MemoryStudentRepository) Create(ctx context.Context, s *models.Student) (string, error) {
	if s.OwnerID == "" || s.Name == "" {
		return "", common.ErrValidation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.students {
		if existing.OwnerID == s.OwnerID && existing.Name == s.Name {
			return "", common.ErrValidation
		}
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()

	cp := *s
	r.students[s.ID] = &cp

	return s.ID, nil
}

func (r *MemoryStudentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Student
	for _, s := range r.students {
		if s.OwnerID != ownerID {
			continue
		}
		cp := *s
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result, nil
}

func (r *MemoryStudentRepository) Rename(ctx context.Context, ownerID, id, name string) error {
	if name == "" {
		return common.ErrValidation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.students[id]
	if !ok || s.OwnerID != ownerID {
		return common.ErrNotFound
	}
	s.Name = name
	return nil
}

func (r *MemoryStudentRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.students[id]
	if ok && s.OwnerID == ownerID {
		delete(r.students, id)
	}
	return nil
}
