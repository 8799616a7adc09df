// Package services holds the thin application services on top of the remote
// stores: browsing and exporting evidence, and the student registry.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/classkeeper/internal/client/identity"
	"github.com/dmitrijs2005/classkeeper/internal/client/models"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/objectstore"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/records"
	"github.com/dmitrijs2005/classkeeper/internal/common"
	"github.com/dmitrijs2005/classkeeper/internal/logging"
)

type EvidenceService struct {
	records records.EvidenceRepository
	objects objectstore.Store
	session *identity.Session
	logger  logging.Logger
}

func NewEvidenceService(evidence records.EvidenceRepository, objects objectstore.Store, session *identity.Session, logger logging.Logger) *EvidenceService {
	return &EvidenceService{
		records: evidence,
		objects: objects,
		session: session,
		logger:  logger.With("module", "evidence_service"),
	}
}

// Browse returns the signed-in teacher's evidence records, newest first.
func (s *EvidenceService) Browse(ctx context.Context, limit int) ([]*models.RemoteEvidence, error) {
	user := s.session.Current()
	if user == nil {
		return nil, common.ErrUnauthorized
	}

	return s.records.ListByOwner(ctx, user.ID, limit)
}

// exportMeta is the sidecar written next to each exported media file.
type exportMeta struct {
	ID           string   `json:"id"`
	ActivityName string   `json:"activity_name"`
	StudentIDs   []string `json:"student_ids"`
	Comment      string   `json:"comment,omitempty"`
	CapturedAt   string   `json:"captured_at"`
	UploadedAt   string   `json:"uploaded_at"`
}

// Export downloads the teacher's evidence into dir, one media file plus one
// JSON metadata sidecar per record, and returns the number of records
// exported. A single failed download skips that record and continues.
func (s *EvidenceService) Export(ctx context.Context, dir string) (int, error) {
	user := s.session.Current()
	if user == nil {
		return 0, common.ErrUnauthorized
	}

	list, err := s.records.ListByOwner(ctx, user.ID, 0)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating export dir: %w", err)
	}

	exported := 0
	for _, e := range list {
		data, err := s.objects.Get(ctx, e.FileURL)
		if err != nil {
			s.logger.Warn(ctx, "skipping record, media download failed", "id", e.ID, "error", err.Error())
			continue
		}

		mediaPath := filepath.Join(dir, e.ID+e.FileType.Ext())
		if err := os.WriteFile(mediaPath, data, 0o644); err != nil {
			return exported, fmt.Errorf("writing %s: %w", mediaPath, err)
		}

		meta, err := json.MarshalIndent(exportMeta{
			ID:           e.ID,
			ActivityName: e.ActivityName,
			StudentIDs:   e.StudentIDs,
			Comment:      e.Comment,
			CapturedAt:   e.CapturedAt.Format("2006-01-02T15:04:05Z07:00"),
			UploadedAt:   e.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
		}, "", "  ")
		if err != nil {
			return exported, err
		}
		if err := os.WriteFile(filepath.Join(dir, e.ID+".json"), meta, 0o644); err != nil {
			return exported, fmt.Errorf("writing metadata for %s: %w", e.ID, err)
		}

		exported++
	}

	s.logger.Info(ctx, "export finished", "dir", dir, "exported", exported, "total", len(list))
	return exported, nil
}

// Delete removes an evidence record and, best-effort, its stored media.
func (s *EvidenceService) Delete(ctx context.Context, id string) error {
	user := s.session.Current()
	if user == nil {
		return common.ErrUnauthorized
	}

	e, err := s.records.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.OwnerID != user.ID {
		return common.ErrNotFound
	}

	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.objects.Delete(ctx, e.FileURL); err != nil {
		s.logger.Warn(ctx, "media cleanup failed", "url", e.FileURL, "error", err.Error())
	}

	return nil
}
