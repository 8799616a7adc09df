package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/classkeeper/internal/client/models"
	"github.com/dmitrijs2005/classkeeper/internal/common"
	"github.com/dmitrijs2005/classkeeper/internal/dbx"
	"github.com/google/uuid"
)

const defaultListLimit = 100

type PostgresEvidenceRepository struct {
	db dbx.DBTX
}

func NewPostgresEvidenceRepository(db dbx.DBTX) *PostgresEvidenceRepository {
	return &PostgresEvidenceRepository{db: db}
}

// validateEvidence rejects records the remote collection would never accept.
// These failures are permanent, so the drainer must not retry them.
func validateEvidence(e *models.RemoteEvidence) error {
	if e.OwnerID == "" {
		return fmt.Errorf("%w: missing owner id", common.ErrValidation)
	}
	if e.FileURL == "" {
		return fmt.Errorf("%w: missing file url", common.ErrValidation)
	}
	if e.ActivityName == "" {
		return fmt.Errorf("%w: missing activity name", common.ErrValidation)
	}
	if e.FileType != models.FileTypeImage && e.FileType != models.FileTypeVideo {
		return fmt.Errorf("%w: unknown file type %q", common.ErrValidation, e.FileType)
	}
	return nil
}

func (r *PostgresEvidenceRepository) Create(ctx context.Context, e *models.RemoteEvidence) (string, error) {

	if err := validateEvidence(e); err != nil {
		return "", err
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.UploadedAt = time.Now().UTC()

	studentIDs, err := json.Marshal(models.NormalizeStudentIDs(e.StudentIDs))
	if err != nil {
		return "", fmt.Errorf("encoding student ids: %w", err)
	}

	// upsert: a crash between record creation and queue removal makes the
	// next drain re-create the same id
	query := `INSERT INTO evidence (id, owner_id, file_url, file_type, activity_name, student_ids, comment, captured_at, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET uploaded_at = EXCLUDED.uploaded_at
		RETURNING id`

	err = r.db.QueryRowContext(ctx, query,
		e.ID, e.OwnerID, e.FileURL, string(e.FileType), e.ActivityName,
		string(studentIDs), e.Comment, e.CapturedAt, e.UploadedAt).Scan(&e.ID)
	if err != nil {
		return "", fmt.Errorf("error creating evidence record: %w", err)
	}

	return e.ID, nil
}

func (r *PostgresEvidenceRepository) GetByID(ctx context.Context, id string) (*models.RemoteEvidence, error) {

	query := `SELECT id, owner_id, file_url, file_type, activity_name, student_ids, comment, captured_at, uploaded_at
		FROM evidence WHERE id = $1`

	e, err := scanEvidence(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving evidence record: %w", err)
	}

	return e, nil
}

func (r *PostgresEvidenceRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.RemoteEvidence, error) {

	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, owner_id, file_url, file_type, activity_name, student_ids, comment, captured_at, uploaded_at
		FROM evidence WHERE owner_id = $1 ORDER BY uploaded_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("error selecting evidence records: %w", err)
	}
	defer rows.Close()

	var result []*models.RemoteEvidence
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresEvidenceRepository) Delete(ctx context.Context, id string) error {

	_, err := r.db.ExecContext(ctx, `DELETE FROM evidence WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting evidence record: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvidence(row rowScanner) (*models.RemoteEvidence, error) {
	e := &models.RemoteEvidence{}
	var fileType, studentIDs string

	err := row.Scan(&e.ID, &e.OwnerID, &e.FileURL, &fileType, &e.ActivityName,
		&studentIDs, &e.Comment, &e.CapturedAt, &e.UploadedAt)
	if err != nil {
		return nil, err
	}

	e.FileType = models.FileType(fileType)
	if err := json.Unmarshal([]byte(studentIDs), &e.StudentIDs); err != nil {
		return nil, fmt.Errorf("decoding student ids: %w", err)
	}

	return e, nil
}

type PostgresStudentRepository struct {
	db *sql.DB
}

func NewPostgresStudentRepository(db *sql.DB) *PostgresStudentRepository {
	return &PostgresStudentRepository{db: db}
}

// Create registers a student. The duplicate-name check and the insert run in
// one transaction so two concurrent registrations cannot both pass the check.
func (r *PostgresStudentRepository) Create(ctx context.Context, s *models.Student) (string, error) {

	if s.OwnerID == "" || s.Name == "" {
		return "", fmt.Errorf("%w: owner id and name are required", common.ErrValidation)
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM students WHERE owner_id = $1 AND name = $2)`,
			s.OwnerID, s.Name).Scan(&exists)
		if err != nil {
			return fmt.Errorf("error checking student name: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: student %q already registered", common.ErrValidation, s.Name)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO students (id, owner_id, name, "group", created_at) VALUES ($1, $2, $3, $4, $5)`,
			s.ID, s.OwnerID, s.Name, s.Group, s.CreatedAt)
		if err != nil {
			return fmt.Errorf("error creating student: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return s.ID, nil
}

func (r *PostgresStudentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Student, error) {

	query := `SELECT id, owner_id, name, "group", created_at FROM students WHERE owner_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error selecting students: %w", err)
	}
	defer rows.Close()

	var result []*models.Student
	for rows.Next() {
		s := &models.Student{}
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Group, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresStudentRepository) Rename(ctx context.Context, ownerID, id, name string) error {

	if name == "" {
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE students SET name = $1 WHERE owner_id = $2 AND id = $3`, name, ownerID, id)
	if err != nil {
		return fmt.Errorf("error renaming student: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresStudentRepository) Delete(ctx context.Context, ownerID, id string) error {

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM students WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}

	return nil
}
