package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/classkeeper/internal/client/models"
	"github.com/dmitrijs2005/classkeeper/internal/common"
	"github.com/dmitrijs2005/classkeeper/internal/dbx"
	"github.com/google/uuid"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, e *models.QueuedEvidence) (string, error) {

	e.ID = uuid.NewString()
	e.CapturedAt = time.Now().UTC()
	e.StudentIDs = models.NormalizeStudentIDs(e.StudentIDs)
	e.SyncState = models.SyncStatePending

	studentIDs, err := json.Marshal(e.StudentIDs)
	if err != nil {
		return "", fmt.Errorf("%w: encoding student ids: %v", common.ErrStorageFailure, err)
	}

	query := `INSERT INTO queued_evidence (id, media, content_type, activity_name, student_ids, comment, captured_at, sync_state)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.Media, e.ContentType, e.ActivityName, string(studentIDs), e.Comment,
		e.CapturedAt.Format(time.RFC3339Nano), string(e.SyncState))
	if err != nil {
		return "", fmt.Errorf("%w: failed to insert entry: %v", common.ErrStorageFailure, err)
	}

	return e.ID, nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.QueuedEvidence, error) {

	query := `SELECT seq, id, media, content_type, activity_name, student_ids, comment, captured_at, sync_state
			FROM queued_evidence ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: error selecting entries: %v", common.ErrStorageFailure, err)
	}
	defer rows.Close()

	var result []*models.QueuedEvidence

	for rows.Next() {
		item := &models.QueuedEvidence{}
		var studentIDs, capturedAt, syncState string

		err := rows.Scan(&item.Seq, &item.ID, &item.Media, &item.ContentType,
			&item.ActivityName, &studentIDs, &item.Comment, &capturedAt, &syncState)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning entry: %v", common.ErrStorageFailure, err)
		}

		if err := json.Unmarshal([]byte(studentIDs), &item.StudentIDs); err != nil {
			return nil, fmt.Errorf("%w: decoding student ids: %v", common.ErrStorageFailure, err)
		}
		item.CapturedAt, err = time.Parse(time.RFC3339Nano, capturedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing captured_at: %v", common.ErrStorageFailure, err)
		}
		item.SyncState = models.SyncState(syncState)

		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading entries: %v", common.ErrStorageFailure, err)
	}

	return result, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {

	// idempotent: zero affected rows is a successful no-op
	query := `DELETE FROM queued_evidence WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete entry: %v", common.ErrStorageFailure, err)
	}

	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queued_evidence`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count entries: %v", common.ErrStorageFailure, err)
	}

	return n, nil
}
