package queue

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/classkeeper/internal/client/models"
	"github.com/dmitrijs2005/classkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE queued_evidence (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  media BLOB NOT NULL,
  content_type TEXT NOT NULL,
  activity_name TEXT NOT NULL,
  student_ids TEXT NOT NULL DEFAULT '[]',
  comment TEXT NOT NULL DEFAULT '',
  captured_at TEXT NOT NULL,
  sync_state TEXT NOT NULL DEFAULT 'pending'
);
`)
	require.NoError(t, err)

	return db
}

func TestEnqueue_AssignsIDAndCaptureTime(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	before := time.Now().UTC()
	id, err := r.Enqueue(ctx, &models.QueuedEvidence{
		Media:        []byte{0x01, 0x02},
		ContentType:  "image/jpeg",
		ActivityName: "long jump",
		StudentIDs:   []string{"s1"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	pending, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	e := pending[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, []byte{0x01, 0x02}, e.Media)
	assert.Equal(t, "long jump", e.ActivityName)
	assert.Equal(t, models.SyncStatePending, e.SyncState)
	assert.False(t, e.CapturedAt.Before(before.Truncate(time.Second)))
}

func TestEnqueue_DeduplicatesStudentIDs(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Enqueue(ctx, &models.QueuedEvidence{
		Media:        []byte{0x01},
		ContentType:  "image/jpeg",
		ActivityName: "relay",
		StudentIDs:   []string{"s2", "s1", "s2", "s1"},
	})
	require.NoError(t, err)

	pending, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, []string{"s2", "s1"}, pending[0].StudentIDs)
}

func TestListPending_InsertionOrder(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		id, err := r.Enqueue(ctx, &models.QueuedEvidence{
			Media:        []byte(name),
			ContentType:  "video/mp4",
			ActivityName: name,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	pending, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	for i, e := range pending {
		assert.Equal(t, ids[i], e.ID)
	}
	assert.Less(t, pending[0].Seq, pending[1].Seq)
	assert.Less(t, pending[1].Seq, pending[2].Seq)
}

func TestRemove_IsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Enqueue(ctx, &models.QueuedEvidence{
		Media:        []byte{0xff},
		ContentType:  "image/png",
		ActivityName: "sprint",
	})
	require.NoError(t, err)

	require.NoError(t, r.Remove(ctx, id))
	require.NoError(t, r.Remove(ctx, id), "removing an already-removed id must be a no-op")

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCount(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for i := 0; i < 3; i++ {
		_, err := r.Enqueue(ctx, &models.QueuedEvidence{
			Media:        []byte{byte(i)},
			ContentType:  "image/jpeg",
			ActivityName: "gym",
		})
		require.NoError(t, err)
	}

	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStorageFailureClassification(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := r.Enqueue(ctx, &models.QueuedEvidence{
		Media:        []byte{0x01},
		ContentType:  "image/jpeg",
		ActivityName: "gym",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStorageFailure))

	_, err = r.Count(ctx)
	assert.True(t, errors.Is(err, common.ErrStorageFailure))
}

func TestInitDatabase_AppliesMigrations(t *testing.T) {
	ctx := context.Background()

	db, err := InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	r := NewSQLiteRepository(db)
	_, err = r.Enqueue(ctx, &models.QueuedEvidence{
		Media:        []byte{0x01},
		ContentType:  "image/jpeg",
		ActivityName: "warmup",
	})
	require.NoError(t, err)
}
