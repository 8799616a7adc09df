package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/classkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/classkeeper/internal/client/identity"
	"github.com/dmitrijs2005/classkeeper/internal/client/models"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/objectstore"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/records"
	"github.com/dmitrijs2005/classkeeper/internal/client/repositories/queue"
	"github.com/dmitrijs2005/classkeeper/internal/common"
	"github.com/dmitrijs2005/classkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type fixture struct {
	drainer *Drainer
	queue   *queue.SQLiteRepository
	objects *objectstore.Memory
	records *records.MemoryEvidenceRepository
	session *identity.Session
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := queue.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		queue:   queue.NewSQLiteRepository(db),
		objects: objectstore.NewMemory(),
		records: records.NewMemoryEvidenceRepository(),
		session: identity.NewSession(),
	}
	f.session.SignIn(&models.User{ID: "u1"})

	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	f.drainer = NewDrainer(f.queue, f.objects, f.records, f.session, logger)

	return f
}

func (f *fixture) enqueue(t *testing.T, activity string, studentIDs []string) string {
	t.Helper()
	id, err := f.queue.Enqueue(context.Background(), &models.QueuedEvidence{
		Media:        []byte("media-" + activity),
		ContentType:  "image/jpeg",
		ActivityName: activity,
		StudentIDs:   studentIDs,
		Comment:      "c-" + activity,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) pendingIDs(t *testing.T) []string {
	t.Helper()
	pending, err := f.queue.ListPending(context.Background())
	require.NoError(t, err)
	ids := make([]string, 0, len(pending))
	for _, e := range pending {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestDrainAllSucceed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.enqueue(t, "long jump", []string{"s1"})
	f.enqueue(t, "relay", []string{"s2", "s3"})
	f.enqueue(t, "sprint", nil)

	res, err := f.drainer.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 3, Dropped: 0, Remaining: 0}, res)

	n, err := f.queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "queue must end empty")

	list, err := f.records.ListByOwner(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 3, "exactly one record per enqueued entry")

	byActivity := map[string]*models.RemoteEvidence{}
	for _, e := range list {
		byActivity[e.ActivityName] = e
	}
	relay := byActivity["relay"]
	require.NotNil(t, relay)
	assert.Equal(t, []string{"s2", "s3"}, relay.StudentIDs)
	assert.Equal(t, "c-relay", relay.Comment)
	assert.Equal(t, models.FileTypeImage, relay.FileType)
	assert.Equal(t, "u1", relay.OwnerID)
	assert.NotEmpty(t, relay.FileURL)
	assert.False(t, relay.CapturedAt.IsZero())
}

func TestDrainFailureAtEntryKeepsTailInOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	idA := f.enqueue(t, "a", nil)
	idB := f.enqueue(t, "b", nil)
	idC := f.enqueue(t, "c", nil)
	_ = idA

	// entry B's upload fails; A before it succeeds, C after it is still
	// attempted and succeeds
	f.objects.PutErr = func(key string) error {
		if keyIsFor(key, idB) {
			return errors.New("timeout")
		}
		return nil
	}

	res, err := f.drainer.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Synced)
	assert.Equal(t, 1, res.Remaining)

	assert.Equal(t, []string{idB}, f.pendingIDs(t), "failed entry stays, in original order")
	assert.Equal(t, 2, f.records.Len())
	_ = idC
}

func TestDrainUploadFailureStopsNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.enqueue(t, "a", nil)
	f.enqueue(t, "b", nil)

	f.objects.PutErr = func(key string) error { return errors.New("offline again") }

	res, err := f.drainer.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 0, Dropped: 0, Remaining: 2}, res)
	assert.Equal(t, 0, f.records.Len())
}

func TestDrainScenarioFailOnceThenSucceed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	idA := f.enqueue(t, "A", []string{"s1"})
	f.enqueue(t, "B", []string{"s2", "s3"})

	// A's upload fails on its first attempt, B succeeds immediately. One
	// drain attempts each entry exactly once: no internal retry of A.
	attempts := map[string]int{}
	var mu sync.Mutex
	f.objects.PutErr = func(key string) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[key]++
		if attempts[key] == 1 && keyIsFor(key, idA) {
			return errors.New("transient")
		}
		return nil
	}

	res, err := f.drainer.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, 1, res.Remaining)

	assert.Equal(t, []string{idA}, f.pendingIDs(t), "queue contains only A")

	list, err := f.records.ListByOwner(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1, "exactly one record, for B")
	assert.Equal(t, "B", list[0].ActivityName)

	// the next drain retries A and succeeds
	res, err = f.drainer.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 1, Dropped: 0, Remaining: 0}, res)
	assert.Equal(t, 2, f.records.Len())
}

func TestDrainSingleFlight(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.enqueue(t, "a", nil)

	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	f.objects.PutErr = func(key string) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}

	done := make(chan Result, 1)
	go func() {
		res, err := f.drainer.DrainOnce(ctx)
		require.NoError(t, err)
		done <- res
	}()

	<-started
	assert.True(t, f.drainer.Syncing())

	// a second trigger while the first drain is in flight is ignored
	_, err := f.drainer.DrainOnce(ctx)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(release)
	res := <-done
	assert.Equal(t, 1, res.Synced)
	assert.False(t, f.drainer.Syncing())
}

func TestDrainDropsMalformedEntry(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	bad := f.enqueue(t, "broken", nil)
	good := f.enqueue(t, "fine", nil)

	f.records.CreateErr = func(e *models.RemoteEvidence) error {
		if e.ID == bad {
			return common.ErrValidation
		}
		return nil
	}

	res, err := f.drainer.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 1, Dropped: 1, Remaining: 0}, res)

	assert.Empty(t, f.pendingIDs(t))
	assert.Equal(t, 1, f.records.Len())
	assert.Equal(t, 1, f.objects.Len(), "dropped entry's upload is cleaned up")
	_ = good
}

func TestDrainMalformedContentTypeDropped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.queue.Enqueue(ctx, &models.QueuedEvidence{
		Media:        []byte("x"),
		ContentType:  "application/octet-stream",
		ActivityName: "weird",
	})
	require.NoError(t, err)

	res, err := f.drainer.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 0, Dropped: 1, Remaining: 0}, res)
	assert.Equal(t, 0, f.objects.Len(), "nothing was uploaded for the bad entry")
}

func TestDrainRequiresSignedInUser(t *testing.T) {
	f := setup(t)
	f.session.SignOut()

	_, err := f.drainer.DrainOnce(context.Background())
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestRunDrainsOnBecameOnline(t *testing.T) {
	f := setup(t)
	f.enqueue(t, "a", nil)

	m := connectivity.NewMonitor(false)
	events, cancel := m.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go f.drainer.Run(ctx, events)

	m.Set(true)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n, err := f.queue.Count(context.Background()); err == nil && n == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("became-online event did not trigger a drain")
}

func TestRunIgnoresBecameOffline(t *testing.T) {
	f := setup(t)
	f.enqueue(t, "a", nil)

	m := connectivity.NewMonitor(true)
	events, cancel := m.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go f.drainer.Run(ctx, events)

	m.Set(false)
	time.Sleep(50 * time.Millisecond)

	n, err := f.queue.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "offline event must not trigger a drain")
}

// keyIsFor reports whether a storage key belongs to the given entry id.
func keyIsFor(key, entryID string) bool {
	return len(key) >= len(entryID) && key[len(key)-len(entryID):] == entryID
}
