// Package syncer drains the local durable queue into the remote stores.
// A drain is triggered by every became-online event and may also be started
// manually; the single-flight guard keeps at most one drain running.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/classkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/classkeeper/internal/client/identity"
	"github.com/dmitrijs2005/classkeeper/internal/client/models"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/objectstore"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/records"
	"github.com/dmitrijs2005/classkeeper/internal/client/repositories/queue"
	"github.com/dmitrijs2005/classkeeper/internal/common"
	"github.com/dmitrijs2005/classkeeper/internal/logging"
)

// ErrAlreadyRunning is returned when a drain trigger fires while a drain is
// in progress. The trigger is ignored, not queued.
var ErrAlreadyRunning = errors.New("drain already in progress")

// Result is the aggregate outcome of one drain pass.
type Result struct {
	// Synced entries were uploaded, recorded remotely and removed from
	// the queue.
	Synced int
	// Dropped entries were permanently malformed and discarded.
	Dropped int
	// Remaining is the queue size after the pass (failed entries plus any
	// enqueued during the pass).
	Remaining int
}

type Drainer struct {
	queue   queue.Repository
	objects objectstore.Store
	records records.EvidenceRepository
	session *identity.Session
	logger  logging.Logger

	mu      sync.Mutex
	syncing atomic.Bool
}

func NewDrainer(
	q queue.Repository,
	objects objectstore.Store,
	evidence records.EvidenceRepository,
	session *identity.Session,
	logger logging.Logger,
) *Drainer {
	return &Drainer{
		queue:   q,
		objects: objects,
		records: evidence,
		session: session,
		logger:  logger.With("module", "drainer"),
	}
}

// Syncing reports whether a drain pass is currently in progress.
func (d *Drainer) Syncing() bool {
	return d.syncing.Load()
}

// DrainOnce performs one pass over a snapshot of the pending queue, strictly
// sequentially in insertion order. Each entry is attempted exactly once per
// pass: upload the media, create the remote record, remove the queue entry.
// A transient failure leaves the entry untouched and moves on; a permanently
// malformed entry is dropped with a warning. Entries enqueued during the
// pass are picked up by the next one.
func (d *Drainer) DrainOnce(ctx context.Context) (Result, error) {

	if !d.mu.TryLock() {
		return Result{}, ErrAlreadyRunning
	}
	defer d.mu.Unlock()

	d.syncing.Store(true)
	defer d.syncing.Store(false)

	user := d.session.Current()
	if user == nil {
		return Result{}, common.ErrUnauthorized
	}

	snapshot, err := d.queue.ListPending(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reading queue snapshot: %w", err)
	}

	var res Result
	for _, e := range snapshot {
		err := d.syncEntry(ctx, user.ID, e)
		if err == nil {
			res.Synced++
			continue
		}

		if errors.Is(err, common.ErrValidation) {
			// The remote store will never accept this entry; retrying
			// forever would wedge the queue behind it.
			d.logger.Warn(ctx, "dropping malformed queued entry", "id", e.ID, "error", err.Error())
			if rmErr := d.queue.Remove(ctx, e.ID); rmErr != nil {
				d.logger.Error(ctx, "failed to drop malformed entry", "id", e.ID, "error", rmErr.Error())
				continue
			}
			res.Dropped++
			continue
		}

		// transient: keep for the next drain, never abort the pass
		d.logger.Info(ctx, "entry sync failed, keeping for retry", "id", e.ID, "error", err.Error())
	}

	remaining, err := d.queue.Count(ctx)
	if err != nil {
		d.logger.Error(ctx, "failed to count remaining entries", "error", err.Error())
	}
	res.Remaining = remaining

	d.logger.Info(ctx, "drain finished",
		"synced", res.Synced, "dropped", res.Dropped, "remaining", res.Remaining)

	return res, nil
}

func (d *Drainer) syncEntry(ctx context.Context, ownerID string, e *models.QueuedEvidence) error {

	fileType, err := models.FileTypeFromContentType(e.ContentType)
	if err != nil {
		return err
	}

	// The key is derived from owner, capture time and entry id, so a
	// repeated drain of the same entry overwrites instead of duplicating.
	key := models.StorageKey(ownerID, e.CapturedAt, e.ID)

	url, err := d.objects.Put(ctx, key, e.Media, e.ContentType)
	if err != nil {
		return fmt.Errorf("uploading media: %w", err)
	}

	_, err = d.records.Create(ctx, &models.RemoteEvidence{
		ID:           e.ID,
		OwnerID:      ownerID,
		FileURL:      url,
		FileType:     fileType,
		ActivityName: e.ActivityName,
		StudentIDs:   e.StudentIDs,
		Comment:      e.Comment,
		CapturedAt:   e.CapturedAt,
	})
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			// the upload is already durable; clean it up best-effort
			// before the entry is dropped
			if delErr := d.objects.Delete(ctx, url); delErr != nil {
				d.logger.Warn(ctx, "orphaned object cleanup failed", "url", url, "error", delErr.Error())
			}
		}
		return fmt.Errorf("creating record: %w", err)
	}

	// A failure here leaves the entry queued after its record exists; the
	// next pass re-uploads to the same key and recreates nothing new.
	// That is the accepted at-least-once caveat.
	if err := d.queue.Remove(ctx, e.ID); err != nil {
		return fmt.Errorf("removing queue entry: %w", err)
	}

	return nil
}

// Run consumes connectivity events until ctx is cancelled, starting a drain
// on every became-online event. Triggers arriving while a drain is running
// are dropped by the single-flight guard.
func (d *Drainer) Run(ctx context.Context, events <-chan connectivity.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev != connectivity.EventOnline {
				continue
			}
			if _, err := d.DrainOnce(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
				d.logger.Error(ctx, "drain failed", "error", err.Error())
			}

		case <-ctx.Done():
			return
		}
	}
}
