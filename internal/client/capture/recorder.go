// Package capture implements the capture recorder: saving a piece of
// evidence either straight to the remote stores (online) or into the local
// durable queue (offline).
package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/classkeeper/internal/client/identity"
	"github.com/dmitrijs2005/classkeeper/internal/client/models"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/objectstore"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/records"
	"github.com/dmitrijs2005/classkeeper/internal/client/repositories/queue"
	"github.com/dmitrijs2005/classkeeper/internal/common"
	"github.com/dmitrijs2005/classkeeper/internal/imagex"
	"github.com/dmitrijs2005/classkeeper/internal/logging"
	"github.com/google/uuid"
)

// Connectivity is the snapshot view of the connectivity monitor the recorder
// needs to pick a path.
type Connectivity interface {
	IsOnline() bool
}

type Recorder struct {
	queue        queue.Repository
	objects      objectstore.Store
	records      records.EvidenceRepository
	connectivity Connectivity
	session      *identity.Session
	logger       logging.Logger

	// maxUploadBytes rejects oversized media (typically video) before any
	// I/O; zero disables the check.
	maxUploadBytes int64
	jpegQuality    int
}

func NewRecorder(
	q queue.Repository,
	objects objectstore.Store,
	evidence records.EvidenceRepository,
	conn Connectivity,
	session *identity.Session,
	logger logging.Logger,
	maxUploadBytes int64,
	jpegQuality int,
) *Recorder {
	return &Recorder{
		queue:          q,
		objects:        objects,
		records:        evidence,
		connectivity:   conn,
		session:        session,
		logger:         logger.With("module", "recorder"),
		maxUploadBytes: maxUploadBytes,
		jpegQuality:    jpegQuality,
	}
}

// Save validates and stores a capture. When the device is online the media
// is uploaded and its record created synchronously; any remote failure is
// surfaced as common.ErrSyncFailure and nothing is queued — the caller
// decides whether to retry. When offline, the capture goes into the local
// durable queue and success of the enqueue is success of the save.
func (r *Recorder) Save(ctx context.Context, media []byte, contentType, activityName string, studentIDs []string, comment string) error {

	user := r.session.Current()
	if user == nil {
		return common.ErrUnauthorized
	}

	if len(media) == 0 {
		return fmt.Errorf("%w: media is empty", common.ErrValidation)
	}
	if strings.TrimSpace(activityName) == "" {
		return fmt.Errorf("%w: activity name is empty", common.ErrValidation)
	}

	fileType, err := models.FileTypeFromContentType(contentType)
	if err != nil {
		return err
	}

	if r.maxUploadBytes > 0 && int64(len(media)) > r.maxUploadBytes {
		return fmt.Errorf("%w: media is %d bytes, limit is %d", common.ErrPayloadTooLarge, len(media), r.maxUploadBytes)
	}

	if fileType == models.FileTypeImage {
		reduced, reducedType, err := imagex.Reduce(media, contentType, r.jpegQuality)
		if err != nil {
			// non-fatal: keep the original bytes
			r.logger.Warn(ctx, "image reduction failed, using original", "error", err.Error())
		} else {
			media, contentType = reduced, reducedType
		}
	}

	studentIDs = models.NormalizeStudentIDs(studentIDs)

	if r.connectivity.IsOnline() {
		return r.saveDirect(ctx, user.ID, media, contentType, fileType, activityName, studentIDs, comment)
	}

	id, err := r.queue.Enqueue(ctx, &models.QueuedEvidence{
		Media:        media,
		ContentType:  contentType,
		ActivityName: activityName,
		StudentIDs:   studentIDs,
		Comment:      comment,
	})
	if err != nil {
		return err
	}

	r.logger.Info(ctx, "capture queued for sync", "id", id, "activity", activityName)
	return nil
}

func (r *Recorder) saveDirect(ctx context.Context, ownerID string, media []byte, contentType string, fileType models.FileType, activityName string, studentIDs []string, comment string) error {

	id := uuid.NewString()
	capturedAt := time.Now().UTC()
	key := models.StorageKey(ownerID, capturedAt, id)

	url, err := r.objects.Put(ctx, key, media, contentType)
	if err != nil {
		return fmt.Errorf("%w: uploading media: %v", common.ErrSyncFailure, err)
	}

	_, err = r.records.Create(ctx, &models.RemoteEvidence{
		ID:           id,
		OwnerID:      ownerID,
		FileURL:      url,
		FileType:     fileType,
		ActivityName: activityName,
		StudentIDs:   studentIDs,
		Comment:      comment,
		CapturedAt:   capturedAt,
	})
	if err != nil {
		// best-effort cleanup of the orphaned object
		if delErr := r.objects.Delete(ctx, url); delErr != nil {
			r.logger.Warn(ctx, "orphaned object cleanup failed", "url", url, "error", delErr.Error())
		}
		return fmt.Errorf("%w: creating record: %v", common.ErrSyncFailure, err)
	}

	r.logger.Info(ctx, "capture uploaded", "id", id, "activity", activityName)
	return nil
}
