// Package models defines client-side data models used by ClassKeeper.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/classkeeper/internal/common"
)

// FileType classifies the captured media.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// SyncState of a queued entry. Synced entries are deleted immediately after
// the remote record is created, so every persisted entry is pending.
type SyncState string

const (
	SyncStatePending SyncState = "pending"
	SyncStateSynced  SyncState = "synced"
)

// QueuedEvidence is a capture persisted in the local durable queue while the
// device is offline. The queue owns the media bytes until the entry has been
// uploaded and its remote record created.
type QueuedEvidence struct {
	// ID is assigned by the queue on insert.
	ID string

	// Seq is the queue's monotonic insertion counter; drains process
	// entries in Seq order.
	Seq int64

	// Media holds the raw captured bytes.
	Media []byte

	// ContentType is the declared media content type (e.g. "image/jpeg").
	ContentType string

	ActivityName string
	StudentIDs   []string
	Comment      string

	// CapturedAt is set at enqueue time and never changes.
	CapturedAt time.Time

	SyncState SyncState
}

// RemoteEvidence is the authoritative record created in the remote document
// store once the media is durably stored in the object store.
type RemoteEvidence struct {
	ID           string
	OwnerID      string
	FileURL      string
	FileType     FileType
	ActivityName string
	StudentIDs   []string
	Comment      string

	// CapturedAt preserves the original capture time across offline delay;
	// UploadedAt is when the record was created.
	CapturedAt time.Time
	UploadedAt time.Time
}

// FileTypeFromContentType derives the evidence file type from a declared
// media content type. Anything outside image/* and video/* is rejected.
func FileTypeFromContentType(contentType string) (FileType, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return FileTypeImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return FileTypeVideo, nil
	default:
		return "", fmt.Errorf("%w: unsupported content type %q", common.ErrValidation, contentType)
	}
}

// NormalizeStudentIDs applies set semantics: duplicates and blank ids are
// removed, first-occurrence order is preserved.
func NormalizeStudentIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// StorageKey derives the object-store key for an evidence entry. The key is
// a function of the owner, the capture time and the entry id, so repeated
// drains of the same entry land on the same key and an at-least-once
// re-upload overwrites rather than duplicates.
func StorageKey(ownerID string, capturedAt time.Time, entryID string) string {
	return fmt.Sprintf("users/%s/%d/%s", ownerID, capturedAt.UTC().Unix(), entryID)
}

// Ext returns a file extension for exported media of this type.
func (t FileType) Ext() string {
	if t == FileTypeVideo {
		return ".mp4"
	}
	return ".jpg"
}
