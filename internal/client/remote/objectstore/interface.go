// Package objectstore abstracts the remote object storage holding evidence
// media. Keys map to stable resolvable URLs; metadata records reference media
// by URL only.
package objectstore

import "context"

// Store is the contract the sync subsystem needs from remote object storage.
type Store interface {
	// Put stores data under key and returns the stable URL of the object.
	// Re-putting the same key overwrites, which makes at-least-once
	// re-uploads idempotent.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Get fetches the object behind a URL previously returned by Put.
	Get(ctx context.Context, url string) ([]byte, error)

	// Delete removes the object behind url. Callers treat it as best-effort
	// cleanup and ignore failures.
	Delete(ctx context.Context, url string) error
}
