// Package snapshots stores the serialized snapshot document. The file backend
// is the default; postgres and S3 backends let several deployments share one
// durable location.
package snapshots

import "context"

// Repository reads and writes the latest snapshot as an opaque blob.
//
// Read returns an error wrapping common.ErrorNotFound when nothing has been
// written yet and common.ErrIOFailure for anything else that goes wrong.
type Repository interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
