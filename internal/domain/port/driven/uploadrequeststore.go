package driven

import (
	"context"

	"github.com/dmaselko/vidgate/internal/domain/model"
)

// UploadRequestStore is the driven port for the upload-request audit trail.
// Records are inserted when a request is accepted and updated once with the
// outcome; they are never deleted.
type UploadRequestStore interface {
	// Insert persists a new PENDING record and returns its identifier.
	Insert(ctx context.Context, req model.UploadRequest) (int64, error)

	// SetStatus records the outcome of the attempt. videoURL is set on
	// success, errorMessage on failure; either may be empty.
	SetStatus(ctx context.Context, id int64, status model.UploadStatus, videoURL, errorMessage string) error

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.UploadRequest, error)
}
