package driven

import (
	"context"
	"errors"

	"github.com/dmaselko/vidgate/internal/domain/model"
)

// ErrRemoteAPI is wrapped into every error the hosting provider returns for
// a rejected request (quota, invalid metadata, and the like). The gateway
// does not retry these; re-uploading the file is left to the caller.
var ErrRemoteAPI = errors.New("video hosting API error")

// VideoHost is the driven port for the remote video hosting platform.
// Implementations require a valid, non-expired credential; they never
// refresh one themselves.
type VideoHost interface {
	// InsertVideo uploads the video content and metadata and returns the
	// remote video identifier.
	InsertVideo(ctx context.Context, cred model.Credential, video model.VideoUpload) (string, error)

	// SetThumbnail attaches a thumbnail image to an already-uploaded video.
	SetThumbnail(ctx context.Context, cred model.Credential, videoID, thumbnailPath string) error
}
