package model

import "time"

// UploadStatus is the lifecycle state of an upload request record.
type UploadStatus string

const (
	UploadStatusPending UploadStatus = "PENDING"
	UploadStatusSuccess UploadStatus = "SUCCESS"
	UploadStatusFailed  UploadStatus = "FAILED"
)

// UploadRequest is the audit record persisted for every inbound upload,
// updated with the outcome once the remote call finishes.
type UploadRequest struct {
	ID                int64
	ChannelID         string
	Title             string
	Description       string
	VideoFilename     string
	ThumbnailFilename string
	CategoryID        int
	Status            UploadStatus
	VideoURL          string
	ErrorMessage      string
	CreatedAt         time.Time
}

// VideoUpload is the input contract for one upload attempt: metadata plus
// local paths to the spooled video and optional thumbnail content. The
// filename fields carry the client-supplied names for the audit trail; the
// path fields point at the temporary spool files.
type VideoUpload struct {
	ChannelID         string
	Title             string
	Description       string
	CategoryID        int
	PrivacyStatus     string
	VideoPath         string
	VideoFilename     string
	ThumbnailPath     string
	ThumbnailFilename string
}
