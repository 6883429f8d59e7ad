package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmaselko/vidgate/internal/domain/model"
	"github.com/dmaselko/vidgate/internal/domain/port/driven"
)

// ErrInvalidInput is returned for upload metadata that fails the input
// contract (missing or over-length fields, unknown privacy status).
var ErrInvalidInput = errors.New("invalid upload input")

const (
	maxTitleLength       = 100
	maxDescriptionLength = 5000

	// DefaultCategoryID is the hosting platform's "People & Blogs" category.
	DefaultCategoryID = 22

	// DefaultPrivacyStatus is applied when the caller does not specify one.
	DefaultPrivacyStatus = "public"
)

// CredentialResolver yields a ready-to-use credential for a channel.
// *AuthManager satisfies it; tests substitute doubles.
type CredentialResolver interface {
	Resolve(ctx context.Context, channelID string) (model.Credential, error)
}

// UploadService translates an upload intent into a remote hosting call:
// resolve the channel credential, record the attempt, delegate the
// transfer, and record the outcome.
type UploadService struct {
	resolver CredentialResolver
	host     driven.VideoHost
	requests driven.UploadRequestStore
	logger   *slog.Logger
}

// NewUploadService creates an UploadService with all required dependencies.
func NewUploadService(resolver CredentialResolver, host driven.VideoHost, requests driven.UploadRequestStore, logger *slog.Logger) *UploadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadService{
		resolver: resolver,
		host:     host,
		requests: requests,
		logger:   logger,
	}
}

// Upload uploads the video (and, best-effort, its thumbnail) to the hosting
// platform on behalf of the channel and returns the playable URL.
//
// The credential is resolved before any transfer begins and is not
// re-validated mid-transfer. A thumbnail failure is logged and does not
// fail the operation; the primary artifact already succeeded.
func (s *UploadService) Upload(ctx context.Context, video model.VideoUpload) (string, error) {
	if video.CategoryID == 0 {
		video.CategoryID = DefaultCategoryID
	}
	if video.PrivacyStatus == "" {
		video.PrivacyStatus = DefaultPrivacyStatus
	}
	if err := validateUpload(video); err != nil {
		return "", err
	}

	requestID := s.recordRequest(ctx, video)

	cred, err := s.resolver.Resolve(ctx, video.ChannelID)
	if err != nil {
		s.recordOutcome(ctx, requestID, model.UploadStatusFailed, "", err)
		return "", err
	}

	s.logger.Info("starting video upload",
		"channel_id", video.ChannelID,
		"title", video.Title,
		"privacy", video.PrivacyStatus,
	)

	videoID, err := s.host.InsertVideo(ctx, cred, video)
	if err != nil {
		s.recordOutcome(ctx, requestID, model.UploadStatusFailed, "", err)
		return "", fmt.Errorf("upload for %q: %w", video.ChannelID, err)
	}

	videoURL := "https://youtu.be/" + videoID
	s.logger.Info("video uploaded", "channel_id", video.ChannelID, "video_id", videoID)

	if video.ThumbnailPath != "" {
		if err := s.host.SetThumbnail(ctx, cred, videoID, video.ThumbnailPath); err != nil {
			s.logger.Warn("thumbnail upload failed",
				"channel_id", video.ChannelID,
				"video_id", videoID,
				"error", err,
			)
		}
	}

	s.recordOutcome(ctx, requestID, model.UploadStatusSuccess, videoURL, nil)
	return videoURL, nil
}

func validateUpload(video model.VideoUpload) error {
	if strings.TrimSpace(video.ChannelID) == "" {
		return ErrInvalidChannel
	}
	if strings.TrimSpace(video.Title) == "" || len(video.Title) > maxTitleLength {
		return fmt.Errorf("%w: title is required and must be at most %d characters", ErrInvalidInput, maxTitleLength)
	}
	if strings.TrimSpace(video.Description) == "" || len(video.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description is required and must be at most %d characters", ErrInvalidInput, maxDescriptionLength)
	}
	switch video.PrivacyStatus {
	case "public", "private", "unlisted":
	default:
		return fmt.Errorf("%w: privacy status must be public, private, or unlisted", ErrInvalidInput)
	}
	if video.VideoPath == "" {
		return fmt.Errorf("%w: video file is required", ErrInvalidInput)
	}
	return nil
}

// recordRequest inserts the PENDING audit record. A store failure here is
// logged but does not block the upload; the audit trail is best effort.
func (s *UploadService) recordRequest(ctx context.Context, video model.VideoUpload) int64 {
	id, err := s.requests.Insert(ctx, model.UploadRequest{
		ChannelID:         video.ChannelID,
		Title:             video.Title,
		Description:       video.Description,
		VideoFilename:     video.VideoFilename,
		ThumbnailFilename: video.ThumbnailFilename,
		CategoryID:        video.CategoryID,
		Status:            model.UploadStatusPending,
	})
	if err != nil {
		s.logger.Error("recording upload request failed", "channel_id", video.ChannelID, "error", err)
		return 0
	}
	return id
}

func (s *UploadService) recordOutcome(ctx context.Context, requestID int64, status model.UploadStatus, videoURL string, cause error) {
	if requestID == 0 {
		return
	}

	var message string
	if cause != nil {
		message = cause.Error()
	}

	if err := s.requests.SetStatus(ctx, requestID, status, videoURL, message); err != nil {
		s.logger.Error("updating upload request failed", "request_id", requestID, "status", status, "error", err)
	}
}
