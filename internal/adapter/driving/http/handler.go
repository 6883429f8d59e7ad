// Package httphandler is the HTTP driving adapter that serves the REST API.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmaselko/vidgate/internal/domain/model"
	"github.com/dmaselko/vidgate/internal/domain/port/driven"
)

// stateTTL bounds how long a pending authorization state is honored.
const stateTTL = 10 * time.Minute

// uploadsListLimit caps the audit listing endpoint.
const uploadsListLimit = 50

// UploadService is the driving-side view of the upload orchestrator.
type UploadService interface {
	Upload(ctx context.Context, video model.VideoUpload) (string, error)
}

// CredentialManager is the driving-side view of the credential manager.
type CredentialManager interface {
	Register(ctx context.Context, cred model.Credential) error
	Snapshot() []model.ChannelStatus
}

// Reloader triggers an immediate credential cache reload.
type Reloader interface {
	Trigger(ctx context.Context) ([]string, error)
}

// OAuthFlow is the authorization-code flow collaborator.
type OAuthFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code, channelID string) (model.Credential, error)
}

// Handler serves the REST API: video uploads, the channel authorization
// flow, cache diagnostics, and the upload audit trail.
type Handler struct {
	uploads  UploadService
	manager  CredentialManager
	reloader Reloader
	flow     OAuthFlow
	requests driven.UploadRequestStore
	logger   *slog.Logger

	maxVideoBytes     int64
	maxThumbnailBytes int64

	// Pending authorization states, keyed by the opaque state parameter.
	stateMu sync.Mutex
	states  map[string]stateEntry
}

type stateEntry struct {
	channelID string
	expires   time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	uploads UploadService,
	manager CredentialManager,
	reloader Reloader,
	flow OAuthFlow,
	requests driven.UploadRequestStore,
	maxVideoBytes, maxThumbnailBytes int64,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		uploads:           uploads,
		manager:           manager,
		reloader:          reloader,
		flow:              flow,
		requests:          requests,
		logger:            logger,
		maxVideoBytes:     maxVideoBytes,
		maxThumbnailBytes: maxThumbnailBytes,
		states:            make(map[string]stateEntry),
	}
}

// NewServeMux creates an http.Handler with all routes registered and
// wrapped with request-id, logging, and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/videos", h.UploadVideo)
	mux.HandleFunc("GET /api/v1/channels", h.ListChannels)
	mux.HandleFunc("POST /api/v1/channels/reload", h.ReloadChannels)
	mux.HandleFunc("GET /api/v1/uploads", h.ListUploads)
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /auth/url", h.AuthURL)
	mux.HandleFunc("GET /auth/callback", h.AuthCallback)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// UploadVideo accepts a multipart video upload and forwards it to the
// hosting platform on behalf of the channel.
func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	// The extra megabyte covers multipart framing and form fields.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxVideoBytes+h.maxThumbnailBytes+(1<<20))

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	channelID := strings.TrimSpace(r.FormValue("channel_id"))
	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if channelID == "" {
		writeError(w, http.StatusBadRequest, "channel_id cannot be empty")
		return
	}
	if title == "" {
		writeError(w, http.StatusBadRequest, "title cannot be empty")
		return
	}
	if description == "" {
		writeError(w, http.StatusBadRequest, "description cannot be empty")
		return
	}

	categoryID := 0
	if v := r.FormValue("category_id"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "category_id must be a positive integer")
			return
		}
		categoryID = parsed
	}

	videoFile, videoHeader, err := r.FormFile("video_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "video_file is required")
		return
	}
	defer videoFile.Close()

	if err := validateFileHeader(videoHeader, videoExtensions, h.maxVideoBytes); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	videoPath, err := spoolToTemp(videoFile, "vidgate-video-*")
	if err != nil {
		h.logger.Error("spooling video failed", "request_id", RequestIDFrom(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer removeTemp(h.logger, videoPath)

	upload := model.VideoUpload{
		ChannelID:     channelID,
		Title:         title,
		Description:   description,
		CategoryID:    categoryID,
		PrivacyStatus: strings.TrimSpace(r.FormValue("privacy_status")),
		VideoPath:     videoPath,
		VideoFilename: videoHeader.Filename,
	}

	thumbFile, thumbHeader, err := r.FormFile("thumbnail_file")
	switch {
	case err == nil:
		defer thumbFile.Close()

		if err := validateFileHeader(thumbHeader, thumbnailExtensions, h.maxThumbnailBytes); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		thumbPath, err := spoolToTemp(thumbFile, "vidgate-thumb-*")
		if err != nil {
			h.logger.Error("spooling thumbnail failed", "request_id", RequestIDFrom(r.Context()), "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		defer removeTemp(h.logger, thumbPath)

		upload.ThumbnailPath = thumbPath
		upload.ThumbnailFilename = thumbHeader.Filename
	case err == http.ErrMissingFile:
		// Thumbnail is optional.
	default:
		writeError(w, http.StatusBadRequest, "invalid thumbnail_file")
		return
	}

	h.logger.Info("upload request received",
		"request_id", RequestIDFrom(r.Context()),
		"channel_id", channelID,
		"title", title,
		"video_size", videoHeader.Size,
	)

	videoURL, err := h.uploads.Upload(r.Context(), upload)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{VideoURL: videoURL})
}

// AuthURL starts the authorization flow for a channel by redirecting the
// browser to the provider's consent page.
func (h *Handler) AuthURL(w http.ResponseWriter, r *http.Request) {
	channelID := strings.TrimSpace(r.URL.Query().Get("channel_id"))
	if channelID == "" {
		writeError(w, http.StatusBadRequest, "channel_id is required")
		return
	}

	state := channelID + ":" + uuid.NewString()
	h.putState(state, channelID)

	http.Redirect(w, r, h.flow.AuthCodeURL(state), http.StatusFound)
}

// AuthCallback completes the authorization flow: it exchanges the code for
// a credential and registers it for the channel recorded in the state.
func (h *Handler) AuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := q.Get("state")
	code := q.Get("code")
	if state == "" || code == "" {
		writeError(w, http.StatusBadRequest, "state and code are required")
		return
	}

	channelID, ok := h.takeState(state)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown or expired authorization state")
		return
	}

	cred, err := h.flow.Exchange(r.Context(), code, channelID)
	if err != nil {
		h.logger.Error("authorization exchange failed",
			"request_id", RequestIDFrom(r.Context()),
			"channel_id", channelID,
			"error", err,
		)
		writeError(w, http.StatusBadGateway, "authorization exchange failed")
		return
	}

	if err := h.manager.Register(r.Context(), cred); err != nil {
		h.writeMappedError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthCallbackResponse{ChannelID: channelID, Status: "authenticated"})
}

// ListChannels returns the diagnostic snapshot of cached channels.
func (h *Handler) ListChannels(w http.ResponseWriter, _ *http.Request) {
	statuses := h.manager.Snapshot()

	resp := make([]ChannelStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		resp = append(resp, toChannelStatusResponse(s))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ReloadChannels triggers an immediate cache reload from the store.
func (h *Handler) ReloadChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.reloader.Trigger(r.Context())
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	if channels == nil {
		channels = []string{}
	}

	writeJSON(w, http.StatusOK, ReloadResponse{Channels: channels})
}

// ListUploads returns the most recent upload audit records.
func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requests.ListRecent(r.Context(), uploadsListLimit)
	if err != nil {
		h.logger.Error("listing uploads failed", "request_id", RequestIDFrom(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]UploadRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		resp = append(resp, toUploadRequestResponse(req))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"request_id", RequestIDFrom(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	} else {
		h.logger.Warn("request rejected",
			"request_id", RequestIDFrom(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeError(w, status, message)
}

func (h *Handler) putState(state, channelID string) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	now := time.Now()
	for s, e := range h.states {
		if now.After(e.expires) {
			delete(h.states, s)
		}
	}
	h.states[state] = stateEntry{channelID: channelID, expires: now.Add(stateTTL)}
}

func (h *Handler) takeState(state string) (string, bool) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	entry, ok := h.states[state]
	if !ok || time.Now().After(entry.expires) {
		delete(h.states, state)
		return "", false
	}
	delete(h.states, state)
	return entry.channelID, true
}
