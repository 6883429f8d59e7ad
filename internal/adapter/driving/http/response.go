package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmaselko/vidgate/internal/application"
	"github.com/dmaselko/vidgate/internal/domain/model"
	"github.com/dmaselko/vidgate/internal/domain/port/driven"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and
// message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// mapError translates the error taxonomy into a stable status code and a
// human-readable message. Internal detail never reaches the response body.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrInvalidChannel):
		return http.StatusBadRequest, "channel_id cannot be empty"
	case errors.Is(err, application.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, application.ErrNotAuthenticated),
		errors.Is(err, driven.ErrRefreshFailed):
		return http.StatusUnauthorized, "channel requires authorization"
	case errors.Is(err, driven.ErrRemoteAPI):
		return http.StatusBadGateway, "video hosting provider rejected the request"
	case errors.Is(err, driven.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "storage temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// UploadResponse is returned after a successful video upload.
type UploadResponse struct {
	VideoURL string `json:"video_url"`
}

// AuthCallbackResponse is returned after a completed authorization flow.
type AuthCallbackResponse struct {
	ChannelID string `json:"channel_id"`
	Status    string `json:"status"`
}

// ChannelStatusResponse is the JSON representation of one cached channel.
type ChannelStatusResponse struct {
	ChannelID string   `json:"channel_id"`
	Valid     bool     `json:"valid"`
	Expired   bool     `json:"expired"`
	Expiry    string   `json:"expiry,omitempty"`
	Scopes    []string `json:"scopes"`
}

func toChannelStatusResponse(s model.ChannelStatus) ChannelStatusResponse {
	resp := ChannelStatusResponse{
		ChannelID: s.ChannelID,
		Valid:     s.Valid,
		Expired:   s.Expired,
		Scopes:    s.Scopes,
	}
	if resp.Scopes == nil {
		resp.Scopes = []string{}
	}
	if !s.Expiry.IsZero() {
		resp.Expiry = s.Expiry.UTC().Format(time.RFC3339)
	}
	return resp
}

// ReloadResponse lists the channels loaded by a manual cache reload.
type ReloadResponse struct {
	Channels []string `json:"channels"`
}

// UploadRequestResponse is the JSON representation of one audit record.
type UploadRequestResponse struct {
	ID                int64  `json:"id"`
	ChannelID         string `json:"channel_id"`
	Title             string `json:"title"`
	VideoFilename     string `json:"video_filename"`
	ThumbnailFilename string `json:"thumbnail_filename,omitempty"`
	CategoryID        int    `json:"category_id"`
	Status            string `json:"status"`
	VideoURL          string `json:"video_url,omitempty"`
	ErrorMessage      string `json:"error_message,omitempty"`
	CreatedAt         string `json:"created_at"`
}

func toUploadRequestResponse(req model.UploadRequest) UploadRequestResponse {
	return UploadRequestResponse{
		ID:                req.ID,
		ChannelID:         req.ChannelID,
		Title:             req.Title,
		VideoFilename:     req.VideoFilename,
		ThumbnailFilename: req.ThumbnailFilename,
		CategoryID:        req.CategoryID,
		Status:            string(req.Status),
		VideoURL:          req.VideoURL,
		ErrorMessage:      req.ErrorMessage,
		CreatedAt:         req.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
