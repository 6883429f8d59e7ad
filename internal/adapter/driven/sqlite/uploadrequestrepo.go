package sqlite

import (
	"context"
	"fmt"

	"github.com/dmaselko/vidgate/internal/domain/model"
	"github.com/dmaselko/vidgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UploadRequestStore = (*UploadRequestRepo)(nil)

// UploadRequestRepo is the SQLite implementation of the UploadRequestStore
// port.
type UploadRequestRepo struct {
	db *DB
}

// NewUploadRequestRepo creates an UploadRequestRepo backed by the given
// database.
func NewUploadRequestRepo(db *DB) *UploadRequestRepo {
	return &UploadRequestRepo{db: db}
}

// Insert persists a new PENDING record and returns its identifier.
func (r *UploadRequestRepo) Insert(ctx context.Context, req model.UploadRequest) (int64, error) {
	const query = `
		INSERT INTO upload_requests
			(channel_id, title, description, video_filename, thumbnail_filename, category_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	status := req.Status
	if status == "" {
		status = model.UploadStatusPending
	}

	res, err := r.db.Writer.ExecContext(ctx, query,
		req.ChannelID, req.Title, req.Description,
		req.VideoFilename, req.ThumbnailFilename, req.CategoryID, string(status),
	)
	if err != nil {
		return 0, fmt.Errorf("insert upload request for %q: %w", req.ChannelID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("upload request id: %w", err)
	}
	return id, nil
}

// SetStatus records the outcome of an upload attempt.
func (r *UploadRequestRepo) SetStatus(ctx context.Context, id int64, status model.UploadStatus, videoURL, errorMessage string) error {
	const query = `UPDATE upload_requests SET status = ?, video_url = ?, error_message = ? WHERE id = ?`

	_, err := r.db.Writer.ExecContext(ctx, query, string(status), videoURL, errorMessage, id)
	if err != nil {
		return fmt.Errorf("update upload request %d: %w", id, err)
	}
	return nil
}

// ListRecent returns up to limit records, newest first.
func (r *UploadRequestRepo) ListRecent(ctx context.Context, limit int) ([]model.UploadRequest, error) {
	const query = `
		SELECT id, channel_id, title, description, video_filename, thumbnail_filename,
		       category_id, status, video_url, error_message, created_at
		FROM upload_requests
		ORDER BY id DESC
		LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list upload requests: %w", err)
	}
	defer rows.Close()

	var reqs []model.UploadRequest
	for rows.Next() {
		var req model.UploadRequest
		var status, createdAt string
		if err := rows.Scan(
			&req.ID, &req.ChannelID, &req.Title, &req.Description,
			&req.VideoFilename, &req.ThumbnailFilename, &req.CategoryID,
			&status, &req.VideoURL, &req.ErrorMessage, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan upload request: %w", err)
		}

		req.Status = model.UploadStatus(status)
		req.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for upload request %d: %w", req.ID, err)
		}

		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upload requests: %w", err)
	}

	return reqs, nil
}
