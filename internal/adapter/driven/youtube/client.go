// Package youtube implements the VideoHost port using the YouTube Data API
// v3 client from google.golang.org/api.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/dmaselko/vidgate/internal/domain/model"
	"github.com/dmaselko/vidgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VideoHost = (*Client)(nil)

// Client implements the driven.VideoHost port against the YouTube Data API.
// A service handle is built per call from the caller's credential; the
// client itself holds no channel state.
type Client struct {
	logger  *slog.Logger
	timeout time.Duration

	// Test hooks: when httpClient is set the service is built against it
	// (and endpoint) instead of the credential's token source.
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client for the production API endpoint. timeout bounds
// each upload call; zero means no explicit bound (transfers scale with file
// size).
func NewClient(logger *slog.Logger, timeout time.Duration) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger, timeout: timeout}
}

// NewClientWithEndpoint creates a Client against a custom base URL with a
// fixed http.Client. Intended for tests with an httptest server.
func NewClientWithEndpoint(endpoint string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger, endpoint: endpoint, httpClient: httpClient}
}

// InsertVideo uploads the video file with its metadata and returns the
// remote video identifier.
func (c *Client) InsertVideo(ctx context.Context, cred model.Credential, video model.VideoUpload) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", err
	}

	f, err := os.Open(video.VideoPath)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	res, err := svc.Videos.Insert([]string{"snippet", "status"}, &yt.Video{
		Snippet: &yt.VideoSnippet{
			ChannelId:   video.ChannelID,
			Title:       video.Title,
			Description: video.Description,
			CategoryId:  strconv.Itoa(video.CategoryID),
		},
		Status: &yt.VideoStatus{PrivacyStatus: video.PrivacyStatus},
	}).Media(f).Context(ctx).Do()
	if err != nil {
		return "", wrapAPIError("insert video", err)
	}
	if res.Id == "" {
		return "", fmt.Errorf("%w: no video id returned", driven.ErrRemoteAPI)
	}

	return res.Id, nil
}

// SetThumbnail attaches a thumbnail image to an uploaded video.
func (c *Client) SetThumbnail(ctx context.Context, cred model.Credential, videoID, thumbnailPath string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	svc, err := c.service(ctx, cred)
	if err != nil {
		return err
	}

	f, err := os.Open(thumbnailPath)
	if err != nil {
		return fmt.Errorf("open thumbnail file: %w", err)
	}
	defer f.Close()

	_, err = svc.Thumbnails.Set(videoID).Media(f).Context(ctx).Do()
	if err != nil {
		return wrapAPIError("set thumbnail", err)
	}
	return nil
}

func (c *Client) service(ctx context.Context, cred model.Credential) (*yt.Service, error) {
	opts := []option.ClientOption{}
	if c.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(c.httpClient), option.WithEndpoint(c.endpoint))
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cred.AccessToken,
			TokenType:   cred.TokenType,
		})
		opts = append(opts, option.WithTokenSource(ts))
	}

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return svc, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// wrapAPIError maps a googleapi error onto the RemoteAPI sentinel so the
// HTTP boundary can distinguish provider rejections from internal failures.
func wrapAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: status %d: %s", driven.ErrRemoteAPI, op, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%w: %s: %v", driven.ErrRemoteAPI, op, err)
}
