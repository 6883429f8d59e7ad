package application_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmaselko/vidgate/internal/domain/model"
)

// --- Mock implementations ---

type mockCredentialStore struct {
	mu      sync.Mutex
	records map[string]model.Credential

	getCalls  atomic.Int32
	putCalls  atomic.Int32
	listCalls atomic.Int32

	getErr  error
	putErr  error
	listErr error
}

func newMockCredentialStore(creds ...model.Credential) *mockCredentialStore {
	s := &mockCredentialStore{records: make(map[string]model.Credential)}
	for _, c := range creds {
		s.records[c.ChannelID] = c
	}
	return s
}

func (s *mockCredentialStore) Put(_ context.Context, cred model.Credential) error {
	s.putCalls.Add(1)
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[cred.ChannelID] = cred
	return nil
}

func (s *mockCredentialStore) Get(_ context.Context, channelID string) (*model.Credential, error) {
	s.getCalls.Add(1)
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.records[channelID]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (s *mockCredentialStore) ListAll(_ context.Context) ([]model.Credential, error) {
	s.listCalls.Add(1)
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := make([]model.Credential, 0, len(s.records))
	for _, c := range s.records {
		creds = append(creds, c)
	}
	return creds, nil
}

func (s *mockCredentialStore) stored(channelID string) (model.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.records[channelID]
	return c, ok
}

type mockRefresher struct {
	calls   atomic.Int32
	refresh func(ctx context.Context, cred model.Credential) (model.Credential, error)
}

func (r *mockRefresher) Refresh(ctx context.Context, cred model.Credential) (model.Credential, error) {
	r.calls.Add(1)
	return r.refresh(ctx, cred)
}

type insertCall struct {
	Cred  model.Credential
	Video model.VideoUpload
}

type mockVideoHost struct {
	mu           sync.Mutex
	inserts      []insertCall
	thumbnails   []string
	insertErr    error
	thumbnailErr error
	videoID      string
}

func (h *mockVideoHost) InsertVideo(_ context.Context, cred model.Credential, video model.VideoUpload) (string, error) {
	h.mu.Lock()
	h.inserts = append(h.inserts, insertCall{Cred: cred, Video: video})
	h.mu.Unlock()
	if h.insertErr != nil {
		return "", h.insertErr
	}
	if h.videoID == "" {
		return "vid123", nil
	}
	return h.videoID, nil
}

func (h *mockVideoHost) SetThumbnail(_ context.Context, _ model.Credential, videoID, _ string) error {
	h.mu.Lock()
	h.thumbnails = append(h.thumbnails, videoID)
	h.mu.Unlock()
	return h.thumbnailErr
}

type statusCall struct {
	ID       int64
	Status   model.UploadStatus
	VideoURL string
	ErrorMsg string
}

type mockUploadRequestStore struct {
	mu        sync.Mutex
	nextID    int64
	inserts   []model.UploadRequest
	statuses  []statusCall
	insertErr error
}

func (s *mockUploadRequestStore) Insert(_ context.Context, req model.UploadRequest) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	req.ID = s.nextID
	s.inserts = append(s.inserts, req)
	return s.nextID, nil
}

func (s *mockUploadRequestStore) SetStatus(_ context.Context, id int64, status model.UploadStatus, videoURL, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, statusCall{ID: id, Status: status, VideoURL: videoURL, ErrorMsg: errorMessage})
	return nil
}

func (s *mockUploadRequestStore) ListRecent(_ context.Context, _ int) ([]model.UploadRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts, nil
}
