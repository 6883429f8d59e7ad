package driven

import (
	"context"
	"errors"

	"github.com/dmaselko/vidgate/internal/domain/model"
)

// ErrRefreshFailed is wrapped into every error from a rejected or
// unreachable refresh-token exchange. The caller treats it like a missing
// credential but it is logged distinctly for diagnosis.
var ErrRefreshFailed = errors.New("token refresh failed")

// TokenRefresher exchanges a credential's refresh token for a new access
// token against the OAuth token endpoint.
type TokenRefresher interface {
	// Refresh returns a new credential for the same channel with a fresh
	// access token. The input credential is not mutated.
	Refresh(ctx context.Context, cred model.Credential) (model.Credential, error)
}
