package driven

import (
	"context"
	"errors"

	"github.com/dmaselko/vidgate/internal/domain/model"
)

// ErrStoreUnavailable is wrapped into every error the credential store
// surfaces for connectivity or serialization failures. Callers treat it as
// retryable on the next reload tick; an interactive request maps it to 503.
var ErrStoreUnavailable = errors.New("credential store unavailable")

// CredentialStore is the driven port for durable channel-credential
// persistence: one record per channel identifier, upserted whole.
type CredentialStore interface {
	// Put serializes the credential and inserts or fully replaces the record
	// for its channel. There are no partial-write states.
	Put(ctx context.Context, cred model.Credential) error

	// Get returns the credential for the channel, or (nil, nil) when no
	// record exists.
	Get(ctx context.Context, channelID string) (*model.Credential, error)

	// ListAll returns every stored credential in unspecified order, for full
	// cache rehydration. Records whose payload cannot be deserialized are
	// logged and skipped; they do not abort the listing.
	ListAll(ctx context.Context) ([]model.Credential, error)
}
