package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned when a token store that requires
// encryption was built without RETROTRACKER_SECRET_KEY.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set RETROTRACKER_SECRET_KEY")

// TokenStore defines the driven port for persisted upstream bearer tokens.
// At most one token is kept per service; Save replaces it.
type TokenStore interface {
	// Load returns the persisted token for service, or (nil, nil) if none exists.
	Load(ctx context.Context, service string) (*model.CredentialToken, error)

	// Save stores or replaces the token for token.Service.
	Save(ctx context.Context, token model.CredentialToken) error
}
