package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenRepo)(nil)

// TokenRepo is the SQLite implementation of the TokenStore port.
// When built with a 32-byte key, tokens are sealed with AES-256-GCM before
// write; rows written without a key stay readable in plaintext.
type TokenRepo struct {
	db  *DB
	key []byte
}

// NewTokenRepo creates a TokenRepo. key may be nil to store tokens in plaintext.
func NewTokenRepo(db *DB, key []byte) *TokenRepo {
	return &TokenRepo{db: db, key: key}
}

// Load returns the token persisted for service, or nil if there is none.
func (r *TokenRepo) Load(ctx context.Context, service string) (*model.CredentialToken, error) {
	const query = `SELECT token, encrypted, expires_at FROM upstream_tokens WHERE service = ?`

	var (
		stored    string
		encrypted bool
		expiresAt int64
	)
	err := r.db.Reader.QueryRowContext(ctx, query, service).Scan(&stored, &encrypted, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load token %q: %w", service, err)
	}

	token := stored
	if encrypted {
		if r.key == nil {
			return nil, fmt.Errorf("load token %q: %w", service, driven.ErrEncryptionKeyNotSet)
		}
		token, err = openString(r.key, stored)
		if err != nil {
			return nil, fmt.Errorf("decrypt token %q: %w", service, err)
		}
	}

	return &model.CredentialToken{
		Service:   service,
		Token:     token,
		ExpiresAt: fromMillis(expiresAt),
	}, nil
}

// Save stores or replaces the token for token.Service.
func (r *TokenRepo) Save(ctx context.Context, token model.CredentialToken) error {
	stored := token.Token
	encrypted := false
	if r.key != nil {
		sealed, err := sealString(r.key, token.Token)
		if err != nil {
			return fmt.Errorf("encrypt token %q: %w", token.Service, err)
		}
		stored = sealed
		encrypted = true
	}

	const query = `
		INSERT INTO upstream_tokens (service, token, encrypted, expires_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			token = excluded.token,
			encrypted = excluded.encrypted,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`

	_, err := r.db.Writer.ExecContext(ctx, query,
		token.Service, stored, encrypted, toMillis(token.ExpiresAt), toMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("save token %q: %w", token.Service, err)
	}
	return nil
}
