package jsonfile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// lockRetryDelay is how often a blocked lock attempt is retried.
const lockRetryDelay = 25 * time.Millisecond

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenFile)(nil)

// tokenRecord is the on-disk shape of the token file.
type tokenRecord struct {
	Token      string `json:"token"`
	Expiration int64  `json:"expiration"`
}

// TokenFile is a TokenStore holding the token of a single service.
// Loads for any other service report no token.
type TokenFile struct {
	path    string
	service string
	mu      sync.Mutex
	lock    *flock.Flock
	logger  *slog.Logger
}

// NewTokenFile creates a TokenFile at path for service.
func NewTokenFile(path, service string, logger *slog.Logger) *TokenFile {
	return &TokenFile{
		path:    path,
		service: service,
		lock:    flock.New(path + ".lock"),
		logger:  logger,
	}
}

// Load returns the persisted token, or nil if the file does not exist.
func (f *TokenFile) Load(ctx context.Context, service string) (*model.CredentialToken, error) {
	if service != f.service {
		return nil, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return nil, fmt.Errorf("lock %s: %w", f.path, err)
	}
	defer f.unlock()

	var rec tokenRecord
	exists, err := readJSON(f.path, &rec)
	if err != nil {
		return nil, err
	}
	if !exists || rec.Token == "" {
		return nil, nil
	}

	return &model.CredentialToken{
		Service:   f.service,
		Token:     rec.Token,
		ExpiresAt: time.UnixMilli(rec.Expiration).UTC(),
	}, nil
}

// Save replaces the file with token.
func (f *TokenFile) Save(ctx context.Context, token model.CredentialToken) error {
	if token.Service != f.service {
		return fmt.Errorf("token file %s holds %q tokens, got %q", f.path, f.service, token.Service)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("lock %s: %w", f.path, err)
	}
	defer f.unlock()

	return writeJSON(f.path, tokenRecord{Token: token.Token, Expiration: token.ExpiresAt.UnixMilli()})
}

func (f *TokenFile) unlock() {
	if err := f.lock.Unlock(); err != nil {
		f.logger.Warn("failed to release token file lock", "path", f.path, "error", err)
	}
}
