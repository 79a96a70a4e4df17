package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// ErrCredentialUnavailable is returned when no usable bearer token could be
// loaded or obtained.
var ErrCredentialUnavailable = errors.New("credential unavailable")

// DefaultExpirySkew refreshes tokens this long before they actually expire.
const DefaultExpirySkew = 60 * time.Second

// TokenService keeps a bearer token for one upstream service valid. The
// active token is held in memory, persisted through a TokenStore, and
// renewed through a TokenIssuer when it is missing or about to expire.
type TokenService struct {
	service string
	store   driven.TokenStore
	issuer  driven.TokenIssuer
	skew    time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu     sync.Mutex
	active *model.CredentialToken
	loaded bool

	group singleflight.Group
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithTokenClock overrides the service's time source.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithExpirySkew overrides DefaultExpirySkew.
func WithExpirySkew(d time.Duration) TokenOption {
	return func(s *TokenService) { s.skew = d }
}

// NewTokenService creates a TokenService for service.
func NewTokenService(service string, store driven.TokenStore, issuer driven.TokenIssuer, logger *slog.Logger, opts ...TokenOption) *TokenService {
	s := &TokenService{
		service: service,
		store:   store,
		issuer:  issuer,
		skew:    DefaultExpirySkew,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureValidToken returns a token that is valid for at least the expiry
// skew. The persisted token is reused when possible; otherwise a single
// grant is performed and shared by all concurrent callers.
func (s *TokenService) EnsureValidToken(ctx context.Context) (string, error) {
	if token, ok := s.current(ctx); ok {
		return token, nil
	}

	// The shared grant outlives any single caller and is bounded by the
	// issuer's HTTP timeout. Each caller stops waiting when its ctx is done.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(s.service, func() (any, error) {
		// Another caller may have refreshed while this one waited.
		if token, ok := s.current(shared); ok {
			return token, nil
		}
		return s.refresh(shared)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %s: %w", ErrCredentialUnavailable, s.service, ctx.Err())
	}
}

// current returns the active token if it is usable, loading the persisted
// token on first use.
func (s *TokenService) current(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		stored, err := s.store.Load(ctx, s.service)
		if err != nil {
			s.logger.Warn("loading persisted token failed", "service", s.service, "error", err)
		} else {
			s.active = stored
		}
		s.loaded = err == nil
	}

	if s.active != nil && s.active.UsableAt(s.now().Add(s.skew)) {
		return s.active.Token, true
	}
	return "", false
}

func (s *TokenService) refresh(ctx context.Context) (string, error) {
	issued, err := s.issuer.Issue(ctx)
	if err != nil {
		s.clear()
		s.logger.Error("token grant failed", "service", s.service, "error", err)
		return "", fmt.Errorf("%w: %s: %w", ErrCredentialUnavailable, s.service, err)
	}

	token := model.CredentialToken{
		Service:   s.service,
		Token:     issued.AccessToken,
		ExpiresAt: s.now().Add(issued.ExpiresIn),
	}
	if err := s.store.Save(ctx, token); err != nil {
		s.logger.Warn("persisting token failed", "service", s.service, "error", err)
	}

	s.mu.Lock()
	s.active = &token
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("token refreshed", "service", s.service, "expires_at", token.ExpiresAt)
	return token.Token, nil
}

func (s *TokenService) clear() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}
