package driven

import (
	"context"
	"time"
)

// IssuedToken is the raw result of a credential grant.
type IssuedToken struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// TokenIssuer performs a client-credentials grant against an authorization server.
type TokenIssuer interface {
	Issue(ctx context.Context) (IssuedToken, error)
}
