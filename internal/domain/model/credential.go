package model

import "time"

// CredentialToken is a bearer token issued for one upstream service.
// Service identifies the upstream ("igdb").
type CredentialToken struct {
	Service   string
	Token     string
	ExpiresAt time.Time
}

// UsableAt reports whether the token is non-empty and not yet expired at now.
func (t CredentialToken) UsableAt(now time.Time) bool {
	return t.Token != "" && now.Before(t.ExpiresAt)
}
