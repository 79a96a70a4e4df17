// Package twitch implements the TokenIssuer port with the Twitch
// client-credentials grant that IGDB requires.
package twitch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenIssuer = (*Issuer)(nil)

// grantResponse is the body returned by the token endpoint.
type grantResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Issuer exchanges a client id and secret for an app access token.
type Issuer struct {
	http         *resty.Client
	tokenURL     string
	clientID     string
	clientSecret string
}

// NewIssuer creates an Issuer posting to tokenURL through http.
func NewIssuer(http *resty.Client, tokenURL, clientID, clientSecret string) *Issuer {
	return &Issuer{
		http:         http,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Issue performs one grant request. The client id and secret travel as
// query parameters, as the endpoint expects.
func (i *Issuer) Issue(ctx context.Context) (driven.IssuedToken, error) {
	var body grantResponse

	resp, err := i.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client_id":     i.clientID,
			"client_secret": i.clientSecret,
			"grant_type":    "client_credentials",
		}).
		SetResult(&body).
		ForceContentType("application/json").
		Post(i.tokenURL)
	if err != nil {
		return driven.IssuedToken{}, fmt.Errorf("token grant request: %w", err)
	}
	if resp.IsError() {
		return driven.IssuedToken{}, fmt.Errorf("token grant returned HTTP %d", resp.StatusCode())
	}
	if body.AccessToken == "" {
		return driven.IssuedToken{}, errors.New("token grant response has no access_token")
	}

	return driven.IssuedToken{
		AccessToken: body.AccessToken,
		ExpiresIn:   time.Duration(body.ExpiresIn) * time.Second,
	}, nil
}
