package ecosagile

import (
	"context"
	"net/url"

	"github.com/okian/salesdash/pkg/logger"
)

// Authenticator supplies tokens for authenticated calls.
type Authenticator interface {
	Token(ctx context.Context) (string, error)
}

// Caller issues authenticated EcosAgile API calls.
type Caller struct {
	creds Credentials
	auth  Authenticator
	settings
	log logger.Logger
}

// NewCaller creates a caller. auth may be nil for endpoints that need no token.
func NewCaller(creds Credentials, auth Authenticator, opts ...Option) *Caller {
	return &Caller{
		creds:    creds,
		auth:     auth,
		settings: newSettings(opts),
		log:      logger.Get().Named(gatewayName),
	}
}

// Call invokes apiName with params as form fields. A FAIL response is
// returned as an unsuccessful Envelope rather than an error; transport,
// authentication and decoding problems are errors.
func (c *Caller) Call(ctx context.Context, apiName string, params url.Values) (Envelope, error) {
	target := c.creds.apiURL() + "?ApiName=" + url.QueryEscape(apiName)
	if c.auth != nil {
		token, err := c.auth.Token(ctx)
		if err != nil {
			return Envelope{}, err
		}
		target += "&AuthToken=" + url.QueryEscape(token)
	}
	if params == nil {
		params = url.Values{}
	}

	c.log.Debug(ctx, "calling ecosagile api", logger.String("api", apiName))
	body, err := postForm(ctx, c.http, target, params)
	if err != nil {
		return Envelope{}, err
	}
	env, err := decodeEnvelope(body)
	if err != nil {
		return Envelope{}, err
	}
	if !env.Success {
		c.log.Warn(ctx, "ecosagile api failed", logger.String("api", apiName), logger.String("message", env.Error))
	}
	return env, nil
}
