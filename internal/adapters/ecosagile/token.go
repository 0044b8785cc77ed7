// Package ecosagile is the EcosAgile HR API gateway. A TokenSource handles
// authentication, a Caller issues authenticated calls and a Directory maps
// the people registry to HR profiles.
package ecosagile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/pkg/logger"
	"github.com/okian/salesdash/pkg/metrics"
)

const (
	gatewayName  = "ecosagile"
	tokenAPI     = "TokenGet"
	maxErrorBody = 512
)

// TokenSource obtains and caches auth tokens.
type TokenSource struct {
	creds Credentials
	settings

	mu      sync.Mutex
	session model.Session
	log     logger.Logger
}

// NewTokenSource validates creds and returns a token source.
func NewTokenSource(creds Credentials, opts ...Option) (*TokenSource, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &TokenSource{
		creds:    creds,
		settings: newSettings(opts),
		log:      logger.Get().Named(gatewayName),
	}, nil
}

// Token returns the cached token or requests a new one.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session.Valid(t.now()) {
		t.log.Debug(ctx, "using cached ecosagile token")
		return t.session.Token, nil
	}
	s, err := t.fetch(ctx)
	if err != nil {
		return "", err
	}
	t.session = s
	return s.Token, nil
}

// Refresh requests a new token regardless of the cache.
func (t *TokenSource) Refresh(ctx context.Context) (model.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.fetch(ctx)
	if err != nil {
		t.session = model.Session{}
		return model.Session{}, err
	}
	t.session = s
	return s, nil
}

// Invalidate drops the cached token.
func (t *TokenSource) Invalidate() {
	t.mu.Lock()
	t.session = model.Session{}
	t.mu.Unlock()
	t.log.Info(context.Background(), "ecosagile token invalidated")
}

// TestConnection checks that a token can be obtained.
func (t *TokenSource) TestConnection(ctx context.Context) error {
	if _, err := t.Token(ctx); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	return nil
}

func (t *TokenSource) fetch(ctx context.Context) (model.Session, error) {
	form := url.Values{}
	form.Set("Userid", t.creds.UserID)
	form.Set("Password", t.creds.Password)
	form.Set("ClientID", t.creds.ClientID)

	body, err := postForm(ctx, t.http, t.creds.apiURL()+"?ApiName="+tokenAPI, form)
	if err != nil {
		metrics.RecordGatewayLogin(gatewayName, false)
		return model.Session{}, fmt.Errorf("%w: %w", model.ErrAuthentication, err)
	}
	env, err := decodeEnvelope(body)
	if err != nil {
		metrics.RecordGatewayLogin(gatewayName, false)
		return model.Session{}, err
	}
	if !env.Success {
		metrics.RecordGatewayLogin(gatewayName, false)
		return model.Session{}, fmt.Errorf("%w: ecosagile: %s", model.ErrAuthentication, env.Error)
	}
	if len(env.Rows) == 0 || env.Rows[0]["AuthToken"] == "" {
		metrics.RecordGatewayLogin(gatewayName, false)
		return model.Session{}, fmt.Errorf("%w: %w", model.ErrAuthentication, ErrNoToken)
	}

	metrics.RecordGatewayLogin(gatewayName, true)
	t.log.Info(ctx, "ecosagile token obtained")
	return model.Session{Token: env.Rows[0]["AuthToken"], ExpiresAt: t.now().Add(t.tokenTTL)}, nil
}

func postForm(ctx context.Context, hc *http.Client, target string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := hc.Do(req)
	if err != nil {
		metrics.RecordGatewayError(gatewayName, "transport")
		return nil, fmt.Errorf("ecosagile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordGatewayError(gatewayName, "http")
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &model.RemoteError{Op: "ecosagile", Message: "http " + strconv.Itoa(resp.StatusCode) + ": " + string(snippet)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ecosagile read body: %w", err)
	}
	return body, nil
}
