// Package beststore talks to the BestStore web API: login, async
// transaction export, status polling and CSV download.
package beststore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/pkg/logger"
	"github.com/okian/salesdash/pkg/metrics"
)

const (
	gatewayName = "beststore"

	loginEndpoint      = "User/Login"
	exportEndpoint     = "Order/GetTransactionAsync"
	taskStatusEndpoint = "AsyncTask/GetTaskStatus"

	defaultSessionTTL   = time.Hour
	defaultPollInterval = 5 * time.Second
	defaultMaxAttempts  = 120
	defaultTimeout      = 60 * time.Second
	defaultDateLayout   = "2006-01-02"
	maxErrorBody        = 512
)

// Client is a BestStore API client. It caches one login session and is safe
// for concurrent use, although callers are expected to run one export at a
// time per client.
type Client struct {
	baseURL    string
	apiVersion string
	username   string
	password   string

	http         *http.Client
	sessionTTL   time.Duration
	pollInterval time.Duration
	maxAttempts  int
	docTypes     []string
	dateLayout   string
	now          func() time.Time

	mu      sync.Mutex
	session model.Session

	log logger.Logger
}

// New creates a client for baseURL and apiVersion (e.g. "V2.6/api").
func New(baseURL, apiVersion, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiVersion:   strings.Trim(apiVersion, "/"),
		username:     username,
		password:     password,
		http:         &http.Client{Timeout: defaultTimeout},
		sessionTTL:   defaultSessionTTL,
		pollInterval: defaultPollInterval,
		maxAttempts:  defaultMaxAttempts,
		docTypes:     []string{"VE", "AR"},
		dateLayout:   defaultDateLayout,
		now:          time.Now,
		log:          logger.Get().Named(gatewayName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Result     json.RawMessage `json:"Result"`
	ErrMessage string          `json:"ErrMessage"`
}

// Session returns the cached session id, logging in when it is missing or
// expired.
func (c *Client) Session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Valid(c.now()) {
		return c.session.Token, nil
	}
	s, err := c.login(ctx)
	if err != nil {
		return "", err
	}
	c.session = s
	return s.Token, nil
}

// Refresh discards the cached session and logs in again.
func (c *Client) Refresh(ctx context.Context) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.login(ctx)
	if err != nil {
		c.session = model.Session{}
		return model.Session{}, err
	}
	c.session = s
	return s, nil
}

// Invalidate drops the cached session.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.session = model.Session{}
	c.mu.Unlock()
}

func (c *Client) login(ctx context.Context) (model.Session, error) {
	body := map[string]string{"username": c.username, "password": c.password}
	var env envelope
	status, err := c.postJSON(ctx, c.endpointURL(loginEndpoint, ""), body, &env)
	if err != nil {
		metrics.RecordGatewayLogin(gatewayName, false)
		return model.Session{}, fmt.Errorf("%w: beststore login: %w", model.ErrAuthentication, err)
	}
	if status != http.StatusOK {
		metrics.RecordGatewayLogin(gatewayName, false)
		return model.Session{}, fmt.Errorf("%w: beststore login: http %d", model.ErrAuthentication, status)
	}
	if env.ErrMessage != "" {
		metrics.RecordGatewayLogin(gatewayName, false)
		return model.Session{}, fmt.Errorf("%w: beststore login: %s", model.ErrAuthentication, env.ErrMessage)
	}
	sid := resultString(env.Result)
	if sid == "" {
		metrics.RecordGatewayLogin(gatewayName, false)
		return model.Session{}, fmt.Errorf("%w: %w", model.ErrAuthentication, ErrNoSession)
	}
	metrics.RecordGatewayLogin(gatewayName, true)
	c.log.Info(ctx, "beststore login successful")
	return model.Session{Token: sid, ExpiresAt: c.now().Add(c.sessionTTL)}, nil
}

// post calls an authenticated endpoint. ErrMessage is returned to the caller
// untouched only for the task status endpoint, which reports failures in it.
func (c *Client) post(ctx context.Context, endpoint string, body any) (envelope, error) {
	sid, err := c.Session(ctx)
	if err != nil {
		return envelope{}, err
	}

	var env envelope
	status, err := c.postJSON(ctx, c.endpointURL(endpoint, sid), body, &env)
	if err != nil {
		metrics.RecordGatewayError(gatewayName, "transport")
		return envelope{}, fmt.Errorf("beststore %s: %w", endpoint, err)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		c.Invalidate()
		metrics.RecordGatewayError(gatewayName, "auth")
		return envelope{}, fmt.Errorf("%w: beststore %s: http %d", model.ErrAuthentication, endpoint, status)
	case status != http.StatusOK:
		metrics.RecordGatewayError(gatewayName, "http")
		return envelope{}, &model.RemoteError{Op: "beststore " + endpoint, Message: "http " + strconv.Itoa(status)}
	case env.ErrMessage != "" && endpoint != taskStatusEndpoint:
		metrics.RecordGatewayError(gatewayName, "remote")
		return envelope{}, &model.RemoteError{Op: "beststore " + endpoint, Message: env.ErrMessage}
	}
	return env, nil
}

// postJSON posts body and decodes a 200 response into out. Non-200
// responses are returned as a status code without decoding.
func (c *Client) postJSON(ctx context.Context, target string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn(ctx, "beststore non-200 response",
			logger.Int("status", resp.StatusCode),
			logger.String("body", string(snippet)))
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode response: %w", model.ErrParse, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) endpointURL(endpoint, sid string) string {
	u := c.baseURL + "/" + c.apiVersion + "/" + endpoint
	if sid != "" {
		u += "?SessionId=" + url.QueryEscape(sid)
	}
	return u
}

// resultString reads Result as a string, accepting numeric ids as well.
func resultString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
