package beststore

import (
	"net/http"
	"time"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSessionTTL sets how long a login session is reused.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.sessionTTL = ttl
		}
	}
}

// WithPollInterval sets the wait before each task status call.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.pollInterval = d
		}
	}
}

// WithMaxAttempts bounds the number of task status calls.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithDocTypes sets the document types requested when none are given.
func WithDocTypes(types []string) Option {
	return func(c *Client) {
		if len(types) > 0 {
			c.docTypes = append([]string(nil), types...)
		}
	}
}

// WithDateLayout sets the layout used for FromDate and ToDate.
func WithDateLayout(layout string) Option {
	return func(c *Client) {
		if layout != "" {
			c.dateLayout = layout
		}
	}
}

// WithClock replaces time.Now for session expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
