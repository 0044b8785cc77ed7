package ecosagile

import (
	"net/http"
	"time"
)

const (
	defaultTokenTTL = time.Hour
	defaultTimeout  = 30 * time.Second
)

type settings struct {
	http     *http.Client
	tokenTTL time.Duration
	now      func() time.Time
}

func newSettings(opts []Option) settings {
	s := settings{
		http:     &http.Client{Timeout: defaultTimeout},
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a TokenSource or a Caller.
type Option func(*settings)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		if hc != nil {
			s.http = hc
		}
	}
}

// WithTokenTTL sets how long a token is cached.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock replaces time.Now for token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
