// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file, a .env file and env vars.
// - Errors returned by Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RefreshQueueSize bounds the number of pending refresh jobs.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// RateLimitPerMinute caps requests per client IP.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	// AllowedOrigins lists CORS origins for the dashboard front-end.
	AllowedOrigins []string `koanf:"allowed_origins"`

	Sales   SalesConfig   `koanf:"sales"`
	HR      HRConfig      `koanf:"hr"`
	Scoring ScoringConfig `koanf:"scoring"`
}

// SalesConfig configures the BestStore export gateway.
type SalesConfig struct {
	BaseURL         string        `koanf:"base_url"`
	APIVersion      string        `koanf:"api_version"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SessionTTL      time.Duration `koanf:"session_ttl"`
	PollInterval    time.Duration `koanf:"poll_interval"`
	MaxPollAttempts int           `koanf:"max_poll_attempts"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	DocTypes        []string      `koanf:"doc_types"`
	DateLayout      string        `koanf:"date_layout"`
}

// HR sources.
const (
	HRSourceAPI  = "api"
	HRSourceFile = "file"
	HRSourceNone = "none"
)

// HRConfig configures where HR profiles come from.
type HRConfig struct {
	// Source is one of api, file, none.
	Source          string        `koanf:"source"`
	Endpoint        string        `koanf:"endpoint"`
	InstanceCode    string        `koanf:"instance_code"`
	UserID          string        `koanf:"user_id"`
	Password        string        `koanf:"password"`
	ClientID        string        `koanf:"client_id"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	ActiveOnly      bool          `koanf:"active_only"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	CredentialsFile string        `koanf:"credentials_file"`

	// DirectoryFile is the comma-delimited HR export used when Source is file.
	DirectoryFile string `koanf:"directory_file"`
	// AliasFile maps sales names to HR names; may be the same file as DirectoryFile.
	AliasFile string `koanf:"alias_file"`
}

// ScoringConfig tunes the rating engine.
type ScoringConfig struct {
	SalesWeight  float64 `koanf:"sales_weight"`
	GrowthWeight float64 `koanf:"growth_weight"`
	TicketWeight float64 `koanf:"ticket_weight"`
	UPTWeight    float64 `koanf:"upt_weight"`

	// CompareWithPrevious fetches the preceding period of equal length to derive growth.
	CompareWithPrevious bool `koanf:"compare_with_previous"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		RefreshQueueSize:   8,
		RateLimitPerMinute: 200,
		AllowedOrigins:     []string{"*"},
		Sales: SalesConfig{
			BaseURL:         "https://bswebapi.auteldom1.com",
			APIVersion:      "V2.6/api",
			SessionTTL:      time.Hour,
			PollInterval:    5 * time.Second,
			MaxPollAttempts: 120,
			RequestTimeout:  60 * time.Second,
			DocTypes:        []string{"VE", "AR"},
			DateLayout:      "2006-01-02",
		},
		HR: HRConfig{
			Source:         HRSourceNone,
			TokenTTL:       time.Hour,
			ActiveOnly:     true,
			RequestTimeout: 30 * time.Second,
		},
		Scoring: ScoringConfig{
			SalesWeight:  0.40,
			GrowthWeight: 0.30,
			TicketWeight: 0.15,
			UPTWeight:    0.15,
		},
	}
}
