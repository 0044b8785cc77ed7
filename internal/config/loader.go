package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "SALESDASH_"
	envConfigFile = "SALESDASH_CONFIG"
	weightEpsilon = 1e-9
)

// list-valued keys accept comma-separated env values.
var listKeys = map[string]bool{
	"allowed_origins": true,
	"sales.doc_types": true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SALESDASH_CONFIG is set
//  3. .env in the working directory (never overrides real env vars)
//  4. env (prefix SALESDASH_, "__" separates nested keys)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	_ = godotenv.Load()

	// SALESDASH_SALES__POLL_INTERVAL -> sales.poll_interval
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		if key == envConfigFile {
			return "", nil
		}
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RefreshQueueSize < 1:
		return fmt.Errorf("%w: refresh_queue_size must be positive", ErrInvalidConfig)
	case c.Sales.MaxPollAttempts < 1:
		return fmt.Errorf("%w: sales.max_poll_attempts must be positive", ErrInvalidConfig)
	case c.Sales.PollInterval < 0:
		return fmt.Errorf("%w: sales.poll_interval must not be negative", ErrInvalidConfig)
	}

	switch c.HR.Source {
	case HRSourceAPI, HRSourceFile, HRSourceNone:
	default:
		return fmt.Errorf("%w: hr.source must be api, file or none, got %q", ErrInvalidConfig, c.HR.Source)
	}
	if c.HR.Source == HRSourceFile && c.HR.DirectoryFile == "" {
		return fmt.Errorf("%w: hr.directory_file is required when hr.source is file", ErrInvalidConfig)
	}

	s := c.Scoring
	for _, w := range []float64{s.SalesWeight, s.GrowthWeight, s.TicketWeight, s.UPTWeight} {
		if w < 0 {
			return fmt.Errorf("%w: scoring weights must not be negative", ErrInvalidConfig)
		}
	}
	if sum := s.SalesWeight + s.GrowthWeight + s.TicketWeight + s.UPTWeight; math.Abs(sum-1) > weightEpsilon {
		return fmt.Errorf("%w: scoring weights must sum to 1, got %g", ErrInvalidConfig, sum)
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
