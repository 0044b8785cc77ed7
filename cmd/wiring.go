package main

import (
	"fmt"
	"net/http"

	"github.com/okian/salesdash/internal/adapters/beststore"
	"github.com/okian/salesdash/internal/adapters/ecosagile"
	app "github.com/okian/salesdash/internal/app"
	"github.com/okian/salesdash/internal/config"
	"github.com/okian/salesdash/internal/domain/scoring"
)

// salesClient builds the BestStore gateway from configuration.
func salesClient(cfg config.SalesConfig) *beststore.Client {
	return beststore.New(cfg.BaseURL, cfg.APIVersion, cfg.Username, cfg.Password,
		beststore.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		beststore.WithSessionTTL(cfg.SessionTTL),
		beststore.WithPollInterval(cfg.PollInterval),
		beststore.WithMaxAttempts(cfg.MaxPollAttempts),
		beststore.WithDocTypes(cfg.DocTypes),
		beststore.WithDateLayout(cfg.DateLayout),
	)
}

// hrCredentials prefers inline configuration and falls back to the saved
// credentials file.
func hrCredentials(cfg config.HRConfig) (ecosagile.Credentials, error) {
	creds := ecosagile.Credentials{
		Endpoint:     cfg.Endpoint,
		InstanceCode: cfg.InstanceCode,
		UserID:       cfg.UserID,
		Password:     cfg.Password,
		ClientID:     cfg.ClientID,
	}
	err := creds.Validate()
	if err == nil || cfg.CredentialsFile == "" {
		return creds, err
	}
	return ecosagile.LoadCredentials(cfg.CredentialsFile)
}

// hrSource builds the HR directory source selected by configuration. It
// returns nil when HR enrichment is disabled.
func hrSource(cfg config.HRConfig) (app.HRSource, error) {
	switch cfg.Source {
	case config.HRSourceAPI:
		creds, err := hrCredentials(cfg)
		if err != nil {
			return nil, fmt.Errorf("hr credentials: %w", err)
		}
		opts := []ecosagile.Option{
			ecosagile.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
			ecosagile.WithTokenTTL(cfg.TokenTTL),
		}
		tokens, err := ecosagile.NewTokenSource(creds, opts...)
		if err != nil {
			return nil, err
		}
		dir := ecosagile.NewDirectory(ecosagile.NewCaller(creds, tokens, opts...))
		return app.APIHRSource{Lister: dir, ActiveOnly: cfg.ActiveOnly, AliasFile: cfg.AliasFile}, nil
	case config.HRSourceFile:
		return app.FileHRSource{DirectoryFile: cfg.DirectoryFile, AliasFile: cfg.AliasFile}, nil
	default:
		return nil, nil
	}
}

func engine(cfg config.ScoringConfig) *scoring.Engine {
	return scoring.NewEngine(scoring.WithWeights(scoring.Weights{
		Sales:  cfg.SalesWeight,
		Growth: cfg.GrowthWeight,
		Ticket: cfg.TicketWeight,
		UPT:    cfg.UPTWeight,
	}))
}

// newService assembles the application service.
func newService(cfg *config.Config) (*app.Service, error) {
	hr, err := hrSource(cfg.HR)
	if err != nil {
		return nil, err
	}
	opts := []app.Option{
		app.WithSalesSource(salesClient(cfg.Sales)),
		app.WithEngine(engine(cfg.Scoring)),
		app.WithQueueSize(cfg.RefreshQueueSize),
		app.WithCompareWithPrevious(cfg.Scoring.CompareWithPrevious),
	}
	if hr != nil {
		opts = append(opts, app.WithHRSource(hr))
	}
	return app.New(opts...), nil
}
