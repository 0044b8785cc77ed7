package service

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/salesdash/internal/adapters/beststore"
	"github.com/okian/salesdash/internal/adapters/ecosagile"
	"github.com/okian/salesdash/internal/domain/hrdir"
	"github.com/okian/salesdash/internal/domain/model"
)

// SalesSource yields the raw transaction rows for a period.
type SalesSource interface {
	FetchTransactions(ctx context.Context, req beststore.ExportRequest, progress beststore.Progress) ([]model.TransactionRecord, error)
}

// HRSource builds the HR directory used for enrichment.
type HRSource interface {
	Load(ctx context.Context) (*hrdir.Directory, error)
}

// EmployeeLister is the part of the HR gateway the service needs.
type EmployeeLister interface {
	ActiveEmployees(ctx context.Context) ([]model.HRProfile, error)
	AllEmployees(ctx context.Context) ([]model.HRProfile, error)
}

// APIHRSource loads profiles from the HR API and aliases from a local file.
type APIHRSource struct {
	Lister     EmployeeLister
	ActiveOnly bool
	AliasFile  string
}

// Load fetches the people registry.
func (s APIHRSource) Load(ctx context.Context) (*hrdir.Directory, error) {
	var (
		profiles []model.HRProfile
		err      error
	)
	if s.ActiveOnly {
		profiles, err = s.Lister.ActiveEmployees(ctx)
	} else {
		profiles, err = s.Lister.AllEmployees(ctx)
	}
	if err != nil {
		return nil, err
	}
	aliases, err := loadAliases(s.AliasFile)
	if err != nil {
		return nil, err
	}
	return hrdir.New(profiles, aliases), nil
}

// FileHRSource loads profiles and aliases from a local HR export.
type FileHRSource struct {
	DirectoryFile string
	AliasFile     string
}

// Load parses the HR export on every call so edits are picked up.
func (s FileHRSource) Load(_ context.Context) (*hrdir.Directory, error) {
	f, err := os.Open(s.DirectoryFile)
	if err != nil {
		return nil, fmt.Errorf("open hr file: %w", err)
	}
	defer f.Close()

	profiles, aliases, err := hrdir.ParseFile(f)
	if err != nil {
		return nil, err
	}
	extra, err := loadAliases(s.AliasFile)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		aliases[k] = v
	}
	return hrdir.New(profiles, aliases), nil
}

func loadAliases(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alias file: %w", err)
	}
	defer f.Close()

	_, aliases, err := hrdir.ParseFile(f)
	if err != nil {
		return nil, fmt.Errorf("alias file: %w", err)
	}
	return aliases, nil
}

var (
	_ SalesSource    = (*beststore.Client)(nil)
	_ EmployeeLister = (*ecosagile.Directory)(nil)
)
