// Package repository holds the latest scored period and answers ranking
// queries against it.
package repository

import (
	"context"
	"time"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/pipeline"
)

// Entry is one ranked employee.
type Entry struct {
	Rank     int                    `json:"rank"`
	Employee model.EnrichedEmployee `json:"employee"`
}

// Snapshot is an immutable scored period.
type Snapshot struct {
	Version  uint64          `json:"version"`
	Range    model.DateRange `json:"range"`
	Filters  model.Filters   `json:"filters"`
	Result   pipeline.Result `json:"result"`
	LoadedAt time.Time       `json:"loadedAt"`
	Entries  []Entry         `json:"-"`
	byName   map[string]int
}

// Store provides read/write access to the ranking state.
type Store interface {
	// Publish replaces the current snapshot.
	Publish(ctx context.Context, r model.DateRange, f model.Filters, res pipeline.Result) *Snapshot

	// Current returns the latest snapshot or ErrNoSnapshot.
	Current(ctx context.Context) (*Snapshot, error)

	// Rank returns the rank of an employee by exact name.
	// Returns ErrNotFound if the employee is unknown.
	Rank(ctx context.Context, name string) (Entry, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of employees in the current snapshot.
	Count(ctx context.Context) int
}
