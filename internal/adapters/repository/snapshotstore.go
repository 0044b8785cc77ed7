package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/pipeline"
)

const defaultTopCacheSize = 10

// SnapshotStore keeps the latest snapshot behind an atomic pointer. Reads
// never block; Publish swaps in a fully built snapshot.
type SnapshotStore struct {
	topCacheSize int
	version      atomic.Uint64
	snapshot     atomic.Pointer[Snapshot]
	now          func() time.Time
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{topCacheSize: defaultTopCacheSize, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish ranks res and makes it the current snapshot.
func (s *SnapshotStore) Publish(_ context.Context, r model.DateRange, f model.Filters, res pipeline.Result) *Snapshot {
	employees := append([]model.EnrichedEmployee(nil), res.Employees...)
	pipeline.Order(employees)
	res.Employees = employees

	entries := make([]Entry, len(employees))
	byName := make(map[string]int, len(employees))
	for i, e := range employees {
		entries[i] = Entry{Employee: e}
		byName[e.EmployeeName] = i
	}
	assignRanksWithTies(entries)

	snap := &Snapshot{
		Version:  s.version.Add(1),
		Range:    r,
		Filters:  f,
		Result:   res,
		LoadedAt: s.now(),
		Entries:  entries,
		byName:   byName,
	}
	s.snapshot.Store(snap)
	return snap
}

// Current returns the latest snapshot.
func (s *SnapshotStore) Current(_ context.Context) (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Rank returns the entry for name in the current snapshot.
func (s *SnapshotStore) Rank(ctx context.Context, name string) (Entry, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return Entry{}, err
	}
	i, ok := snap.byName[name]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return snap.Entries[i], nil
}

// TopN returns up to n leading entries.
func (s *SnapshotStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if n > len(snap.Entries) {
		n = len(snap.Entries)
	}
	if n > s.topCacheSize {
		n = s.topCacheSize
	}
	out := make([]Entry, n)
	copy(out, snap.Entries[:n])
	return out, nil
}

// Count returns the number of employees in the current snapshot.
func (s *SnapshotStore) Count(_ context.Context) int {
	snap := s.snapshot.Load()
	if snap == nil {
		return 0
	}
	return len(snap.Entries)
}

// assignRanksWithTies gives equal scores the same rank; the next distinct
// score takes the next consecutive rank. Entries must already be ordered.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Employee.Score() != entries[i-1].Employee.Score() {
			rank++
		}
		entries[i].Rank = rank
	}
}
