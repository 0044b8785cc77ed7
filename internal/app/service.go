// Package service wires the gateways, the scoring pipeline and the snapshot
// store into the operations the HTTP API and the CLI call.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/salesdash/internal/adapters/beststore"
	"github.com/okian/salesdash/internal/adapters/mq/queue"
	"github.com/okian/salesdash/internal/adapters/mq/worker"
	"github.com/okian/salesdash/internal/adapters/repository"
	"github.com/okian/salesdash/internal/domain/hrdir"
	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/pipeline"
	"github.com/okian/salesdash/internal/domain/scoring"
	"github.com/okian/salesdash/pkg/logger"
	"github.com/okian/salesdash/pkg/metrics"
)

const (
	defaultQueueSize    = 8
	defaultJobRetention = 50
	shutdownTimeout     = 10 * time.Second
)

// Service implements the API dependencies for the sales dashboard.
type Service struct {
	mu sync.RWMutex

	sales  SalesSource
	hr     HRSource
	store  repository.Store
	engine *scoring.Engine
	queue  *queue.InMemoryQueue
	worker *worker.InMemoryWorker

	queueSize           int
	jobRetention        int
	compareWithPrevious bool
	now                 func() time.Time

	jobsMu sync.RWMutex
	jobs   map[string]*Job

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSalesSource sets the sales export gateway.
func WithSalesSource(src SalesSource) Option {
	return func(s *Service) { s.sales = src }
}

// WithHRSource sets the HR directory source. Without one no enrichment
// happens.
func WithHRSource(src HRSource) Option {
	return func(s *Service) { s.hr = src }
}

// WithStore replaces the snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithEngine sets the rating engine.
func WithEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithQueueSize sets the maximum number of pending refreshes.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCompareWithPrevious enables growth against the preceding period for
// every load, not only those that ask for it.
func WithCompareWithPrevious(enabled bool) Option {
	return func(s *Service) { s.compareWithPrevious = enabled }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service.
func New(opts ...Option) *Service {
	s := &Service{
		store:        repository.NewSnapshotStore(),
		engine:       scoring.NewEngine(),
		queueSize:    defaultQueueSize,
		jobRetention: defaultJobRetention,
		now:          time.Now,
		jobs:         make(map[string]*Job),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start launches the refresh worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.worker = worker.NewInMemoryWorker(s.queue, s, worker.WithName("refresh"))
	go s.worker.Run(ctx)

	s.started = true
	s.logger.Info(ctx, "sales dashboard service started",
		logger.Int("queueSize", s.queueSize),
		logger.Bool("hr", s.hr != nil))
	return nil
}

// Stop closes the queue and waits for the running refresh to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.queue.Close()
	if err := s.worker.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker shutdown", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "sales dashboard service stopped")
}

// LoadAndScore fetches the sales export and the HR directory concurrently,
// scores the period and publishes it as the current snapshot. Gateway
// failures abort the load and leave the previous snapshot in place.
func (s *Service) LoadAndScore(ctx context.Context, r model.DateRange, f model.Filters, progress beststore.Progress) (*repository.Snapshot, error) {
	start := time.Now()
	snap, err := s.loadAndScore(ctx, r, f, progress)
	outcome := "ok"
	if err != nil {
		outcome = errorKind(err)
		s.logger.Error(ctx, "load failed", logger.Error(err), logger.String("kind", outcome))
	}
	metrics.RecordRefresh(outcome, time.Since(start))
	return snap, err
}

func (s *Service) loadAndScore(ctx context.Context, r model.DateRange, f model.Filters, progress beststore.Progress) (*repository.Snapshot, error) {
	if s.sales == nil {
		return nil, ErrNoSalesSource
	}
	if err := validRange(r); err != nil {
		return nil, err
	}
	if r.To.IsZero() {
		r.To = r.From
	}
	compare := f.CompareWithPrevious || s.compareWithPrevious

	var (
		rows, previous []model.TransactionRecord
		dir            *hrdir.Directory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.sales.FetchTransactions(gctx, exportRequest(r, f), progress)
		if err != nil || !compare {
			return err
		}
		previous, err = s.sales.FetchTransactions(gctx, exportRequest(r.Previous(), f), nil)
		if err != nil {
			return err
		}
		if previous == nil {
			previous = []model.TransactionRecord{}
		}
		return nil
	})
	if s.hr != nil {
		g.Go(func() error {
			var err error
			dir, err = s.hr.Load(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res, err := pipeline.Score(ctx, pipeline.Input{
		Rows:      rows,
		Previous:  previous,
		Directory: dir,
		Now:       s.now(),
		Engine:    s.engine,
	})
	if err != nil {
		return nil, err
	}
	f.CompareWithPrevious = compare
	snap := s.store.Publish(ctx, r, f, res)
	s.logger.Info(ctx, "snapshot published",
		logger.Int("version", int(snap.Version)),
		logger.Int("employees", len(res.Employees)),
		logger.Int("rows", len(rows)))
	return snap, nil
}

// ScoreRows scores rows that are already in hand, such as a local export
// file, and publishes the result.
func (s *Service) ScoreRows(ctx context.Context, rows []model.TransactionRecord, dir *hrdir.Directory) (*repository.Snapshot, error) {
	res, err := pipeline.Score(ctx, pipeline.Input{Rows: rows, Directory: dir, Now: s.now(), Engine: s.engine})
	if err != nil {
		return nil, err
	}
	return s.store.Publish(ctx, model.DateRange{}, model.Filters{}, res), nil
}

// Current returns the latest snapshot.
func (s *Service) Current(ctx context.Context) (*repository.Snapshot, error) {
	return s.store.Current(ctx)
}

// Rank returns the ranking entry of one employee.
func (s *Service) Rank(ctx context.Context, name string) (repository.Entry, error) {
	return s.store.Rank(ctx, name)
}

// TopN returns the leading entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.store.TopN(ctx, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":   s.started,
		"queueSize": s.queueSize,
		"employees": s.store.Count(ctx),
		"hrSource":  s.hr != nil,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	if snap, err := s.store.Current(ctx); err == nil {
		stats["snapshotVersion"] = snap.Version
		stats["loadedAt"] = snap.LoadedAt
		stats["range"] = snap.Range
	}
	s.jobsMu.RLock()
	stats["jobs"] = len(s.jobs)
	s.jobsMu.RUnlock()
	return stats
}

func exportRequest(r model.DateRange, f model.Filters) beststore.ExportRequest {
	return beststore.ExportRequest{From: r.From, To: r.To, Stores: f.Stores, DocTypes: f.DocTypes}
}

// errorKind labels an error for metrics and logs.
func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrAuthentication):
		return "auth_failed"
	case errors.Is(err, model.ErrExportTimeout):
		return "export_timeout"
	case errors.Is(err, model.ErrRemoteAPI):
		return "remote_error"
	case errors.Is(err, model.ErrParse):
		return "parse_failed"
	case errors.Is(err, model.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
