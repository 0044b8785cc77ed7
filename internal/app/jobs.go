package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/pkg/logger"
)

// Job is the externally visible state of one refresh request.
type Job struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	Stage           string          `json:"stage,omitempty"`
	Progress        float64         `json:"progress"`
	Error           string          `json:"error,omitempty"`
	Range           model.DateRange `json:"range"`
	Filters         model.Filters   `json:"filters"`
	SubmittedAt     time.Time       `json:"submittedAt"`
	StartedAt       *time.Time      `json:"startedAt,omitempty"`
	FinishedAt      *time.Time      `json:"finishedAt,omitempty"`
	SnapshotVersion uint64          `json:"snapshotVersion,omitempty"`

	err error
}

// Err returns the failure cause of a failed job.
func (j Job) Err() error { return j.err }

// Submit queues a refresh. A full queue yields ErrQueueFull.
func (s *Service) Submit(ctx context.Context, r model.DateRange, f model.Filters) (Job, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return Job{}, ErrNotStarted
	}
	if err := validRange(r); err != nil {
		return Job{}, err
	}

	job := &Job{
		ID:          uuid.NewString(),
		Status:      model.JobQueued,
		Range:       r,
		Filters:     f,
		SubmittedAt: s.now(),
	}
	s.jobsMu.Lock()
	s.jobs[job.ID] = job
	s.pruneJobsLocked()
	s.jobsMu.Unlock()

	req := model.RefreshRequest{JobID: job.ID, Range: r, Filters: f, SubmittedAt: job.SubmittedAt}
	if !s.queue.Enqueue(ctx, req) {
		s.jobsMu.Lock()
		delete(s.jobs, job.ID)
		s.jobsMu.Unlock()
		return Job{}, ErrQueueFull
	}
	s.logger.Info(ctx, "refresh queued", logger.String("job", job.ID))
	return *job, nil
}

// Job returns a copy of the job state.
func (s *Service) Job(_ context.Context, id string) (Job, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *j, nil
}

// Process runs one queued refresh. It is called by the worker.
func (s *Service) Process(ctx context.Context, req model.RefreshRequest) error {
	s.updateJob(req.JobID, func(j *Job) {
		now := s.now()
		j.Status = model.JobRunning
		j.StartedAt = &now
	})

	snap, err := s.LoadAndScore(ctx, req.Range, req.Filters, func(stage string, pct float64) {
		s.updateJob(req.JobID, func(j *Job) {
			j.Stage = stage
			if pct > j.Progress {
				j.Progress = pct
			}
		})
	})

	s.updateJob(req.JobID, func(j *Job) {
		now := s.now()
		j.FinishedAt = &now
		if err != nil {
			j.Status = model.JobFailed
			j.Error = err.Error()
			j.err = err
			return
		}
		j.Status = model.JobSucceeded
		j.Stage = "done"
		j.Progress = 100
		j.SnapshotVersion = snap.Version
	})
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

func (s *Service) updateJob(id string, fn func(*Job)) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if j, ok := s.jobs[id]; ok {
		fn(j)
	}
}

// pruneJobsLocked drops the oldest finished jobs beyond the retention limit.
func (s *Service) pruneJobsLocked() {
	if len(s.jobs) <= s.jobRetention {
		return
	}
	var oldest *Job
	for _, j := range s.jobs {
		if j.FinishedAt == nil {
			continue
		}
		if oldest == nil || j.SubmittedAt.Before(oldest.SubmittedAt) {
			oldest = j
		}
	}
	if oldest != nil {
		delete(s.jobs, oldest.ID)
	}
}

func validRange(r model.DateRange) error {
	if r.From.IsZero() {
		return fmt.Errorf("%w: missing start date", ErrInvalidRange)
	}
	if !r.To.IsZero() && r.To.Before(r.From) {
		return fmt.Errorf("%w: end before start", ErrInvalidRange)
	}
	return nil
}
