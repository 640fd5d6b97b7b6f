package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/models"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
	"github.com/noah-isme/seatplan-api/pkg/jobs"
)

// JobTypeRecordRun persists an assignment run in the background.
const JobTypeRecordRun = "record_assignment_run"

type assignmentRunStore interface {
	Create(ctx context.Context, run *models.AssignmentRun) error
	ListByWeek(ctx context.Context, week string, limit int) ([]models.AssignmentRun, error)
}

type jobQueue interface {
	Register(jobType string, handler jobs.Handler)
	Enqueue(job jobs.Job) error
}

// RunHistoryService keeps an audit trail of automatic assignment runs in Postgres.
type RunHistoryService struct {
	repo    assignmentRunStore
	queue   jobQueue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewRunHistoryService constructs the service. A nil repo disables history; a nil queue stores
// runs synchronously.
func NewRunHistoryService(repo assignmentRunStore, queue jobQueue, metrics *MetricsService, logger *zap.Logger) *RunHistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &RunHistoryService{repo: repo, queue: queue, metrics: metrics, logger: logger}
	if repo != nil && queue != nil {
		queue.Register(JobTypeRecordRun, svc.handleRecord)
	}
	return svc
}

// Enabled reports whether runs are recorded.
func (s *RunHistoryService) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record stores run, through the job queue when one is configured.
func (s *RunHistoryService) Record(ctx context.Context, run *models.AssignmentRun) error {
	if !s.Enabled() {
		return nil
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if s.queue == nil {
		return s.store(ctx, run)
	}
	if err := s.queue.Enqueue(jobs.Job{ID: run.ID, Type: JobTypeRecordRun, Payload: run}); err != nil {
		s.logger.Warn("run history enqueue failed, storing inline", zap.String("run_id", run.ID), zap.Error(err))
		return s.store(ctx, run)
	}
	return nil
}

// List returns the most recent runs of a week.
func (s *RunHistoryService) List(ctx context.Context, week string, limit int) ([]models.AssignmentRun, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "run history is disabled")
	}
	start := time.Now()
	runs, err := s.repo.ListByWeek(ctx, week, limit)
	s.metrics.ObserveDBQuery("assignment_runs_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignment runs")
	}
	return runs, nil
}

func (s *RunHistoryService) handleRecord(ctx context.Context, job jobs.Job) error {
	run, ok := job.Payload.(*models.AssignmentRun)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	return s.store(ctx, run)
}

func (s *RunHistoryService) store(ctx context.Context, run *models.AssignmentRun) error {
	start := time.Now()
	err := s.repo.Create(ctx, run)
	s.metrics.ObserveDBQuery("assignment_runs_insert", time.Since(start))
	if err != nil {
		s.logger.Warn("failed to record assignment run", zap.String("run_id", run.ID), zap.Error(err))
		return err
	}
	s.logger.Debug("assignment run recorded", zap.String("run_id", run.ID), zap.String("week", run.Week))
	return nil
}
