package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/repository"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
	"github.com/noah-isme/seatplan-api/pkg/jobs"
	"github.com/noah-isme/seatplan-api/pkg/storage"
)

// JobTypePruneBackups trims the backup directory in the background.
const JobTypePruneBackups = "prune_backups"

const scheduledTaskTimeout = 2 * time.Minute

type backupRepository interface {
	Backup(ctx context.Context) (string, error)
	ListBackups(ctx context.Context) ([]storage.FileInfo, error)
	ReadBackup(ctx context.Context, name string) (*models.DataFile, error)
	PruneBackups(ctx context.Context, keep int) ([]string, error)
}

type documentReplacer interface {
	Snapshot(ctx context.Context) (*models.DataFile, error)
	Replace(ctx context.Context, actor string, df *models.DataFile) error
}

type staleLockSweeper interface {
	SweepStale(ctx context.Context) error
}

type reportCleaner interface {
	Cleanup(ctx context.Context) ([]string, error)
}

// BackupConfig schedules the periodic tasks.
type BackupConfig struct {
	Enabled                bool
	Schedule               string
	Keep                   int
	LockSweepSchedule      string
	ReportsCleanupSchedule string
}

// BackupService creates, lists and restores backups and runs the periodic maintenance tasks.
type BackupService struct {
	repo      backupRepository
	documents documentReplacer
	locks     staleLockSweeper
	reports   reportCleaner
	queue     jobQueue
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       BackupConfig

	mu              sync.Mutex
	cron            *cron.Cron
	lastFingerprint uint64
}

// NewBackupService wires the backup repository with its collaborators. The prune job handler is
// registered on queue when one is given.
func NewBackupService(repo backupRepository, documents documentReplacer, locks staleLockSweeper, reports reportCleaner, queue jobQueue, metrics *MetricsService, cfg BackupConfig, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 10
	}
	svc := &BackupService{repo: repo, documents: documents, locks: locks, reports: reports, queue: queue, metrics: metrics, logger: logger, cfg: cfg}
	if queue != nil {
		queue.Register(JobTypePruneBackups, svc.handlePrune)
	}
	return svc
}

// Create backs up the current document and schedules pruning.
func (s *BackupService) Create(ctx context.Context, actor string) (string, error) {
	name, err := s.repo.Backup(ctx)
	s.metrics.RecordBackup(err == nil && name != "")
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create backup")
	}
	if name == "" {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no data file to back up yet")
	}
	s.logger.Info("backup created", zap.String("backup", name), zap.String("actor", actor))
	s.schedulePrune(ctx)
	return name, nil
}

// List returns backups newest first.
func (s *BackupService) List(ctx context.Context) ([]storage.FileInfo, error) {
	files, err := s.repo.ListBackups(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list backups")
	}
	return files, nil
}

// Restore replaces the live document with a backup. The live document is backed up first.
func (s *BackupService) Restore(ctx context.Context, actor, name string) (*models.DataFile, error) {
	df, err := s.repo.ReadBackup(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBackupNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("backup %s not found", name))
		case errors.Is(err, repository.ErrCorruptDataFile):
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "backup is corrupt")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read backup")
		}
	}
	if err := s.documents.Replace(ctx, actor, df); err != nil {
		return nil, err
	}
	s.logger.Info("backup restored", zap.String("backup", name), zap.String("actor", actor))
	return df, nil
}

// Start registers the cron entries and starts the scheduler.
func (s *BackupService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	if s.cfg.Enabled && s.cfg.Schedule != "" {
		if _, err := c.AddFunc(s.cfg.Schedule, s.task("auto backup", s.AutoBackup)); err != nil {
			return fmt.Errorf("schedule backups: %w", err)
		}
	}
	if s.locks != nil && s.cfg.LockSweepSchedule != "" {
		if _, err := c.AddFunc(s.cfg.LockSweepSchedule, s.task("stale lock sweep", s.locks.SweepStale)); err != nil {
			return fmt.Errorf("schedule stale lock sweep: %w", err)
		}
	}
	if s.reports != nil && s.cfg.ReportsCleanupSchedule != "" {
		cleanup := func(ctx context.Context) error {
			_, err := s.reports.Cleanup(ctx)
			return err
		}
		if _, err := c.AddFunc(s.cfg.ReportsCleanupSchedule, s.task("reports cleanup", cleanup)); err != nil {
			return fmt.Errorf("schedule reports cleanup: %w", err)
		}
	}

	c.Start()
	s.cron = c
	s.logger.Info("maintenance scheduler started", zap.Int("entries", len(c.Entries())))
	return nil
}

// Stop halts the scheduler and waits for running tasks.
func (s *BackupService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("maintenance scheduler stopped")
}

// AutoBackup backs up the document when it changed since the last automatic backup.
func (s *BackupService) AutoBackup(ctx context.Context) error {
	df, err := s.documents.Snapshot(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(df)
	if err != nil {
		return fmt.Errorf("fingerprint document: %w", err)
	}
	fingerprint := xxh3.Hash(payload)

	s.mu.Lock()
	unchanged := fingerprint == s.lastFingerprint
	s.mu.Unlock()
	if unchanged {
		s.logger.Debug("document unchanged, skipping backup")
		return nil
	}

	name, err := s.repo.Backup(ctx)
	s.metrics.RecordBackup(err == nil && name != "")
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lastFingerprint = fingerprint
	s.mu.Unlock()
	if name != "" {
		s.logger.Info("automatic backup created", zap.String("backup", name))
		s.schedulePrune(ctx)
	}
	return nil
}

func (s *BackupService) schedulePrune(ctx context.Context) {
	if s.queue != nil {
		err := s.queue.Enqueue(jobs.Job{ID: fmt.Sprintf("prune-%d", time.Now().UnixNano()), Type: JobTypePruneBackups, Payload: s.cfg.Keep})
		if err == nil {
			return
		}
		s.logger.Warn("prune job not queued, pruning inline", zap.Error(err))
	}
	if _, err := s.prune(ctx, s.cfg.Keep); err != nil {
		s.logger.Warn("backup pruning failed", zap.Error(err))
	}
}

func (s *BackupService) handlePrune(ctx context.Context, job jobs.Job) error {
	keep, ok := job.Payload.(int)
	if !ok {
		keep = s.cfg.Keep
	}
	_, err := s.prune(ctx, keep)
	return err
}

func (s *BackupService) prune(ctx context.Context, keep int) ([]string, error) {
	deleted, err := s.repo.PruneBackups(ctx, keep)
	if len(deleted) > 0 {
		s.logger.Info("old backups removed", zap.Strings("backups", deleted))
	}
	return deleted, err
}

func (s *BackupService) task(name string, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), scheduledTaskTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Warn("scheduled task failed", zap.String("task", name), zap.Error(err))
		}
	}
}
