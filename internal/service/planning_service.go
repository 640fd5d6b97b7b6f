package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/allocation"
	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/validation"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
)

const (
	cacheKindStatistics = "stats"
	cacheKindValidation = "validation"
)

// PlanningService runs the weekly assignment engine against the stored document.
type PlanningService struct {
	workspace *Workspace
	cache     *CacheService
	runs      *RunHistoryService
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewPlanningService constructs a PlanningService.
func NewPlanningService(workspace *Workspace, cache *CacheService, runs *RunHistoryService, metrics *MetricsService, logger *zap.Logger) *PlanningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanningService{workspace: workspace, cache: cache, runs: runs, metrics: metrics, logger: logger, now: time.Now}
}

// CurrentWeek returns the ISO week containing today.
func (s *PlanningService) CurrentWeek() string {
	return allocation.CurrentWeek(s.now())
}

// AutoAssign plans week from scratch, using the same weekdays of the previous week for continuity,
// and stores the result.
func (s *PlanningService) AutoAssign(ctx context.Context, actor, week string) (*dto.WeekPlan, error) {
	previous, warnings, err := s.previousWeek(week)
	if err != nil {
		return nil, err
	}

	var (
		result   allocation.WeekResult
		stats    allocation.Statistics
		duration time.Duration
	)
	_, err = s.workspace.Mutate(ctx, actor, func(df *models.DataFile) error {
		start := time.Now()
		result = allocation.AssignWeek(df.Students, df.Floorplan.Seats, week, df.AssignmentsForWeek(previous))
		duration = time.Since(start)
		stats = result.Statistics(df.Students, df.Floorplan.Seats)
		df.SetWeek(week, result.Assignments)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveAssignmentRun(week, stats.TotalConflicts, stats.OccupancyRate, duration)
	s.logger.Info("week assigned",
		zap.String("week", week),
		zap.String("previous_week", previous),
		zap.String("actor", actor),
		zap.Int("assignments", stats.TotalAssignments),
		zap.Int("conflicts", stats.TotalConflicts),
		zap.Duration("duration", duration),
	)

	run := &models.AssignmentRun{
		Week:              week,
		PreviousWeek:      previous,
		TotalAssignments:  stats.TotalAssignments,
		TotalConflicts:    stats.TotalConflicts,
		OccupancyRate:     stats.OccupancyRate,
		ConflictRate:      stats.ConflictRate,
		DaysWithConflicts: stats.DaysWithConflicts,
		CreatedBy:         actor,
	}
	if err := s.runs.Record(ctx, run); err != nil {
		s.logger.Warn("assignment run not recorded", zap.String("week", week), zap.Error(err))
	}

	return &dto.WeekPlan{
		Week:         week,
		PreviousWeek: previous,
		Assignments:  result.Assignments,
		Conflicts:    result.Conflicts,
		Statistics:   stats,
		Warnings:     warnings,
	}, nil
}

// GetWeek returns the stored plan of a week with its unseated students.
func (s *PlanningService) GetWeek(ctx context.Context, week string) (*dto.WeekPlan, error) {
	if _, _, err := allocation.ParseWeek(week); err != nil {
		return nil, invalidWeek(err)
	}
	df, err := s.workspace.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	result, err := storedWeek(df, week)
	if err != nil {
		return nil, err
	}
	return &dto.WeekPlan{
		Week:        week,
		Assignments: result.Assignments,
		Conflicts:   result.Conflicts,
		Statistics:  result.Statistics(df.Students, df.Floorplan.Seats),
	}, nil
}

// ClearWeek removes all stored assignments of a week.
func (s *PlanningService) ClearWeek(ctx context.Context, actor, week string) (*dto.ClearWeekResult, error) {
	if _, _, err := allocation.ParseWeek(week); err != nil {
		return nil, invalidWeek(err)
	}
	cleared := false
	_, err := s.workspace.Mutate(ctx, actor, func(df *models.DataFile) error {
		cleared = df.ClearWeek(week)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("week cleared", zap.String("week", week), zap.Bool("cleared", cleared), zap.String("actor", actor))
	return &dto.ClearWeekResult{Week: week, Cleared: cleared}, nil
}

// Statistics summarises a stored week. The boolean reports a cache hit.
func (s *PlanningService) Statistics(ctx context.Context, week string) (*allocation.Statistics, bool, error) {
	if _, _, err := allocation.ParseWeek(week); err != nil {
		return nil, false, invalidWeek(err)
	}
	df, err := s.workspace.Snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	key, keyErr := SnapshotKey(cacheKindStatistics, week, df)
	if keyErr == nil {
		var cached allocation.Statistics
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, true, nil
		}
	}

	result, err := storedWeek(df, week)
	if err != nil {
		return nil, false, err
	}
	stats := result.Statistics(df.Students, df.Floorplan.Seats)
	if keyErr == nil {
		_ = s.cache.Set(ctx, key, stats, 0)
	}
	return &stats, false, nil
}

// Validate checks the document and, when week is given, that week's assignments.
// The boolean reports a cache hit.
func (s *PlanningService) Validate(ctx context.Context, week string) (*validation.Report, bool, error) {
	if week != "" {
		if _, _, err := allocation.ParseWeek(week); err != nil {
			return nil, false, invalidWeek(err)
		}
	}
	df, err := s.workspace.Snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	scope := week
	if scope == "" {
		scope = "all"
	}
	key, keyErr := SnapshotKey(cacheKindValidation, scope, df)
	if keyErr == nil {
		var cached validation.Report
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, true, nil
		}
	}

	report := validation.BuildReport(validation.SnapshotFromDataFile(df, week))
	if !report.Valid {
		s.logger.Info("validation found problems",
			zap.String("week", week),
			zap.Int("room_overlaps", len(report.RoomOverlaps)),
			zap.Int("invalid_seats", len(report.InvalidSeats)),
			zap.Int("invalid_date_ranges", len(report.InvalidDateRanges)),
			zap.Int("assignment_conflicts", len(report.AssignmentConflicts)),
		)
	}
	if keyErr == nil {
		_ = s.cache.Set(ctx, key, report, 0)
	}
	return &report, false, nil
}

// Runs lists recorded assignment runs of a week.
func (s *PlanningService) Runs(ctx context.Context, week string, limit int) ([]models.AssignmentRun, error) {
	if _, _, err := allocation.ParseWeek(week); err != nil {
		return nil, invalidWeek(err)
	}
	return s.runs.List(ctx, week, limit)
}

func (s *PlanningService) previousWeek(week string) (string, []string, error) {
	previous, err := allocation.PreviousWeek(week)
	if err != nil {
		return "", nil, invalidWeek(err)
	}
	var warnings []string
	year, num, _ := allocation.ParseWeek(week)
	if num == 1 && allocation.HasISOWeek53(year-1) {
		msg := fmt.Sprintf("%d has an ISO week 53; continuity is taken from %s", year-1, previous)
		s.logger.Warn("previous week skips ISO week 53", zap.String("week", week), zap.String("previous_week", previous))
		warnings = append(warnings, msg)
	}
	return previous, warnings, nil
}

func storedWeek(df *models.DataFile, week string) (allocation.WeekResult, error) {
	byDay := df.AssignmentsForWeek(week)
	if byDay == nil {
		return allocation.WeekResult{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("week %s has not been planned", week))
	}
	return allocation.Reconcile(week, byDay, df.Students), nil
}

func invalidWeek(err error) error {
	if errors.Is(err, allocation.ErrInvalidWeek) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "week must look like 2025-W43")
	}
	return err
}
