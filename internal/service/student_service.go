package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/validation"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
)

// StudentService manages the student roster.
type StudentService struct {
	workspace *Workspace
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(workspace *Workspace, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{workspace: workspace, validator: validate, logger: logger}
}

// List returns students sorted by name, optionally filtered by name, attendance day and requirement tag.
func (s *StudentService) List(ctx context.Context, filter dto.StudentFilter) ([]models.Student, error) {
	df, err := s.workspace.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	day := strings.ToLower(strings.TrimSpace(filter.Day))
	if day != "" && !models.IsWeekday(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", filter.Day))
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	requirement := strings.TrimSpace(filter.Requirement)

	result := make([]models.Student, 0, len(df.Students))
	for _, student := range df.Students {
		if search != "" && !strings.Contains(strings.ToLower(student.Name), search) {
			continue
		}
		if day != "" && !student.IsAvailableOn(day) {
			continue
		}
		if requirement != "" && !student.HasRequirement(requirement) {
			continue
		}
		result = append(result, student)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	df, err := s.workspace.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	idx := df.FindStudent(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	student := df.Students[idx]
	return &student, nil
}

// Upsert creates or replaces a student.
func (s *StudentService) Upsert(ctx context.Context, actor, id string, req dto.StudentRequest) (*models.Student, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := buildStudent(id, req)
	if err != nil {
		return nil, err
	}

	_, err = s.workspace.Mutate(ctx, actor, func(df *models.DataFile) error {
		if idx := df.FindStudent(id); idx >= 0 {
			df.Students[idx] = student
		} else {
			df.Students = append(df.Students, student)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("student saved", zap.String("student_id", id), zap.String("actor", actor))
	return &student, nil
}

// Delete removes a student. Stored assignments of past weeks are kept.
func (s *StudentService) Delete(ctx context.Context, actor, id string) error {
	_, err := s.workspace.Mutate(ctx, actor, func(df *models.DataFile) error {
		idx := df.FindStudent(id)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		df.Students = append(df.Students[:idx], df.Students[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("student deleted", zap.String("student_id", id), zap.String("actor", actor))
	return nil
}

func buildStudent(id string, req dto.StudentRequest) (models.Student, error) {
	pattern := req.WeeklyPattern
	if pattern == nil {
		pattern = models.DefaultWeeklyPattern()
	}
	normalized := make(map[string]bool, len(models.Weekdays))
	for day, attends := range pattern {
		key := strings.ToLower(day)
		if !models.IsWeekday(key) {
			return models.Student{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q in weekly_pattern", day))
		}
		normalized[key] = attends
	}
	for _, day := range models.Weekdays {
		if _, ok := normalized[day]; !ok {
			normalized[day] = false
		}
	}

	student := models.Student{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		WeeklyPattern: normalized,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		Requirements:  req.Requirements,
	}
	if student.ValidFrom == "" {
		student.ValidFrom = models.DefaultValidFrom
	}
	if student.ValidUntil == "" {
		student.ValidUntil = models.ValidUntilOngoing
	}
	if student.Requirements == nil {
		student.Requirements = []string{}
	}
	if ok, issue := validation.StudentDateRange(student); !ok {
		return models.Student{}, appErrors.Clone(appErrors.ErrValidation, issue.Message)
	}
	return student, nil
}
