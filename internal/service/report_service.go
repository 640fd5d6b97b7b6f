package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/allocation"
	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/models"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
	"github.com/noah-isme/seatplan-api/pkg/export"
	"github.com/noah-isme/seatplan-api/pkg/storage"
)

type weekReader interface {
	GetWeek(ctx context.Context, week string) (*dto.WeekPlan, error)
}

type snapshotReader interface {
	Snapshot(ctx context.Context) (*models.DataFile, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ReportConfig tunes report publishing.
type ReportConfig struct {
	APIPrefix string
	Retention time.Duration
}

// RenderedReport is a generated file ready to be sent.
type RenderedReport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService renders week plans as PDF or CSV and publishes them behind signed links.
type ReportService struct {
	weeks     weekReader
	documents snapshotReader
	storage   fileStorage
	signer    *storage.SignedURLSigner
	csv       csvRenderer
	pdf       pdfRenderer
	cfg       ReportConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(weeks weekReader, documents snapshotReader, files fileStorage, signer *storage.SignedURLSigner, cfg ReportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{
		weeks:     weeks,
		documents: documents,
		storage:   files,
		signer:    signer,
		csv:       csv,
		pdf:       pdf,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// WeekPDF renders the seating plan of a planned week.
func (s *ReportService) WeekPDF(ctx context.Context, week string) (*RenderedReport, error) {
	plan, df, err := s.load(ctx, week)
	if err != nil {
		return nil, err
	}
	doc := export.Document{
		Title:       fmt.Sprintf("Seating plan week %s", week),
		GeneratedAt: s.now(),
	}
	lookup := newPlanLookup(df)
	for _, day := range models.Weekdays {
		data := export.Dataset{Headers: []string{"Seat", "Student", "Room"}}
		for _, a := range plan.Assignments[day] {
			seat, student, room := lookup.describe(a)
			data.Append(seat, student, room)
		}
		doc.Sections = append(doc.Sections, export.Section{
			Heading:   models.WeekdayLabel(day),
			Data:      data,
			EmptyText: "No assignments for this day",
		})
	}
	doc.Sections = append(doc.Sections, export.Section{Heading: "Statistics", Data: statisticsDataset(plan.Statistics)})

	body, err := s.pdf.Render(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return &RenderedReport{Filename: reportFilename(week, "pdf"), ContentType: "application/pdf", Body: body}, nil
}

// WeekCSV exports the assignments of a planned week, one row per student-day.
func (s *ReportService) WeekCSV(ctx context.Context, week string) (*RenderedReport, error) {
	plan, df, err := s.load(ctx, week)
	if err != nil {
		return nil, err
	}
	lookup := newPlanLookup(df)
	data := export.Dataset{Headers: []string{"Week", "Day", "Seat ID", "Seat", "Room", "Student ID", "Student"}}
	for _, day := range models.Weekdays {
		for _, a := range plan.Assignments[day] {
			seat, student, room := lookup.describe(a)
			data.Append(week, day, a.SeatID, seat, room, a.StudentID, student)
		}
	}
	body, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return &RenderedReport{Filename: reportFilename(week, "csv"), ContentType: "text/csv", Body: body}, nil
}

// Publish stores the week PDF and returns a signed download link.
func (s *ReportService) Publish(ctx context.Context, actor, week string) (*dto.PublishedReport, error) {
	if s.signer == nil || s.storage == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "report publishing is not configured")
	}
	report, err := s.WeekPDF(ctx, week)
	if err != nil {
		return nil, err
	}
	stamp := s.now().UTC().Format("20060102_150405")
	name := path.Join(week, strings.TrimSuffix(report.Filename, ".pdf")+"_"+stamp+".pdf")
	relPath, err := s.storage.Save(name, report.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}
	token, expiresAt, err := s.signer.Sign(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report link")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("report published", zap.String("week", week), zap.String("file", relPath), zap.String("actor", actor))
	return &dto.PublishedReport{
		Week:      week,
		File:      relPath,
		URL:       fmt.Sprintf("%s/downloads/%s", prefix, token),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// OpenDownload resolves a signed token to the stored file.
func (s *ReportService) OpenDownload(token string) (*os.File, string, error) {
	if s.signer == nil || s.storage == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	relPath, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report")
	}
	return file, path.Base(relPath), nil
}

// Cleanup removes published reports older than the retention period.
func (s *ReportService) Cleanup(ctx context.Context) ([]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deleted, err := s.storage.CleanupOlderThan(s.cfg.Retention)
	if err != nil {
		return deleted, err
	}
	if len(deleted) > 0 {
		s.logger.Info("published reports removed", zap.Int("count", len(deleted)))
	}
	return deleted, nil
}

func (s *ReportService) load(ctx context.Context, week string) (*dto.WeekPlan, *models.DataFile, error) {
	plan, err := s.weeks.GetWeek(ctx, week)
	if err != nil {
		return nil, nil, err
	}
	df, err := s.documents.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	return plan, df, nil
}

type planLookup struct {
	students map[string]models.Student
	seats    map[string]models.Seat
	rooms    map[string]models.Room
}

func newPlanLookup(df *models.DataFile) planLookup {
	l := planLookup{
		students: make(map[string]models.Student, len(df.Students)),
		seats:    make(map[string]models.Seat, len(df.Floorplan.Seats)),
		rooms:    make(map[string]models.Room, len(df.Floorplan.Rooms)),
	}
	for _, st := range df.Students {
		l.students[st.ID] = st
	}
	for _, seat := range df.Floorplan.Seats {
		l.seats[seat.ID] = seat
	}
	for _, room := range df.Floorplan.Rooms {
		l.rooms[room.ID] = room
	}
	return l
}

// describe renders display names, falling back to ids for records that no longer exist.
func (l planLookup) describe(a models.Assignment) (seat, student, room string) {
	student = "ID: " + a.StudentID
	if st, ok := l.students[a.StudentID]; ok {
		student = st.Name
	}
	seat = "ID: " + a.SeatID
	room = "N/A"
	if st, ok := l.seats[a.SeatID]; ok {
		seat = st.DisplayName()
		room = st.RoomID
		if r, ok := l.rooms[st.RoomID]; ok {
			room = r.Name
		}
	}
	return seat, student, room
}

func statisticsDataset(stats allocation.Statistics) export.Dataset {
	data := export.Dataset{Headers: []string{"Metric", "Value"}}
	data.Append("Total assignments", fmt.Sprintf("%d", stats.TotalAssignments))
	data.Append("Conflicts", fmt.Sprintf("%d", stats.TotalConflicts))
	data.Append("Occupancy", fmt.Sprintf("%.1f%%", stats.OccupancyRate))
	data.Append("Days with conflicts", fmt.Sprintf("%d", stats.DaysWithConflicts))
	data.Append("Conflict rate", fmt.Sprintf("%.1f%%", stats.ConflictRate))
	data.Append("Students", fmt.Sprintf("%d", stats.TotalStudents))
	data.Append("Seats", fmt.Sprintf("%d", stats.TotalSeats))
	return data
}

func reportFilename(week, ext string) string {
	return fmt.Sprintf("seatplan_%s.%s", week, ext)
}
