// Command seatplan runs the weekly seat assignment over a data directory without starting the
// API server. Nothing is written back to the data file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/seatplan-api/internal/allocation"
	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/repository"
	"github.com/noah-isme/seatplan-api/internal/validation"
	"github.com/noah-isme/seatplan-api/pkg/storage"
)

type output struct {
	dto.WeekPlan `yaml:",inline"`
	Validation   *validation.Report `json:"validation,omitempty" yaml:"validation,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "seatplan:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("seatplan", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	dataDir := fs.StringP("data", "d", "./data", "directory containing data.json")
	week := fs.StringP("week", "w", "", "ISO week to plan, e.g. 2025-W43 (defaults to the current week)")
	format := fs.StringP("format", "f", "json", "output format: json or yaml")
	withReport := fs.Bool("validate", false, "include the validation report of the planned week")
	verbose := fs.BoolP("verbose", "v", false, "log progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "json" && *format != "yaml" {
		return fmt.Errorf("unknown format %q", *format)
	}

	logr := newLogger(stderr, *verbose)
	defer logr.Sync() //nolint:errcheck

	if *week == "" {
		*week = allocation.CurrentWeek(time.Now())
	}
	year, num, err := allocation.ParseWeek(*week)
	if err != nil {
		return err
	}
	previous, err := allocation.PreviousWeek(*week)
	if err != nil {
		return err
	}

	info, err := os.Stat(*dataDir)
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory: %s is not a directory", *dataDir)
	}
	store, err := storage.NewLocalStorage(*dataDir)
	if err != nil {
		return err
	}
	df, err := repository.NewDataFileRepository(store, logr).Load(context.Background())
	if err != nil {
		return err
	}
	logr.Info("document loaded",
		zap.Int("rooms", len(df.Floorplan.Rooms)),
		zap.Int("seats", len(df.Floorplan.Seats)),
		zap.Int("students", len(df.Students)),
	)

	start := time.Now()
	result := allocation.AssignWeek(df.Students, df.Floorplan.Seats, *week, df.AssignmentsForWeek(previous))
	logr.Info("week assigned", zap.String("week", *week), zap.String("previous_week", previous), zap.Duration("duration", time.Since(start)))

	out := output{WeekPlan: dto.WeekPlan{
		Week:         *week,
		PreviousWeek: previous,
		Assignments:  result.Assignments,
		Conflicts:    result.Conflicts,
		Statistics:   result.Statistics(df.Students, df.Floorplan.Seats),
	}}
	if num == 1 && allocation.HasISOWeek53(year-1) {
		logr.Warn("previous week skips ISO week 53", zap.String("week", *week), zap.String("previous_week", previous))
		out.Warnings = append(out.Warnings, fmt.Sprintf("%d has an ISO week 53; continuity is taken from %s", year-1, previous))
	}
	if *withReport {
		planned := df.Clone()
		planned.SetWeek(*week, result.Assignments)
		report := validation.BuildReport(validation.SnapshotFromDataFile(planned, *week))
		out.Validation = &report
	}

	return write(stdout, *format, out)
}

func write(w io.Writer, format string, out output) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.InfoLevel
	}
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}
