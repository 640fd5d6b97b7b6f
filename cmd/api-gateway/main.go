package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/seatplan-api/api/swagger"
	"github.com/noah-isme/seatplan-api/internal/handler"
	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/repository"
	"github.com/noah-isme/seatplan-api/internal/service"
	"github.com/noah-isme/seatplan-api/pkg/cache"
	"github.com/noah-isme/seatplan-api/pkg/config"
	"github.com/noah-isme/seatplan-api/pkg/database"
	"github.com/noah-isme/seatplan-api/pkg/export"
	"github.com/noah-isme/seatplan-api/pkg/jobs"
	"github.com/noah-isme/seatplan-api/pkg/logger"
	"github.com/noah-isme/seatplan-api/pkg/storage"
)

// @title Seat Plan API
// @version 1.0.0
// @description Weekly seat assignment planning for shared rooms
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise application", "error", err)
	}
	defer app.close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, logr, app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "data_dir", cfg.Data.Dir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

type application struct {
	metrics   *service.MetricsService
	auth      *service.AuthService
	workspace *service.Workspace
	locks     *service.LockService
	floorplan *service.FloorplanService
	students  *service.StudentService
	planning  *service.PlanningService
	reports   *service.ReportService
	backups   *service.BackupService
	checks    map[string]handler.ReadinessCheck

	queue     *jobs.Queue
	cacheRepo *repository.CacheRepository
	db        *sqlx.DB
	logger    *zap.Logger
}

func buildApp(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*application, error) {
	dataStore, err := storage.NewLocalStorage(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	reportStore, err := storage.NewLocalStorage(cfg.Reports.Dir)
	if err != nil {
		return nil, fmt.Errorf("reports dir: %w", err)
	}

	app := &application{logger: logr, checks: map[string]handler.ReadinessCheck{}}
	app.metrics = service.NewMetricsService()
	validate := validator.New()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}
	app.cacheRepo = repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(app.cacheRepo, app.metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	if cfg.Cache.Enabled {
		app.checks["redis"] = app.cacheRepo.Ping
	}

	if cfg.History.Enabled {
		app.db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := database.Migrate(ctx, app.db); err != nil {
			return nil, err
		}
		app.checks["postgres"] = app.db.PingContext
	}

	app.queue = jobs.NewQueue("seatplan", jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.Retries,
		Logger:     logr,
	})

	dataRepo := repository.NewDataFileRepository(dataStore, logr)
	app.locks = service.NewLockService(repository.NewLockRepository(dataStore, cfg.Lock.Timeout, logr), logr)
	history := service.NewHistoryService(cfg.Undo.MaxStates, logr)
	app.workspace = service.NewWorkspace(dataRepo, app.locks, history, cacheSvc, logr)
	app.checks["data_file"] = func(ctx context.Context) error {
		_, err := app.workspace.Snapshot(ctx)
		return err
	}

	runs := newRunHistory(app.db, app.queue, app.metrics, logr)
	app.floorplan = service.NewFloorplanService(app.workspace, validate, logr)
	app.students = service.NewStudentService(app.workspace, validate, logr)
	app.planning = service.NewPlanningService(app.workspace, cacheSvc, runs, app.metrics, logr)
	app.reports = service.NewReportService(
		app.planning,
		app.workspace,
		reportStore,
		storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL),
		service.ReportConfig{APIPrefix: cfg.APIPrefix, Retention: cfg.Reports.Retention},
		logr,
		&export.CSVExporter{Comma: cfg.Reports.CSVDelimiter, BOM: cfg.Reports.CSVBOM},
		export.NewPDFExporter(),
	)
	app.backups = service.NewBackupService(dataRepo, app.workspace, app.locks, app.reports, app.queue, app.metrics, service.BackupConfig{
		Enabled:                cfg.Data.BackupEnabled,
		Schedule:               cfg.Data.BackupSchedule,
		Keep:                   cfg.Data.BackupKeep,
		LockSweepSchedule:      cfg.Lock.SweepSchedule,
		ReportsCleanupSchedule: cfg.Reports.CleanupSchedule,
	}, logr)

	app.auth = service.NewAuthService(accountsFromConfig(cfg.Auth), validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "seatplan-api",
	})
	if len(cfg.Auth.Accounts) == 0 {
		logr.Warn("no accounts configured; set ADMIN_PASSWORD_HASH to enable login")
	}

	app.queue.Start(ctx)
	if err := app.backups.Start(); err != nil {
		app.queue.Stop()
		return nil, fmt.Errorf("backup scheduler: %w", err)
	}
	return app, nil
}

// newRunHistory keeps the repository argument an untyped nil when postgres is disabled.
func newRunHistory(db *sqlx.DB, queue *jobs.Queue, metrics *service.MetricsService, logr *zap.Logger) *service.RunHistoryService {
	if db == nil {
		return service.NewRunHistoryService(nil, queue, metrics, logr)
	}
	return service.NewRunHistoryService(repository.NewAssignmentRunRepository(db), queue, metrics, logr)
}

func accountsFromConfig(cfg config.AuthConfig) []models.Account {
	accounts := make([]models.Account, 0, len(cfg.Accounts))
	for _, acc := range cfg.Accounts {
		accounts = append(accounts, models.Account{
			Username:     acc.Username,
			PasswordHash: acc.PasswordHash,
			Role:         models.UserRole(acc.Role),
		})
	}
	return accounts
}

func (a *application) close() {
	a.backups.Stop()
	a.queue.Stop()
	if err := a.cacheRepo.Close(); err != nil {
		a.logger.Warn("closing redis failed", zap.Error(err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("closing postgres failed", zap.Error(err))
		}
	}
}
