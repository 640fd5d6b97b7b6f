package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/handler"
	"github.com/noah-isme/seatplan-api/internal/middleware"
	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/pkg/config"
	"github.com/noah-isme/seatplan-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/seatplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/seatplan-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger, app *application) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(app.metrics, app.checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(app.auth)
	floorplanHandler := handler.NewFloorplanHandler(app.floorplan)
	studentHandler := handler.NewStudentHandler(app.students)
	planningHandler := handler.NewPlanningHandler(app.planning)
	reportHandler := handler.NewReportHandler(app.reports)
	workspaceHandler := handler.NewWorkspaceHandler(app.workspace)
	lockHandler := handler.NewLockHandler(app.locks)
	backupHandler := handler.NewBackupHandler(app.backups)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	// Signed tokens authorise downloads on their own.
	api.GET("/downloads/:token", reportHandler.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(app.auth))
	readers := secured.Group("")
	readers.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleViewer))
	writers := secured.Group("")
	writers.Use(middleware.RequireRoles(models.RoleAdmin))

	readers.GET("/auth/me", authHandler.Me)
	readers.GET("/document", workspaceHandler.Document)
	readers.GET("/validation", planningHandler.ValidateAll)
	readers.GET("/metrics/summary", metricsHandler.Summary)

	readers.GET("/floorplan", floorplanHandler.Get)
	readers.GET("/floorplan/rooms", floorplanHandler.ListRooms)
	readers.GET("/floorplan/rooms/:id", floorplanHandler.GetRoom)
	writers.PUT("/floorplan/rooms/:id", floorplanHandler.PutRoom)
	writers.DELETE("/floorplan/rooms/:id", floorplanHandler.DeleteRoom)
	writers.PUT("/floorplan/seats/:id", floorplanHandler.PutSeat)
	writers.DELETE("/floorplan/seats/:id", floorplanHandler.DeleteSeat)

	readers.GET("/students", studentHandler.List)
	readers.GET("/students/:id", studentHandler.Get)
	writers.PUT("/students/:id", studentHandler.Put)
	writers.DELETE("/students/:id", studentHandler.Delete)

	readers.GET("/weeks/current", planningHandler.CurrentWeek)
	readers.GET("/weeks/:week", planningHandler.GetWeek)
	readers.GET("/weeks/:week/statistics", planningHandler.Statistics)
	readers.GET("/weeks/:week/validation", planningHandler.ValidateWeek)
	readers.GET("/weeks/:week/runs", planningHandler.Runs)
	readers.GET("/weeks/:week/report.pdf", reportHandler.WeekPDF)
	readers.GET("/weeks/:week/export.csv", reportHandler.WeekCSV)
	writers.POST("/weeks/:week/assign", planningHandler.Assign)
	writers.POST("/weeks/:week/publish", reportHandler.Publish)
	writers.DELETE("/weeks/:week", planningHandler.ClearWeek)

	readers.GET("/history", workspaceHandler.History)
	writers.POST("/history/undo", workspaceHandler.Undo)
	writers.POST("/history/redo", workspaceHandler.Redo)

	readers.GET("/lock", lockHandler.Status)
	writers.POST("/lock", lockHandler.Acquire)
	writers.DELETE("/lock", lockHandler.Release)

	readers.GET("/backups", backupHandler.List)
	writers.POST("/backups", backupHandler.Create)
	writers.POST("/backups/:name/restore", backupHandler.Restore)

	return r
}
