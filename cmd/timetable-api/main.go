package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/schoolware/timetable-api/api/swagger"
	"github.com/schoolware/timetable-api/internal/handler"
	"github.com/schoolware/timetable-api/internal/middleware"
	"github.com/schoolware/timetable-api/internal/repository"
	"github.com/schoolware/timetable-api/internal/service"
	"github.com/schoolware/timetable-api/pkg/cache"
	"github.com/schoolware/timetable-api/pkg/config"
	"github.com/schoolware/timetable-api/pkg/database"
	"github.com/schoolware/timetable-api/pkg/logger"
	corsmiddleware "github.com/schoolware/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/schoolware/timetable-api/pkg/middleware/requestid"
)

// @title School Timetable API
// @version 1.0.0
// @description Timetable generation and school operations service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, timetable caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()

	calendarRepo := repository.NewCalendarRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	termRepo := repository.NewTermRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:            cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		RefreshExpiry:     cfg.JWT.RefreshExpiration,
	})
	calendarSvc := service.NewCalendarService(calendarRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	termSvc := service.NewTermService(termRepo, validate, logr)
	allocationSvc := service.NewAllocationService(allocationRepo, termRepo, validate, logr)
	timetableSvc := service.NewTimetableService(
		termRepo, calendarRepo, allocationRepo, teacherRepo, roomRepo, timetableRepo,
		service.NewMeteredCache(cacheRepo, metricsSvc),
		validate, logr,
		service.TimetableServiceConfig{Seed: cfg.Scheduler.Seed, CacheTTL: cfg.Cache.TTL},
	)
	assessmentSvc := service.NewAssessmentService(
		assessmentRepo, termRepo, calendarRepo, teacherRepo, roomRepo,
		validate, logr,
		service.AssessmentServiceConfig{
			CASittingsPerClassPerDay: cfg.Scheduler.CASittingsPerClassPerDay,
			Seed:                     cfg.Scheduler.Seed,
		},
	)
	exportSvc := service.NewExportService(timetableRepo, assessmentRepo, nil, nil, cfg.Export.SchoolName, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	classHandler := handler.NewClassHandler(classSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	termHandler := handler.NewTermHandler(termSvc)
	allocationHandler := handler.NewAllocationHandler(allocationSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc, metricsSvc)
	assessmentHandler := handler.NewAssessmentHandler(assessmentSvc, exportSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)
	authed.PUT("/auth/password", authHandler.ChangePassword)

	authed.GET("/system/metrics", metricsHandler.Snapshot)

	authed.GET("/calendar/days", calendarHandler.ListSchoolDays)
	authed.GET("/calendar/slots", calendarHandler.ListTimeSlots)
	authed.GET("/calendar/breaks", calendarHandler.ListBreakPeriods)
	authed.GET("/teachers", teacherHandler.List)
	authed.GET("/teachers/:id", teacherHandler.Get)
	authed.GET("/teachers/:id/availability", teacherHandler.ListAvailability)
	authed.GET("/classes", classHandler.List)
	authed.GET("/classes/:id", classHandler.Get)
	authed.GET("/subjects", subjectHandler.List)
	authed.GET("/subjects/:id", subjectHandler.Get)
	authed.GET("/rooms", roomHandler.List)
	authed.GET("/rooms/:id", roomHandler.Get)
	authed.GET("/academic-years", termHandler.ListAcademicYears)
	authed.GET("/academic-years/active", termHandler.GetActiveAcademicYear)
	authed.GET("/terms", termHandler.ListTerms)
	authed.GET("/terms/:id", termHandler.GetTerm)
	authed.GET("/allocations", allocationHandler.List)
	authed.GET("/allocations/:id", allocationHandler.Get)
	authed.GET("/timetable", timetableHandler.List)
	authed.GET("/timetable/conflicts", timetableHandler.Conflicts)
	authed.GET("/timetable/export", timetableHandler.Export)
	authed.GET("/assessments/sessions", assessmentHandler.ListSessions)
	authed.GET("/assessments/sessions/:id", assessmentHandler.GetSession)
	authed.GET("/assessments/sessions/:id/subjects", assessmentHandler.ListSubjects)
	authed.GET("/assessments/sessions/:id/entries", assessmentHandler.ListEntries)
	authed.GET("/assessments/sessions/:id/conflicts", assessmentHandler.Conflicts)
	authed.GET("/assessments/sessions/:id/export", assessmentHandler.Export)

	// Mutations are restricted to scheduling staff.
	staff := authed.Group("", middleware.RequireRoles("admin", "scheduler"))
	staff.POST("/calendar/days", calendarHandler.CreateSchoolDay)
	staff.PUT("/calendar/days/:id", calendarHandler.UpdateSchoolDay)
	staff.DELETE("/calendar/days/:id", calendarHandler.DeleteSchoolDay)
	staff.POST("/calendar/slots", calendarHandler.CreateTimeSlot)
	staff.PUT("/calendar/slots/:id", calendarHandler.UpdateTimeSlot)
	staff.DELETE("/calendar/slots/:id", calendarHandler.DeleteTimeSlot)
	staff.POST("/calendar/breaks", calendarHandler.CreateBreakPeriod)
	staff.DELETE("/calendar/breaks/:id", calendarHandler.DeleteBreakPeriod)
	staff.POST("/teachers", teacherHandler.Create)
	staff.PUT("/teachers/:id", teacherHandler.Update)
	staff.DELETE("/teachers/:id", teacherHandler.Delete)
	staff.PUT("/teachers/:id/availability", teacherHandler.ReplaceAvailability)
	staff.POST("/classes", classHandler.Create)
	staff.PUT("/classes/:id", classHandler.Update)
	staff.DELETE("/classes/:id", classHandler.Delete)
	staff.POST("/subjects", subjectHandler.Create)
	staff.PUT("/subjects/:id", subjectHandler.Update)
	staff.DELETE("/subjects/:id", subjectHandler.Delete)
	staff.POST("/rooms", roomHandler.Create)
	staff.PUT("/rooms/:id", roomHandler.Update)
	staff.DELETE("/rooms/:id", roomHandler.Delete)
	staff.POST("/academic-years", termHandler.CreateAcademicYear)
	staff.PUT("/academic-years/:id", termHandler.UpdateAcademicYear)
	staff.POST("/terms", termHandler.CreateTerm)
	staff.PUT("/terms/:id", termHandler.UpdateTerm)
	staff.DELETE("/terms/:id", termHandler.DeleteTerm)
	staff.POST("/allocations", allocationHandler.Create)
	staff.PUT("/allocations/:id", allocationHandler.Update)
	staff.DELETE("/allocations/:id", allocationHandler.Delete)
	staff.POST("/timetable/generate", timetableHandler.Generate)
	staff.POST("/timetable/swap", timetableHandler.Swap)
	staff.POST("/timetable/entries/:id/move", timetableHandler.Move)
	staff.POST("/assessments/sessions", assessmentHandler.CreateSession)
	staff.DELETE("/assessments/sessions/:id", assessmentHandler.DeleteSession)
	staff.POST("/assessments/sessions/:id/subjects", assessmentHandler.RegisterSubject)
	staff.DELETE("/assessments/subjects/:subjectId", assessmentHandler.RemoveSubject)
	staff.POST("/assessments/sessions/:id/generate", assessmentHandler.Generate)
	staff.POST("/assessments/entries/swap", assessmentHandler.Swap)
	staff.POST("/assessments/entries/:id/move", assessmentHandler.Move)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
