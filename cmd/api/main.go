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

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/learnup-app/learnup-api/api/swagger"
	"github.com/learnup-app/learnup-api/internal/handler"
	"github.com/learnup-app/learnup-api/internal/repository"
	"github.com/learnup-app/learnup-api/internal/router"
	"github.com/learnup-app/learnup-api/internal/service"
	"github.com/learnup-app/learnup-api/pkg/cache"
	"github.com/learnup-app/learnup-api/pkg/config"
	"github.com/learnup-app/learnup-api/pkg/database"
	"github.com/learnup-app/learnup-api/pkg/export"
	"github.com/learnup-app/learnup-api/pkg/jobs"
	"github.com/learnup-app/learnup-api/pkg/logger"
	"github.com/learnup-app/learnup-api/pkg/storage"
)

// @title LearnUp API
// @version 1.0
// @description School management REST API: students, teachers, parents, courses, grades, absences, reminders, forum, invoices and notifications.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		zapLogger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close() //nolint:errcheck

	uploadStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		zapLogger.Fatal("failed to prepare upload storage", zap.Error(err))
	}
	invoiceStore, err := storage.NewLocalStorage(cfg.Invoices.StorageDir)
	if err != nil {
		zapLogger.Fatal("failed to prepare invoice storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Invoices.SignedURLSecret, cfg.Invoices.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	parentRepo := repository.NewParentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	forumRepo := repository.NewForumRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, zapLogger, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, zapLogger)
	studentSvc := service.NewStudentService(studentRepo, validate, zapLogger)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, zapLogger)
	parentSvc := service.NewParentService(parentRepo, studentRepo, validate, zapLogger)
	courseSvc := service.NewCourseService(courseRepo, validate, zapLogger)
	noteSvc := service.NewNoteService(noteRepo, validate, zapLogger)
	absenceSvc := service.NewAbsenceService(absenceRepo, validate, zapLogger)
	reminderSvc := service.NewReminderService(reminderRepo, validate, zapLogger)
	forumSvc := service.NewForumService(forumRepo, validate, zapLogger)
	uploadSvc := service.NewUploadService(uploadStore, cfg.Uploads, zapLogger)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, studentRepo, export.NewPDFExporter(), invoiceStore, signer, validate, zapLogger)
	notificationSvc := service.NewNotificationService(
		parentRepo,
		studentRepo,
		noteRepo,
		absenceRepo,
		invoiceRepo,
		redisClient,
		metricsSvc,
		cfg.Notifications,
		zapLogger,
	)

	invoiceQueue := jobs.NewQueue(service.JobInvoicePDF, invoiceSvc.RenderPDF, jobs.QueueConfig{
		Workers:    cfg.Invoices.WorkerConcurrency,
		MaxRetries: cfg.Invoices.WorkerRetries,
		Logger:     zapLogger,
	})
	invoiceSvc.SetQueue(invoiceQueue)
	invoiceQueue.Start(context.Background())
	defer invoiceQueue.Stop()

	engine := router.New(router.Deps{
		Config:  cfg,
		Logger:  zapLogger,
		Auth:    authSvc,
		Metrics: metricsSvc,
		Ready: func() error {
			if err := db.Ping(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		},
		Handlers: router.Handlers{
			Auth:          handler.NewAuthHandler(authSvc),
			Users:         handler.NewUserHandler(userSvc),
			Students:      handler.NewStudentHandler(studentSvc, parentSvc),
			Teachers:      handler.NewTeacherHandler(teacherSvc),
			Parents:       handler.NewParentHandler(parentSvc, studentSvc),
			Courses:       handler.NewCourseHandler(courseSvc, teacherSvc, studentSvc),
			Notes:         handler.NewNoteHandler(noteSvc, parentSvc, studentSvc),
			Absences:      handler.NewAbsenceHandler(absenceSvc, parentSvc, studentSvc),
			Reminders:     handler.NewReminderHandler(reminderSvc, teacherSvc),
			Forum:         handler.NewForumHandler(forumSvc),
			Invoices:      handler.NewInvoiceHandler(invoiceSvc, parentSvc),
			Notifications: handler.NewNotificationHandler(notificationSvc),
			Uploads:       handler.NewUploadHandler(uploadSvc),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("starting server", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
