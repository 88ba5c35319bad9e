package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lexia-go-api/internal/config"
	"github.com/noah-isme/lexia-go-api/internal/database"
	"github.com/noah-isme/lexia-go-api/internal/handler"
	"github.com/noah-isme/lexia-go-api/internal/middleware"
	"github.com/noah-isme/lexia-go-api/internal/models"
	"github.com/noah-isme/lexia-go-api/internal/repository"
	"github.com/noah-isme/lexia-go-api/internal/router"
	"github.com/noah-isme/lexia-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Activity{},
		&models.Submission{},
		&models.Evaluation{},
		&models.Mistake{},
		&models.Feedback{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	random := service.NewSystemRandomSource()
	if cfg.RandomSeed != 0 {
		random = service.NewSeededRandomSource(cfg.RandomSeed)
	}

	studentRepo := repository.NewStudentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	mistakeRepo := repository.NewMistakeRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	submissionService := service.NewSubmissionService(submissionRepo, studentRepo, activityRepo, validate, logger)
	scoringService := service.NewScoringService(random, logger)
	mistakeDetector := service.NewMistakeDetector(mistakeRepo, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, "lexia", natsConn, logger)
	evaluationService := service.NewEvaluationService(
		submissionRepo,
		activityRepo,
		evaluationRepo,
		feedbackRepo,
		scoringService,
		mistakeDetector,
		feedbackService,
		notificationService,
		redisClient,
		validate,
		logger,
		service.EvaluationConfig{
			BatchWorkers: cfg.BatchWorkers,
			CacheTTL:     cfg.EvaluationCacheTTL,
		},
	)

	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, cfg.BatchLimit, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler:   submissionHandler,
		EvaluationHandler:   evaluationHandler,
		FeedbackHandler:     feedbackHandler,
		NotificationHandler: notificationHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
