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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rubrica-dev/rubrica-api/internal/config"
	"github.com/rubrica-dev/rubrica-api/internal/database"
	"github.com/rubrica-dev/rubrica-api/internal/handler"
	"github.com/rubrica-dev/rubrica-api/internal/middleware"
	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/repository"
	"github.com/rubrica-dev/rubrica-api/internal/router"
	"github.com/rubrica-dev/rubrica-api/internal/service"
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
		&models.User{},
		&models.ThesisGroup{},
		&models.GroupMember{},
		&models.DefenseSchedule{},
		&models.SchedulePanelist{},
		&models.RubricTemplate{},
		&models.RubricCriterion{},
		&models.Evaluation{},
		&models.EvaluationScore{},
		&models.StudentEvaluation{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis backs the ranking cache and the notification fanout channel.
	// The service degrades to store-only behaviour without it.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, ranking cache and notification fanout disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	rubricRepo := repository.NewRubricRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	studentEvaluationRepo := repository.NewStudentEvaluationRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	rubricService := service.NewRubricService(rubricRepo, validate, logger)
	aggregationService := service.NewAggregationService(evaluationRepo, scoreRepo, rubricRepo, logger)
	rankingService := service.NewRankingService(groupRepo, evaluationRepo, aggregationService, redisClient, cfg.RankingCacheTTL, logger)
	dispatcher := service.NewNotificationDispatcher(notificationRepo, scheduleRepo, groupRepo, redisClient, cfg.NotificationChannel, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, scheduleRepo, validate, dispatcher, rankingService, logger)
	studentEvaluationService := service.NewStudentEvaluationService(studentEvaluationRepo, validate, logger)
	scoreService := service.NewScoreService(scoreRepo, evaluationRepo, validate, logger)
	groupService := service.NewGroupService(groupRepo, scheduleRepo, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, logger)

	rubricHandler := handler.NewRubricHandler(rubricService, logger)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, scoreService, aggregationService, logger)
	studentEvaluationHandler := handler.NewStudentEvaluationHandler(studentEvaluationService, logger)
	groupHandler := handler.NewGroupHandler(groupService, logger)
	rankingHandler := handler.NewRankingHandler(rankingService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		RubricHandler:            rubricHandler,
		EvaluationHandler:        evaluationHandler,
		StudentEvaluationHandler: studentEvaluationHandler,
		GroupHandler:             groupHandler,
		RankingHandler:           rankingHandler,
		NotificationHandler:      notificationHandler,
		JWTMiddleware:            middleware.JWTProtected(cfg.JWTSecret),
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
