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
	"gorm.io/gorm"

	"github.com/noah-isme/solutionsheet-api/internal/config"
	"github.com/noah-isme/solutionsheet-api/internal/database"
	"github.com/noah-isme/solutionsheet-api/internal/handler"
	"github.com/noah-isme/solutionsheet-api/internal/i18n"
	"github.com/noah-isme/solutionsheet-api/internal/middleware"
	"github.com/noah-isme/solutionsheet-api/internal/plugin"
	"github.com/noah-isme/solutionsheet-api/internal/render"
	"github.com/noah-isme/solutionsheet-api/internal/repository"
	"github.com/noah-isme/solutionsheet-api/internal/router"
	"github.com/noah-isme/solutionsheet-api/internal/service"
	cloud "github.com/noah-isme/solutionsheet-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("%v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer database.DrainNATS(natsConn, logger)
	}

	var storage service.FileStorage
	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("cloudinary disabled, file uploads will be rejected")
	} else {
		storage = uploader
	}

	catalog, err := i18n.Load()
	if err != nil {
		log.Fatalf("failed to load message catalogs: %v", err)
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		log.Fatalf("failed to parse templates: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	configRepo := repository.NewPluginConfigRepository(db)
	fileRepo := repository.NewSolutionFileRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	var uploads service.UploadService
	if storage != nil {
		uploads = service.NewUploadService(storage, cfg.UploadMaxMB, logger)
	}

	assignmentService := service.NewAssignmentService(assignmentRepo, validate, storage, logger)
	activityService := service.NewActivityService(activityRepo, validate, logger)
	publisher := service.NewReleasePublisher(redisClient, natsConn, cfg.EventChannel, logger)
	solutionService := service.NewSolutionSheetService(service.SolutionSheetDependencies{
		Configs:   configRepo,
		Files:     fileRepo,
		Uploads:   uploads,
		Activity:  activityService,
		Publisher: publisher,
		Cache:     redisClient,
		Catalog:   catalog,
		Renderer:  renderer,
		Validator: validate,
	}, service.SolutionSheetOptions{
		AllowImmediateForNew: cfg.AllowImmediateForNew,
		ConfigCacheTTL:       cfg.ConfigCacheTTL,
		Location:             cfg.DisplayLocation,
	}, logger)

	registry := plugin.NewRegistry()
	if err := registry.Register(solutionService); err != nil {
		log.Fatalf("failed to register plugin: %v", err)
	}

	assignmentHandler := handler.NewAssignmentHandler(assignmentService, validate, logger)
	solutionSheetHandler := handler.NewSolutionSheetHandler(
		assignmentService,
		registry,
		solutionService,
		activityService,
		catalog,
		validate,
		handler.SolutionSheetOptions{
			DefaultLocale:     cfg.DefaultLocale,
			VisibilityLimiter: middleware.RateLimit("solutionsheet-visibility", cfg.VisibilityRateMax, cfg.VisibilityRateWindow),
		},
		logger,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    cfg.UploadMaxMB * 8 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler:    assignmentHandler,
		SolutionSheetHandler: solutionSheetHandler,
		HealthProbes:         healthProbes(db, redisClient, natsConn),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}
	if natsConn != nil {
		probes["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}
	return probes
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
