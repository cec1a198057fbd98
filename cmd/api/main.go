package main

import (
	"context"
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

	"github.com/noah-isme/code-quest-api/internal/config"
	"github.com/noah-isme/code-quest-api/internal/database"
	"github.com/noah-isme/code-quest-api/internal/handler"
	"github.com/noah-isme/code-quest-api/internal/middleware"
	"github.com/noah-isme/code-quest-api/internal/repository"
	"github.com/noah-isme/code-quest-api/internal/router"
	"github.com/noah-isme/code-quest-api/internal/service"
	"github.com/noah-isme/code-quest-api/pkg/piston"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.AppEnv == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := database.ConnectPostgresWithRetry(context.Background(), cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, cfg.AppEnv == "development", cfg.DBConnectTimeout, func(err error, wait time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", wait).Msg("database not ready")
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = database.ConnectRedis(pingCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, catalog cache disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, grade events disabled")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	dispatcher, err := piston.NewClient(piston.Config{
		URL:            cfg.PistonURL,
		CompileTimeout: cfg.CompileTimeout,
		RunTimeout:     cfg.RunTimeout,
		RunMemoryLimit: cfg.RunMemoryLimit,
		HTTPTimeout:    cfg.PistonHTTPTimeout,
		Retries:        cfg.PistonRetries,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create execution client")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	questionRepo := repository.NewQuestionRepository(db)
	testCaseRepo := repository.NewTestCaseRepository(db)
	userRepo := repository.NewUserRepository(db)
	solutionRepo := repository.NewSolutionRepository(db)

	questionService := service.NewQuestionService(questionRepo, testCaseRepo, redisClient, cfg.CatalogCacheTTL, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	solutionStore := service.NewSolutionStore(userRepo, solutionRepo, logger)
	gradingService := service.NewGradingService(
		questionRepo,
		testCaseRepo,
		solutionStore,
		dispatcher,
		service.NewNATSGradePublisher(natsConn, cfg.NATSSubject),
		validate,
		service.GradingDefaults{Language: cfg.DefaultLanguage, Version: cfg.DefaultVersion},
		logger,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		// Grading runs every test case sequentially, so allow for slow submissions.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AppEnv != "production",
	})
	router.Register(app, cfg, router.Dependencies{
		QuestionHandler: handler.NewQuestionHandler(questionService, logger),
		SolutionHandler: handler.NewSolutionHandler(gradingService, solutionStore, logger),
		AuthHandler:     handler.NewAuthHandler(userService, logger),
		HealthProbes:    healthProbes(db, redisClient, natsConn),
		SubmitRateLimit: cfg.SubmitRateLimit,
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("starting server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		probes["nats"] = func(ctx context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}
	return probes
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
