// Package main provides the main entry point for the AetherInc waitlist and admin API
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aetherinc/aether-waitlist/app/handlers"
	"github.com/aetherinc/aether-waitlist/app/middleware"
	"github.com/aetherinc/aether-waitlist/app/router"
	"github.com/aetherinc/aether-waitlist/app/services"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/config"
	_ "github.com/aetherinc/aether-waitlist/docs"
	"github.com/aetherinc/aether-waitlist/repository"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.Config
	server    *fiber.App
	logger    *zap.Logger
	stopFuncs []func()
}

// @title AetherInc API
// @version 1.0
// @description Waitlist, tool catalog, analytics, contact, chat and admin dashboard API.
// @BasePath /
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := utils.NewLogger(utils.LoggerOptions{
		Level:      cfg.Logging.Level,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
		Caller:     cfg.Logging.Caller,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting AetherInc API",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version))

	app, err := initializeApplication(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-sigChan
	logger.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}

	for _, fn := range app.stopFuncs {
		fn()
	}

	logger.Info("server stopped")
}

// initializeCache initializes the redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig, logger *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis connection established", zap.Int("db", cfg.RedisDB))
	return rc, nil
}

// initializeDatabase opens the store and brings the schema up to date
func initializeDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	db, err := repository.OpenDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		_ = repository.CloseDatabase(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, func() {
		if err := repository.CloseDatabase(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	})

	rc, err := initializeCache(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	var revocations services.RevocationStore = services.NewMemoryRevocationStore()
	if rc != nil {
		revocations = services.NewRedisRevocationStore(rc, cfg.Cache.RedisPrefix)
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
	}

	// Repositories
	waitlistRepo := repository.NewWaitlistRepository(db)
	toolRepo := repository.NewToolRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	contactRepo := repository.NewContactFormRepository(db)
	terminalChatRepo := repository.NewTerminalChatRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	tokenService, err := services.NewTokenService(
		cfg.Session.TTL,
		cfg.Session.Issuer,
		cfg.Session.Audience,
		cfg.Session.Secret,
		revocations,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	var captchaSvc services.CaptchaService
	if cfg.Captcha.Enabled {
		captchaSvc, err = services.NewCaptchaServiceRotate(cfg.Captcha.TTL, cfg.Captcha.Padding, cfg.Captcha.ImageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize captcha: %w", err)
		}
		stopFuncs = append(stopFuncs, captchaSvc.Close)
	}

	mailer := services.NewEmailServiceFromConfig(cfg.Email)
	chatProvider := services.NewChatProviderFromConfig(cfg.AI)
	logger.Info("services initialized",
		zap.String("email_provider", mailer.Provider()),
		zap.String("chat_provider", chatProvider.Name()),
		zap.Bool("captcha", captchaSvc != nil),
		zap.Bool("redis", rc != nil))

	// Flows
	waitlistFlow := businessflow.NewWaitlistFlow(waitlistRepo)
	toolFlow := businessflow.NewToolFlow(toolRepo, db)
	analyticsFlow := businessflow.NewAnalyticsFlow(analyticsRepo)
	contactFlow := businessflow.NewContactFlow(contactRepo, mailer, cfg.Email.AdminEmail)
	chatFlow := businessflow.NewChatFlow(chatProvider, terminalChatRepo, cfg.AI.SystemPrompt)
	terminalChatFlow := businessflow.NewTerminalChatFlow(terminalChatRepo)
	adminAuthFlow := businessflow.NewAdminAuthFlow(userRepo, tokenService, captchaSvc)

	gate := middleware.NewAdminGate(adminAuthFlow, cfg.Session.CookieName)

	appRouter := router.NewFiberRouter(cfg, router.Handlers{
		Waitlist:  handlers.NewWaitlistHandler(waitlistFlow),
		Tools:     handlers.NewToolHandler(toolFlow),
		Analytics: handlers.NewAnalyticsHandler(analyticsFlow),
		Contact:   handlers.NewContactHandler(contactFlow),
		Chat:      handlers.NewChatHandler(chatFlow, terminalChatFlow),
		Auth: handlers.NewAuthHandler(adminAuthFlow, gate, handlers.SessionCookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		}),
		Health: handlers.NewHealthHandler(db, rc, cfg.App.Version),
	}, gate, logger)

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		logger:    logger,
		stopFuncs: stopFuncs,
	}, nil
}
