// main.go - API server entry point
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"muslimlife/config"
	"muslimlife/database"
	"muslimlife/handlers"
	"muslimlife/handlers/admin"
	"muslimlife/importer"
	"muslimlife/logging"
	"muslimlife/middleware"
	"muslimlife/server"
	"muslimlife/services"
	"muslimlife/services/functions"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Seed(db, logger, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}

	fn := functions.NewClient(cfg.FunctionsURL, cfg.FunctionsKey, cfg.FunctionsTimeout)
	if !fn.Configured() {
		logger.Warn("FUNCTIONS_URL not set, admin video imports are disabled")
	}

	achievements := services.NewAchievementService(db, logger, cfg.AchievementCacheTTL)
	goals := services.NewGoalTracker(db, logger, achievements)
	users := services.NewUserService(db)
	content := services.NewContentService(db, logger, fn)

	limiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow)

	cleanup, err := services.NewCleanupService(logger, goals, cfg.GoalResetSchedule, cfg.CacheSweepSchedule,
		achievements.Cache(), limiter, authLimiter)
	if err != nil {
		return err
	}

	api := &handlers.Handler{
		Log:          logger,
		Auth:         middleware.NewAuth(cfg.JWTSecret, cfg.JWTTTL),
		Users:        users,
		Achievements: achievements,
		Goals:        goals,
		Communities:  services.NewCommunityService(db),
		Leaderboard:  services.NewGlobalLeaderboard(db),
		Quizzes:      services.NewQuizService(db, logger, achievements, goals),
		Moods:        services.NewMoodService(db, logger, achievements),
		Prayers:      services.NewPrayerService(db, logger, achievements, goals),
		Content:      content,
	}
	adminAPI := &admin.Handler{
		Log:          logger,
		Users:        users,
		Achievements: achievements,
		Content:      content,
		Importer:     importer.New(db, logger),
		Cleanup:      cleanup,
	}

	app := server.NewApp(server.Deps{
		Config:      cfg,
		Log:         logger,
		API:         api,
		Admin:       adminAPI,
		Limiter:     limiter,
		AuthLimiter: authLimiter,
	})

	cleanup.Start()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server starting", "port", cfg.Port, "env", cfg.Env, "version", server.Version)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		cleanup.Stop(context.Background())
		return err
	case sig := <-quit:
		logger.Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Errorw("HTTP shutdown", "error", err)
	}
	cleanup.Stop(ctx)
	logger.Info("server stopped")
	return nil
}
