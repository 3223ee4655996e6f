package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"algoarena/internal/api"
	"algoarena/internal/app/service"
	"algoarena/internal/common/security"
	"algoarena/internal/domain/repository"
	"algoarena/internal/judge"
	"algoarena/internal/platform/cache"
	"algoarena/internal/platform/config"
	"algoarena/internal/platform/database"

	"go.uber.org/zap"
)

func main() {
	config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	security.InitJWT()

	database.Connect()
	defer database.Close()
	logger.Info("database connected")

	cache.ConnectRedis()
	defer cache.CloseRedis()
	logger.Info("redis connected")

	cfg := config.AppConfig

	judgeClient := judge.NewClient(judge.ClientConfig{
		BaseURL: cfg.JudgeBaseURL,
		APIKey:  cfg.JudgeAPIKey,
		APIHost: cfg.JudgeAPIHost,
		Timeout: time.Duration(cfg.JudgeTimeoutSeconds) * time.Second,
	}, logger)

	// Verify the language table against the judge before serving traffic. A
	// mismatch is logged but not fatal so a judge outage does not block boot.
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := judge.ValidateLanguages(bootCtx, judgeClient); err != nil {
		logger.Warn("language table validation failed", zap.Error(err))
	} else {
		logger.Info("language table validated", zap.Strings("languages", judge.SupportedLanguages()))
	}
	bootCancel()

	poller := judge.NewPoller(
		judgeClient,
		time.Duration(cfg.PollIntervalMs)*time.Millisecond,
		time.Duration(cfg.PollMaxWaitSeconds)*time.Second,
		uint64(cfg.PollFetchRetries),
		logger,
	)
	evaluator := judge.NewEvaluator(judgeClient, poller, logger)

	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)

	blacklist := security.NewTokenBlacklist(cache.RDB)

	authService := service.NewAuthService(userRepo, submissionRepo, blacklist, logger)
	problemService := service.NewProblemService(problemRepo, submissionRepo, evaluator, database.DB, logger)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, evaluator, logger)

	router := api.NewRouter(authService, problemService, submissionService, blacklist)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-stop

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}
