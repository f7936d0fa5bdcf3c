package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-market-digest/internal/digest/config"
	delivery "golang-market-digest/internal/digest/delivery/http"
	"golang-market-digest/internal/digest/repository"
	"golang-market-digest/internal/digest/service"
	"golang-market-digest/pkg/logger"
	"golang-market-digest/pkg/telegram"

	"google.golang.org/genai"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the digest pipeline once",
	Run:   runOnce,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the digest service with a cron schedule and HTTP API",
	Run:   runServe,
}

func buildService(cfg *config.Config, appLogger *logger.Logger) (service.DigestService, repository.ArtifactRepository) {
	var genAiClient *genai.Client
	if cfg.Gemini.APIKey != "" {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", zap.Error(err))
		}
		genAiClient = client
	}

	aiRepo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI repository", zap.Error(err))
	}

	feedsRepo := repository.NewFeedsRepository(cfg, appLogger)
	artifactRepo := repository.NewArtifactRepository(cfg, appLogger)

	var telegramNotifier telegram.Notifier
	if cfg.Telegram.Enabled {
		telegramNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
	}

	digestSvc := service.NewDigestService(cfg, appLogger, feedsRepo, aiRepo, artifactRepo, telegramNotifier)
	return digestSvc, artifactRepo
}

func initConfig() (*config.Config, *logger.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg, appLogger
}

func runOnce(cmd *cobra.Command, args []string) {
	cfg, appLogger := initConfig()
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting digest run", zap.String("name", cfg.App.Name))

	digestSvc, _ := buildService(cfg, appLogger)

	result, err := digestSvc.Run(context.Background())
	if err != nil {
		appLogger.Fatal("Digest run failed", zap.Error(err))
	}

	if result.ExtractionCount == 0 {
		appLogger.Info("No extractions today, nothing was written")
		return
	}

	appLogger.Info("Digest run finished",
		zap.String("summary_path", result.SummaryPath),
		zap.String("report_path", result.ReportPath),
	)
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, appLogger := initConfig()
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting digest service", zap.String("name", cfg.App.Name))

	digestSvc, artifactRepo := buildService(cfg, appLogger)

	c := cron.New()
	if cfg.Scheduler.Enabled {
		if _, err := c.AddFunc(cfg.Scheduler.Cron, func() {
			if _, err := digestSvc.Run(ctx); err != nil {
				appLogger.Error("Scheduled digest run failed", logger.ErrorField(err))
			}
		}); err != nil {
			appLogger.Fatal("Failed to register cron schedule", zap.Error(err))
		}
		c.Start()
		appLogger.Info("Scheduler started", zap.String("cron", cfg.Scheduler.Cron))
	}

	e := echo.New()
	e.HideBanner = true
	handler := delivery.NewDigestHandler(digestSvc, artifactRepo, appLogger)
	handler.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	appLogger.Info("Digest service started. Waiting for schedule...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down digest service...")
	cancel()
	cronCtx := c.Stop()
	<-cronCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Failed to shut down HTTP server", logger.ErrorField(err))
	}
	appLogger.Info("Digest service stopped.")
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "digest-service",
		Short: "A CLI for the daily market digest pipeline",
	}

	runCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-digest.yaml", "Path to the configuration file")
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-digest.yaml", "Path to the configuration file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing digest-service CLI: %s\n", err)
		os.Exit(1)
	}
}
