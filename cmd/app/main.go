package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking/cmd"
	bookinghttp "booking/internal/adapters/in/http"
	"booking/internal/adapters/out/postgres"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := newLogger(configs)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sentryEnabled := configs.SentryDSN != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         configs.SentryDSN,
			Environment: configs.AppEnv,
		}); err != nil {
			return fmt.Errorf("sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := postgres.AutoMigrate(gormDB); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	e, err := bookinghttp.NewRouter(ctx, app.CreateHTTPServer(), bookinghttp.RouterOptions{
		Sentry:  sentryEnabled,
		Swagger: configs.Swagger,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	jobManager, err := app.CreateJobManager(ctx)
	if err != nil {
		return fmt.Errorf("jobs: %w", err)
	}
	jobManager.StartAll()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("port", configs.HTTPPort))
		serverErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
	}()

	select {
	case err = <-serverErr:
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	jobManager.StopAll(shutdownCtx)
	if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("http shutdown", zap.Error(shutdownErr))
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func newLogger(configs cmd.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(configs.LogLevel)
	if err != nil {
		return nil, err
	}
	zapConfig := zap.NewDevelopmentConfig()
	if configs.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}
