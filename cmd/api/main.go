package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"tasktracker/configs"
	v1 "tasktracker/internal/api/v1"
	"tasktracker/internal/config"
	"tasktracker/pkg/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	// Load config
	cfg := configs.LoadConfig()

	// Inisialisasi logger
	logger.InitLoggers(cfg.LogDir)
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application",
		zap.String("time", time.Now().Format(time.RFC3339)),
		zap.String("env", cfg.AppEnv),
		zap.String("store", cfg.StoreDriver),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := config.NewDependencies(startCtx, cfg)
	if err != nil {
		cancel()
		logger.ErrorLogger.Error("Failed to initialize dependencies", zap.Error(err))
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	// Jika ingin membuat admin user, isi ADMIN_EMAIL dan ADMIN_PASSWORD
	if err := deps.SeedAdmin(startCtx); err != nil {
		logger.ErrorLogger.Error("Failed to seed admin user", zap.Error(err))
	}
	cancel()

	go deps.Hub.Run()
	app := v1.NewApp(deps)

	trigger, stop := context.WithCancel(context.Background())
	defer stop()
	listenErr := serve(app, fmt.Sprintf(":%d", cfg.AppPort), stop)

	wait := gfshutdown.GracefulShutdown(
		trigger,
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// fiber first, so in-flight requests still have their store
			"http-server": func(ctx context.Context) error {
				logger.SystemLogger.Info("Graceful shutdown initiated")
				if err := app.ShutdownWithContext(ctx); err != nil {
					return err
				}
				return deps.Close()
			},
		},
	)

	exitCode := <-wait
	select {
	case err := <-listenErr:
		if err != nil {
			exitCode = 1
		}
	default:
	}
	logger.SystemLogger.Info("Application exited", zap.Int("code", exitCode))
	logger.SyncLoggers()
	os.Exit(exitCode)
}

// serve runs the listener in the background. If it fails, the error is sent on
// the returned channel and shutdown is triggered.
func serve(app *fiber.App, addr string, shutdown context.CancelFunc) <-chan error {
	failed := make(chan error, 1)
	go func() {
		logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
			failed <- err
			shutdown()
		}
	}()
	return failed
}
