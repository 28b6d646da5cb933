package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moodlog/internal/auth"
	"moodlog/internal/config"
	"moodlog/internal/db"
	httpx "moodlog/internal/http"
	"moodlog/internal/jobs"
	"moodlog/internal/logging"
	"moodlog/internal/mood"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:           "moodlog",
		Short:         "Mood tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{Use: "serve", Short: "Run the HTTP API and reminder worker", RunE: runServe},
		&cobra.Command{Use: "migrate", Short: "Create or update the schema and indexes", RunE: runMigrate},
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		_, _ = os.Stderr.WriteString("moodlog: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	backend, err := db.Open(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer backend.Close(context.Background())

	logger.Info("schema up to date", zap.String("driver", cfg.StoreDriver))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	connectCtx, connectCancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	backend, err := db.Open(connectCtx, cfg, true)
	connectCancel()
	if err != nil {
		return err
	}
	defer backend.Close(context.Background())

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	r := httpx.NewRouter(httpx.Deps{
		Config: cfg,
		Log:    logger,
		Moods:  mood.NewService(backend.Moods, logger),
		Users:  backend.Users,
		Jobs:   backend.Jobs,
		JWT:    jwtSvc,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WorkerEnabled {
		hostname, _ := os.Hostname()
		worker := &jobs.Worker{
			ID:       "worker-" + hostname,
			Repo:     backend.Jobs,
			Notifier: jobs.LogNotifier{Log: logger},
			Log:      logger,
			Interval: cfg.WorkerPollInterval,
		}
		go worker.Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("driver", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ch:
	case err := <-errCh:
		return err
	}

	logger.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
