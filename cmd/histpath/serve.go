package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/histpath/readingorder/internal/jobs"
	"github.com/histpath/readingorder/internal/logger"
	"github.com/histpath/readingorder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reading order reconstruction over HTTP",
	Long: `Start the HTTP API:

  GET  /health
  POST /api/v1/reading-order   order a detection file synchronously
  POST /api/v1/jobs            queue a detection file, returns a job ID
  GET  /api/v1/jobs/:id        job status and result

Jobs are kept in memory unless JOB_STORE=redis.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addStrategyFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from HTTP_ADDR)")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Time allowed for running jobs on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("server")

	strategy, normalize, err := strategyFromFlags(cmd)
	if err != nil {
		return err
	}

	addr := appConfig.HTTPAddr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newJobStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	runner := jobs.NewRunner(store, jobs.OrderProcessor(strategy, normalize, log), jobs.RunnerConfig{
		Workers: appConfig.BatchWorkers,
		Logger:  logger.WithComponent("jobs"),
	})

	srv := server.New(store, runner, server.Options{
		Strategy:      strategy,
		NormalizeText: normalize,
		BodyLimitMB:   appConfig.BodyLimitMB,
		Logger:        log,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// newJobStore builds the store named by JOB_STORE. The returned func
// releases it.
func newJobStore(ctx context.Context) (jobs.Store, func(), error) {
	log := logger.WithComponent("jobs")

	if appConfig.JobStore != "redis" {
		log.Info().Msg("Using in-memory job store")
		return jobs.NewMemoryStore(), func() {}, nil
	}

	client, err := jobs.NewRedisClient(ctx, jobs.RedisOptions{
		Address:  appConfig.RedisAddress,
		Password: appConfig.RedisPassword,
		DB:       appConfig.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Str("address", appConfig.RedisAddress).
		Dur("ttl", appConfig.JobTTL).
		Msg("Using redis job store")

	return jobs.NewRedisStore(client, appConfig.JobTTL), func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}, nil
}
