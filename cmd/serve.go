package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openfiling/disclosure-cli/internal/jobs"
	"github.com/openfiling/disclosure-cli/internal/scheduler"
	"github.com/openfiling/disclosure-cli/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, job executor, and ingestion scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.Migrate(ctx); err != nil {
			return err
		}

		exec := jobs.New(64)
		exec.Start(ctx)

		var sched *scheduler.Scheduler
		if cfg.Ingest.Enabled {
			sched, err = scheduler.New(exec, env.Runner, cfg.Ingest.Schedule)
			if err != nil {
				return err
			}
			sched.Start()
		} else {
			zap.L().Info("scheduled ingestion disabled")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: web.NewServer(env.Store, exec, env.Runner).Router(),
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			// Order matters: stop accepting triggers (scheduler, then HTTP)
			// before draining the executor, so no enqueue races the close.
			if sched != nil {
				sched.Stop(shutdownCtx)
			}
			shutdownErr := srv.Shutdown(shutdownCtx)
			if err := exec.Stop(shutdownCtx); err != nil {
				zap.L().Warn("job executor drain", zap.Error(err))
			}
			return shutdownErr
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
