package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/metrics"
	httpAdapter "github.com/aretw0/colloquy/pkg/adapters/http"
	"github.com/aretw0/colloquy/pkg/adapters/project"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/variables"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a dialogue project over HTTP",
	Long: `Exposes the project's groups, nodes and variables as a JSON API. Variable
writes are type-checked and, with a snapshot backend, persisted. Prometheus
metrics are served at /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.HTTPAddr, _ = cmd.Flags().GetString("addr")
		}

		m := metrics.New()
		p, err := project.LoadFile(args[0], variables.WithHooks(m.Hooks(logger)), variables.WithLogger(logger))
		if err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(m.Handler()),
		}
		backend, err := cli.OpenBackend(cfg, logger)
		if err != nil {
			return err
		}
		defer backend.Close()
		if backend != nil {
			snap, err := backend.Store.Load(sigCtx, cfg.SnapshotKey)
			switch {
			case err == nil:
				skipped := p.Variables.Restore(snap)
				logger.Info("Snapshot restored", "key", cfg.SnapshotKey, "skipped", len(skipped))
			case !errors.Is(err, domain.ErrSnapshotNotFound):
				return fmt.Errorf("failed to load snapshot: %w", err)
			}
			opts = append(opts, httpAdapter.WithSnapshots(backend.Store, cfg.SnapshotKey))
			if backend.Locker != nil {
				opts = append(opts, httpAdapter.WithLocker(backend.Locker))
			}
		}

		srv := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: httpAdapter.NewHandler(p.Container, p.Variables, opts...),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting colloquy server", "addr", srv.Addr, "project", args[0])
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-sigCtx.Done():
			logger.Info("Start shutdown", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("Colloquy server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from COLLOQUY_HTTP_ADDR)")
}
