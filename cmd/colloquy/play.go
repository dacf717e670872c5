package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "Play a conversation in the terminal",
	Long: `Starts at the first starting node (or --start / --group), auto-advances
nodes that need no input and prompts for a choice number at every menu.
With a snapshot backend configured, variables are restored before and saved
after the conversation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")
		start, _ := cmd.Flags().GetString("start")
		key, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		auto, _ := cmd.Flags().GetBool("auto")
		markdown, _ := cmd.Flags().GetBool("markdown")
		if cmd.Flags().Changed("backend") {
			cfg.SnapshotBackend, _ = cmd.Flags().GetString("backend")
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		var m *metrics.Metrics
		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			m = metrics.New()
			stop := serveMetrics(addr, m)
			defer stop()
		}

		err := cli.Play(sigCtx, cli.PlayOptions{
			Path:        args[0],
			Group:       group,
			Start:       start,
			SnapshotKey: key,
			Fresh:       fresh,
			Auto:        auto,
			Markdown:    markdown,
			Interactive: term.IsTerminal(int(os.Stdin.Fd())),
			Input:       os.Stdin,
			Output:      cmd.OutOrStdout(),
			Config:      cfg,
			Logger:      logger,
			Metrics:     m,
		})
		if sig := sigCtx.Signal(); sig != nil {
			logger.Info("Playback interrupted", "signal", sig)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringP("group", "g", "", "Group to start in")
	playCmd.Flags().StringP("start", "s", "", "Name of the node to start at")
	playCmd.Flags().String("session", "", "Snapshot key (default from COLLOQUY_SNAPSHOT_KEY)")
	playCmd.Flags().String("backend", "", "Snapshot backend: none, memory, file or redis")
	playCmd.Flags().Bool("fresh", false, "Ignore any saved snapshot")
	playCmd.Flags().Bool("auto", false, "Always follow the first choice")
	playCmd.Flags().Bool("markdown", false, "Render node text as markdown")
	playCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while playing")
}

// serveMetrics exposes m at /metrics until the returned stop is called.
func serveMetrics(addr string, m *metrics.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
