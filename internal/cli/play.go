package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/config"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/internal/metrics"
	"github.com/aretw0/colloquy/internal/presentation/tui"
	"github.com/aretw0/colloquy/pkg/adapters/file"
	"github.com/aretw0/colloquy/pkg/adapters/project"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/variables"
	"github.com/muesli/termenv"
)

// PlayOptions contains all the configuration for the play command.
type PlayOptions struct {
	Path        string
	Group       string
	Start       string
	SnapshotKey string
	Fresh       bool
	Auto        bool
	Markdown    bool

	// Interactive is true when Input is a terminal: it enables the banner
	// and colours.
	Interactive bool
	Input       io.Reader
	Output      io.Writer

	Config config.Config
	Logger *slog.Logger
	// Metrics, when set, counts every lifecycle event of the conversation.
	Metrics *metrics.Metrics
}

// Play loads a project, restores its variables, plays one conversation and
// saves the variables again.
func Play(ctx context.Context, opts PlayOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	var rendererOpts []tui.RendererOption
	if !opts.Interactive {
		rendererOpts = append(rendererOpts, tui.WithProfile(termenv.Ascii))
	}
	if opts.Markdown {
		rendererOpts = append(rendererOpts, tui.WithMarkdown())
	}
	view := tui.NewRenderer(opts.Output, rendererOpts...)
	if opts.Interactive {
		tui.PrintBanner(opts.Output, colloquy.Version)
	}

	hooks := createDebugHooks(logger)
	if opts.Metrics != nil {
		hooks = domain.ComposeHooks(hooks, opts.Metrics.Hooks(nil))
	}
	p, err := project.LoadFile(opts.Path, variables.WithHooks(hooks), variables.WithLogger(logger))
	if err != nil {
		return err
	}
	reg, err := NewTerminalRegistry(p.Container, p.Variables, view, logger)
	if err != nil {
		return err
	}
	eng := colloquy.NewFromProject(p,
		colloquy.WithLogger(logger),
		colloquy.WithLifecycleHooks(hooks),
		colloquy.WithRegistry(reg),
		colloquy.WithScripts(file.NewScripts(filepath.Dir(opts.Path))),
		colloquy.WithStepBudget(opts.Config.StepBudget),
	)
	if err := eng.Validate(); err != nil {
		return fmt.Errorf("project is invalid: %w", err)
	}

	backend, err := OpenBackend(opts.Config, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	key := opts.SnapshotKey
	if key == "" {
		key = opts.Config.SnapshotKey
	}
	if backend != nil && !opts.Fresh {
		restored, err := eng.Restore(ctx, backend.Store, key)
		if err != nil {
			return err
		}
		if restored {
			view.Notice("Resuming saved state %q.", key)
		}
	}

	start, err := eng.Start(opts.Group, opts.Start)
	if err != nil {
		return err
	}

	runner := &colloquy.Runner{Input: opts.Input, View: view, AutoChoose: opts.Auto}
	runErr := runner.Run(ctx, eng, start)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	if backend != nil {
		if err := eng.Persist(context.WithoutCancel(ctx), backend.Store, key); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(e *domain.NodeEvent) {
			logger.Debug("Enter Node", "node_id", e.NodeID, "name", e.NodeName, "kind", e.Kind)
		},
		OnVariableChanged: func(e *domain.VariableEvent) {
			logger.Debug("Variable Changed", "variable", e.Name, "old", e.Old.String(), "new", e.New.String())
		},
		OnSessionBegin: func(e *domain.SessionEvent) {
			logger.Debug("Story Session Begin", "script", e.Script, "label", e.Label)
		},
		OnSessionEnd: func(e *domain.SessionEvent) {
			logger.Debug("Story Session End", "script", e.Script, "label", e.Label, "tracked", e.Tracked)
		},
		OnSyncSkipped: func(e *domain.SyncEvent) {
			logger.Debug("Sync Skipped", "variable", e.Name, "reason", e.Reason)
		},
	}
}
