package colloquy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/adapters/file"
	"github.com/aretw0/colloquy/pkg/adapters/luavm"
	"github.com/aretw0/colloquy/pkg/adapters/project"
	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/registry"
	"github.com/aretw0/colloquy/pkg/story"
	"github.com/aretw0/colloquy/pkg/variables"
)

// Version is the release this build reports. Overridden at link time.
var Version = "dev"

// Engine is the high-level entry point for the colloquy library.
// It binds a loaded project to its story bridge and function registry.
type Engine struct {
	project    *project.Project
	bridge     *story.Bridge
	scripts    ports.ScriptSource
	factory    ports.InterpreterFactory
	registry   *registry.Registry
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	stepBudget int
	Name       string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks on the store, the bridge
// and playback.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithScripts sets where story entries read their scripts from.
// The default is the directory of the project file.
func WithScripts(scripts ports.ScriptSource) Option {
	return func(e *Engine) {
		e.scripts = scripts
	}
}

// WithInterpreterFactory replaces the embedded Lua interpreter.
func WithInterpreterFactory(factory ports.InterpreterFactory) Option {
	return func(e *Engine) {
		e.factory = factory
	}
}

// WithRegistry sets the external function registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithStepBudget bounds how many nodes a single playback may visit.
func WithStepBudget(budget int) Option {
	return func(e *Engine) {
		e.stepBudget = budget
	}
}

// New loads the project at path and initializes an Engine over it.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	eng.defaults()
	eng.Name = filepath.Base(path)
	eng.logger = eng.logger.With("project", eng.Name)

	p, err := project.LoadFile(path, variables.WithHooks(eng.hooks), variables.WithLogger(eng.logger))
	if err != nil {
		return nil, err
	}
	eng.project = p
	if eng.scripts == nil {
		eng.scripts = file.NewScripts(filepath.Dir(path))
	}
	eng.bridge = story.NewBridge(eng.factory, story.WithLogger(eng.logger), story.WithHooks(eng.hooks))
	return eng, nil
}

// NewFromProject wraps an already built project.
// Hooks only reach the variable store if it was built with them.
func NewFromProject(p *project.Project, opts ...Option) *Engine {
	eng := &Engine{project: p}
	for _, opt := range opts {
		opt(eng)
	}
	eng.defaults()
	eng.Name = p.Container.FileName
	if eng.scripts == nil {
		eng.scripts = file.NewScripts(".")
	}
	eng.bridge = story.NewBridge(eng.factory, story.WithLogger(eng.logger), story.WithHooks(eng.hooks))
	return eng
}

func (e *Engine) defaults() {
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.factory == nil {
		e.factory = luavm.NewFactory(luavm.WithLogger(e.logger))
	}
	if e.registry == nil {
		e.registry = registry.NewRegistry(registry.WithLogger(e.logger))
	}
}

// Project returns the loaded project.
func (e *Engine) Project() *project.Project { return e.project }

// Container returns the dialogue container.
func (e *Engine) Container() *dialogue.Container { return e.project.Container }

// Variables returns the variable store.
func (e *Engine) Variables() *variables.Store { return e.project.Variables }

// Bridge returns the story bridge.
func (e *Engine) Bridge() *story.Bridge { return e.bridge }

// Registry returns the external function registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Validate reports every structural problem in the project as one error.
func (e *Engine) Validate() error {
	return dialogue.ValidateErr(e.Container(), e.Variables())
}

// Start resolves the node playback begins at.
//
// With a name, the node is looked up in group (or everywhere when group is
// empty). Without one, the first starting node of group is used, or the first
// starting node of the container when group is empty too.
func (e *Engine) Start(group, name string) (*domain.Node, error) {
	c := e.Container()
	var node *domain.Node
	switch {
	case name != "" && group != "":
		node = c.FindInGroup(group, name)
	case name != "":
		node = c.FindByName(name)
	case group != "":
		if names := c.NamesInGroup(group, true); len(names) > 0 {
			node = c.FindInGroup(group, names[0])
		}
	default:
		for _, n := range c.Nodes() {
			if n.IsStartingNode {
				node = n
				break
			}
		}
	}
	if node == nil {
		return nil, fmt.Errorf("%w: no start for group %q name %q", dialogue.ErrNodeNotFound, group, name)
	}
	return node, nil
}

// Enter reports that playback reached node.
func (e *Engine) Enter(node *domain.Node) {
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(&domain.NodeEvent{
			EventBase: domain.NewEventBase(domain.EventNodeEnter),
			NodeID:    node.ID,
			NodeName:  node.Name,
			Kind:      node.Kind,
		})
	}
}

// Dispatch runs the external function requested by node through the registry.
func (e *Engine) Dispatch(ctx context.Context, node *domain.Node) error {
	call, err := dialogue.FunctionCall(node)
	if err != nil {
		return err
	}
	return e.registry.Execute(ctx, call)
}

// Delegate runs the story entry of node. fn sees the open session; the
// session is ended before Delegate returns.
func (e *Engine) Delegate(node *domain.Node, fn func(*story.Session) error) error {
	if node == nil || node.Kind != domain.KindExternalStoryEntry || node.Story == nil {
		return fmt.Errorf("%w: node is not an external story entry", dialogue.ErrWrongKind)
	}
	return e.bridge.RunEntry(e.Variables(), e.scripts, *node.Story, fn)
}

// Restore loads the snapshot stored under key into the variable store.
// A missing snapshot is not an error. Entries that no longer fit the
// declarations are skipped and logged.
func (e *Engine) Restore(ctx context.Context, store ports.SnapshotStore, key string) (bool, error) {
	snap, err := store.Load(ctx, key)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load snapshot: %w", err)
	}
	skipped := e.Variables().Restore(snap)
	e.logger.Info("Snapshot restored", "key", key, "skipped", len(skipped))
	return true, nil
}

// Persist saves the live variable values under key.
func (e *Engine) Persist(ctx context.Context, store ports.SnapshotStore, key string) error {
	if err := store.Save(ctx, key, e.Variables().Snapshot()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	e.logger.Info("Snapshot saved", "key", key)
	return nil
}
