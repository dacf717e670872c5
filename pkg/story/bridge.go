// Package story bridges the variable store and an embedded story interpreter.
//
// While a Session is open the interpreter owns every variable the two sides
// share: store values are pushed in when the session begins, and each change
// the story makes is pulled back through the store's Set. When the session
// ends ownership returns to the store.
package story

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// ImportedDescription is attached to variables registered by ImportInto.
const ImportedDescription = "Imported from story script"

// Store is the subset of the variable store the bridge needs.
// *variables.Store satisfies it.
type Store interface {
	Get(name string) (domain.Value, error)
	Set(name string, value domain.Value) error
	TypeOf(name string) (domain.VariableType, error)
	Register(name string, typ domain.VariableType, defaultValue domain.Value, description string) error
}

// Bridge creates interpreters and binds them to variable stores.
type Bridge struct {
	factory ports.InterpreterFactory
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
}

// Option configures the Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for sync diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithHooks registers session and sync hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bridge) {
		b.hooks = hooks
	}
}

// NewBridge creates a bridge over factory.
func NewBridge(factory ports.InterpreterFactory, opts ...Option) *Bridge {
	b := &Bridge{
		factory: factory,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ExtractGlobals loads source in a throwaway interpreter and returns its
// declared globals with inferred narrative types. No store is touched.
func (b *Bridge) ExtractGlobals(source string) (map[string]domain.Value, error) {
	vm, err := b.factory.NewInterpreter()
	if err != nil {
		return nil, fmt.Errorf("create interpreter: %w", err)
	}
	defer vm.Close()

	if err := vm.Load(source); err != nil {
		return nil, err
	}

	globals := vm.Globals()
	out := make(map[string]domain.Value, len(globals))
	for name, native := range globals {
		out[name] = Infer(native)
	}
	return out, nil
}

// ImportInto registers every script global that store does not declare yet.
// Names already present are left untouched. It returns the imported names, sorted.
func (b *Bridge) ImportInto(store Store, source string) ([]string, error) {
	globals, err := b.ExtractGlobals(source)
	if err != nil {
		return nil, err
	}

	var imported []string
	for _, name := range sortedKeys(globals) {
		value := globals[name]
		err := store.Register(name, value.Type(), value, ImportedDescription)
		if errors.Is(err, domain.ErrDuplicateVariable) {
			b.logger.Info("Story import skipped existing variable", "variable", name)
			continue
		}
		if err != nil {
			return imported, fmt.Errorf("import %s: %w", name, err)
		}
		imported = append(imported, name)
	}
	return imported, nil
}

// BeginSession loads source, pushes matching store values into it, subscribes
// to its changes and runs label. The caller must End the session; Run does
// this automatically.
func (b *Bridge) BeginSession(store Store, source, label string) (*Session, error) {
	return b.begin(store, "", source, label)
}

// Run opens a session, calls fn and ends the session on every exit path,
// panics included. A nil fn just plays the label.
func (b *Bridge) Run(store Store, source, label string, fn func(*Session) error) error {
	return b.run(store, "", source, label, fn)
}

// RunEntry plays a story entry node, resolving its script through scripts.
func (b *Bridge) RunEntry(store Store, scripts ports.ScriptSource, entry domain.StoryEntry, fn func(*Session) error) error {
	source, err := scripts.ReadScript(entry.Script)
	if err != nil {
		return err
	}
	return b.run(store, entry.Script, source, entry.Label, fn)
}

func (b *Bridge) run(store Store, script, source, label string, fn func(*Session) error) (err error) {
	session, err := b.begin(store, script, source, label)
	if err != nil {
		return err
	}
	defer func() {
		if endErr := session.End(); endErr != nil && err == nil {
			err = endErr
		}
	}()
	if fn == nil {
		return nil
	}
	return fn(session)
}

func (b *Bridge) begin(store Store, script, source, label string) (*Session, error) {
	vm, err := b.factory.NewInterpreter()
	if err != nil {
		return nil, fmt.Errorf("create interpreter: %w", err)
	}
	if err := vm.Load(source); err != nil {
		_ = vm.Close()
		return nil, err
	}

	s := &Session{
		bridge: b,
		store:  store,
		vm:     vm,
		script: script,
		label:  label,
		owner:  make(map[string]Owner),
		types:  make(map[string]domain.VariableType),
	}

	for _, name := range sortedKeys(vm.Globals()) {
		typ, err := store.TypeOf(name)
		if err != nil {
			continue
		}
		s.types[name] = typ
		s.owner[name] = InterpreterOwned
		s.push(name)
	}

	s.cancel = vm.Observe(s.pull)

	if b.hooks.OnSessionBegin != nil {
		b.hooks.OnSessionBegin(s.event(domain.EventSessionBegin))
	}
	b.logger.Debug("Story session started", "script", script, "label", label, "tracked", len(s.types))

	if err := vm.Run(label); err != nil {
		_ = s.End()
		return nil, err
	}
	return s, nil
}

func (b *Bridge) skipped(name, reason string) {
	b.logger.Warn("Story sync skipped", "variable", name, "reason", reason)
	if b.hooks.OnSyncSkipped != nil {
		b.hooks.OnSyncSkipped(&domain.SyncEvent{
			EventBase: domain.NewEventBase(domain.EventSyncSkipped),
			Name:      name,
			Reason:    reason,
		})
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
