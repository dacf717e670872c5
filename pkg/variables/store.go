package variables

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
)

type entry struct {
	decl domain.Variable
	live domain.Value
}

// Store is the typed key/value registry for narrative state.
type Store struct {
	entries map[string]*entry
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithHooks registers observability hooks (OnVariableChanged).
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// WithLogger configures a logger for restore diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register declares a new variable. Its live value starts at defaultValue.
func (s *Store) Register(name string, typ domain.VariableType, defaultValue domain.Value, description string) error {
	if name == "" {
		return fmt.Errorf("variable name cannot be empty")
	}
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateVariable, name)
	}
	if defaultValue.Type() != typ {
		return fmt.Errorf("%w: default of %s is %s, declared %s", domain.ErrTypeMismatch, name, defaultValue.Type(), typ)
	}
	s.entries[name] = &entry{
		decl: domain.Variable{
			Name:        name,
			Type:        typ,
			Default:     defaultValue,
			Description: description,
		},
		live: defaultValue,
	}
	return nil
}

// RegisterVariable declares a variable from its declaration.
func (s *Store) RegisterVariable(v domain.Variable) error {
	return s.Register(v.Name, v.Type, v.Default, v.Description)
}

// Has reports whether name is registered.
func (s *Store) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Variable returns the declaration of name.
func (s *Store) Variable(name string) (domain.Variable, error) {
	e, ok := s.entries[name]
	if !ok {
		return domain.Variable{}, fmt.Errorf("%w: %s", domain.ErrUnknownVariable, name)
	}
	return e.decl, nil
}

// TypeOf returns the declared type of name.
func (s *Store) TypeOf(name string) (domain.VariableType, error) {
	e, ok := s.entries[name]
	if !ok {
		return domain.TypeInvalid, fmt.Errorf("%w: %s", domain.ErrUnknownVariable, name)
	}
	return e.decl.Type, nil
}

// Get returns the live value of name.
func (s *Store) Get(name string) (domain.Value, error) {
	e, ok := s.entries[name]
	if !ok {
		return domain.Value{}, fmt.Errorf("%w: %s", domain.ErrUnknownVariable, name)
	}
	return e.live, nil
}

// Set overwrites the live value of name. The default value is untouched.
func (s *Store) Set(name string, value domain.Value) error {
	e, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownVariable, name)
	}
	if value.Type() != e.decl.Type {
		return fmt.Errorf("%w: %s is %s, got %s", domain.ErrTypeMismatch, name, e.decl.Type, value.Type())
	}
	old := e.live
	e.live = value
	if !old.Equal(value) && s.hooks.OnVariableChanged != nil {
		s.hooks.OnVariableChanged(&domain.VariableEvent{
			EventBase: domain.NewEventBase(domain.EventVariableChanged),
			Name:      name,
			Old:       old,
			New:       value,
		})
	}
	return nil
}

// Reset restores name to its default value.
func (s *Store) Reset(name string) error {
	e, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownVariable, name)
	}
	return s.Set(name, e.decl.Default)
}

// ResetAll restores every variable to its default value.
func (s *Store) ResetAll() {
	for _, name := range s.ListNames() {
		_ = s.Reset(name)
	}
}

// ListNames returns every registered name, sorted.
func (s *Store) ListNames() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListNamesByType returns the registered names declared with typ, sorted.
func (s *Store) ListNamesByType(typ domain.VariableType) []string {
	var names []string
	for name, e := range s.entries {
		if e.decl.Type == typ {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Variables returns every declaration, sorted by name.
func (s *Store) Variables() []domain.Variable {
	out := make([]domain.Variable, 0, len(s.entries))
	for _, name := range s.ListNames() {
		out = append(out, s.entries[name].decl)
	}
	return out
}

// Snapshot copies the live values.
func (s *Store) Snapshot() *domain.Snapshot {
	snap := domain.NewSnapshot()
	for name, e := range s.entries {
		snap.Values[name] = e.live
	}
	return snap
}

// Restore applies a snapshot onto the store.
// Entries for unknown names or with the wrong type are skipped and returned as
// errors; they never overwrite a live value.
func (s *Store) Restore(snap *domain.Snapshot) []error {
	if snap == nil {
		return nil
	}
	var skipped []error
	names := make([]string, 0, len(snap.Values))
	for name := range snap.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.Set(name, snap.Values[name]); err != nil {
			s.logger.Warn("snapshot entry skipped", "variable", name, "err", err)
			skipped = append(skipped, err)
		}
	}
	return skipped
}
