// Package registry maps external function calls emitted by dialogue nodes to
// host handlers.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
)

// Handler runs the gameplay side effect of one external function.
// It receives the call's free-form parameter.
type Handler func(ctx context.Context, parameter string) error

// Registry is the host's dispatch table. It implements ports.FunctionDispatcher.
type Registry struct {
	mu     sync.RWMutex
	typed  map[domain.ExternalFunction]Handler
	custom map[string]Handler
	logger *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report unmapped custom calls.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		typed:  make(map[domain.ExternalFunction]Handler),
		custom: make(map[string]Handler),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a handler to a typed function.
// If a handler exists, it is overwritten. Custom calls go through RegisterCustom.
func (r *Registry) Register(fn domain.ExternalFunction, h Handler) error {
	if !fn.Valid() || fn == domain.FuncCustom {
		return fmt.Errorf("cannot register handler for %q", fn)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typed[fn] = h
	return nil
}

// RegisterCustom binds a handler to a host-defined Custom function name.
func (r *Registry) RegisterCustom(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("custom function name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[name] = h
	return nil
}

// Missing lists the typed functions without a handler, in declaration order.
// An empty result means the table is total over the enumeration.
func (r *Registry) Missing() []domain.ExternalFunction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []domain.ExternalFunction
	for _, fn := range domain.ExternalFunctions {
		if fn == domain.FuncCustom {
			continue
		}
		if _, ok := r.typed[fn]; !ok {
			missing = append(missing, fn)
		}
	}
	return missing
}

// CustomNames returns the registered Custom names, sorted.
func (r *Registry) CustomNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.custom))
	for name := range r.custom {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute dispatches call. An unmapped typed function fails with
// domain.ErrUnmappedFunction; an unmapped Custom name is logged and ignored.
func (r *Registry) Execute(ctx context.Context, call domain.FunctionCall) error {
	r.mu.RLock()
	var (
		h  Handler
		ok bool
	)
	if call.IsCustom() {
		h, ok = r.custom[call.Name]
	} else {
		h, ok = r.typed[call.Function]
	}
	r.mu.RUnlock()

	if !ok {
		if call.IsCustom() {
			r.logger.Warn("Unmapped custom function ignored", "name", call.Name, "parameter", call.Parameter)
			return nil
		}
		return fmt.Errorf("%w: %s", domain.ErrUnmappedFunction, call.Function)
	}

	if err := h(ctx, call.Parameter); err != nil {
		return fmt.Errorf("%s: %w", call, err)
	}
	return nil
}
