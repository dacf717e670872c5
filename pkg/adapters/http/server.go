// Package http serves a loaded dialogue project over a small JSON API:
// read-only graph introspection plus type-checked writes to live variables.
// The API is described by api/openapi.yaml, served at GET /openapi.yaml.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/story"
	"github.com/aretw0/colloquy/pkg/variables"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// DefaultLockTTL bounds how long a snapshot write may hold the distributed lock.
const DefaultLockTTL = 5 * time.Second

// Server exposes a container and its variable store.
type Server struct {
	container *dialogue.Container
	vars      *variables.Store
	logger    *slog.Logger

	snapshots   ports.SnapshotStore
	snapshotKey string
	locker      ports.DistributedLocker
	metrics     http.Handler

	// mu guards vars; the store itself is not safe for concurrent use.
	mu sync.RWMutex
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSnapshots persists the variable store under key after every write.
func WithSnapshots(store ports.SnapshotStore, key string) Option {
	return func(s *Server) {
		s.snapshots = store
		s.snapshotKey = key
	}
}

// WithLocker serialises snapshot writes across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Server) {
		s.locker = locker
	}
}

// WithMetrics mounts handler at GET /metrics.
func WithMetrics(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

// NewServer creates a server over a container and its variables.
func NewServer(c *dialogue.Container, vars *variables.Store, opts ...Option) *Server {
	s := &Server{
		container: c,
		vars:      vars,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for a container and its variables.
func NewHandler(c *dialogue.Container, vars *variables.Store, opts ...Option) http.Handler {
	return NewServer(c, vars, opts...).Routes()
}

// Routes builds the chi router. Requests to operations described in
// api/openapi.yaml are validated against it before reaching a handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.validateRequests)
	r.Get("/openapi.yaml", s.serveSpec)
	r.Get("/health", s.GetHealth)
	r.Get("/groups", s.ListGroups)
	r.Get("/groups/{group}/nodes", s.ListGroupNodes)
	r.Get("/ungrouped/nodes", s.ListUngroupedNodes)
	r.Get("/nodes/{name}", s.GetNode)
	r.Get("/variables", s.ListVariables)
	r.Get("/variables/{name}", s.GetVariable)
	r.Put("/variables/{name}", s.PutVariable)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// VariableView is the wire form of a variable.
type VariableView struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Value       any    `json:"value"`
	Default     any    `json:"default"`
	Description string `json:"description,omitempty"`
}

// NodeView is the wire form of a node and the group that owns it.
type NodeView struct {
	*domain.Node
	Group string `json:"group,omitempty"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListGroups handles GET /groups.
func (s *Server) ListGroups(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.container.ListGroupNames()))
}

// ListGroupNodes handles GET /groups/{group}/nodes. With ?starting=true only
// starting nodes are listed.
func (s *Server) ListGroupNodes(w http.ResponseWriter, r *http.Request) {
	group, err := pathParam(r, "group")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	starting, err := startingParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !slices.Contains(s.container.ListGroupNames(), group) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown group %q", group))
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(s.container.NamesInGroup(group, starting)))
}

// ListUngroupedNodes handles GET /ungrouped/nodes.
func (s *Server) ListUngroupedNodes(w http.ResponseWriter, r *http.Request) {
	starting, err := startingParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(s.container.NamesUngrouped(starting)))
}

// GetNode handles GET /nodes/{name}. ?group= narrows the lookup to one group.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	var group *string
	if err := runtime.BindQueryParameter("form", true, false, "group", r.URL.Query(), &group); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter group: %w", err))
		return
	}
	var node *domain.Node
	if group != nil && *group != "" {
		node = s.container.FindInGroup(*group, name)
	} else {
		node = s.container.FindByName(name)
	}
	if node == nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", dialogue.ErrNodeNotFound, name))
		return
	}
	owner, _ := s.container.GroupOf(node.ID)
	s.writeJSON(w, http.StatusOK, NodeView{Node: node, Group: owner})
}

// ListVariables handles GET /variables.
func (s *Server) ListVariables(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := []VariableView{}
	for _, name := range s.vars.ListNames() {
		view, err := s.view(name)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		views = append(views, view)
	}
	s.writeJSON(w, http.StatusOK, views)
}

// GetVariable handles GET /variables/{name}.
func (s *Server) GetVariable(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	view, err := s.view(name)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// PutVariable handles PUT /variables/{name} with a {"value": ...} body.
// The value must convert to the declared type; ints are accepted for floats.
func (s *Server) PutVariable(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Value any `json:"value"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	typ, err := s.vars.TypeOf(name)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	value, err := story.Convert(typ, normalizeJSON(body.Value))
	if err != nil {
		s.writeError(w, statusFor(err), fmt.Errorf("%s: %w", name, err))
		return
	}
	previous, err := s.vars.Get(name)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if err := s.vars.Set(name, value); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	if err := s.persist(r.Context()); err != nil {
		s.logger.Error("Snapshot save failed", "key", s.snapshotKey, "err", err)
		if rerr := s.vars.Set(name, previous); rerr != nil {
			s.logger.Warn("Variable rollback failed", "variable", name, "err", rerr)
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("Variable updated", "variable", name, "value", value.String())

	view, err := s.view(name)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) persist(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, s.snapshotKey, DefaultLockTTL)
		if err != nil {
			return fmt.Errorf("failed to lock snapshot: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Snapshot unlock failed", "key", s.snapshotKey, "err", err)
			}
		}()
	}
	return s.snapshots.Save(ctx, s.snapshotKey, s.vars.Snapshot())
}

func (s *Server) view(name string) (VariableView, error) {
	decl, err := s.vars.Variable(name)
	if err != nil {
		return VariableView{}, err
	}
	live, err := s.vars.Get(name)
	if err != nil {
		return VariableView{}, err
	}
	return VariableView{
		Name:        decl.Name,
		Type:        decl.Type.String(),
		Value:       live.Native(),
		Default:     decl.Default.Native(),
		Description: decl.Description,
	}, nil
}

// pathParam binds a required simple-style path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return value, nil
}

// startingParam binds the optional ?starting= flag; absent means false.
func startingParam(r *http.Request) (bool, error) {
	var starting *bool
	if err := runtime.BindQueryParameter("form", true, false, "starting", r.URL.Query(), &starting); err != nil {
		return false, fmt.Errorf("invalid format for parameter starting: %w", err)
	}
	return starting != nil && *starting, nil
}

// normalizeJSON turns json.Number into int64 when it is integral, float64 otherwise.
func normalizeJSON(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownVariable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTypeMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	} else {
		s.logger.Warn("Request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
