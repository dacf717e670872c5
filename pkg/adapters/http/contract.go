package http

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/aretw0/colloquy/api"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// openAPI is the parsed contract and the router matching requests to its operations.
type openAPI struct {
	doc    *openapi3.T
	router routers.Router
}

var contract = sync.OnceValues(func() (*openAPI, error) {
	doc, err := openapi3.NewLoader().LoadFromData(api.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return &openAPI{doc: doc, router: router}, nil
})

// Swagger returns the parsed OpenAPI document requests are validated against.
func Swagger() (*openapi3.T, error) {
	c, err := contract()
	if err != nil {
		return nil, err
	}
	return c.doc, nil
}

// validateRequests rejects requests that do not match their OpenAPI operation.
// Paths the document does not describe pass through untouched.
func (s *Server) validateRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := contract()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		route, params, err := c.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) serveSpec(w http.ResponseWriter, r *http.Request) {
	if _, err := contract(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	if _, err := w.Write(api.Spec); err != nil {
		s.logger.Error("Failed to write OpenAPI spec", "err", err)
	}
}
