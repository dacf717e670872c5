// Package api holds the OpenAPI contract of the colloquy HTTP server.
package api

import _ "embed"

// Spec is the raw OpenAPI 3 document served at /openapi.yaml.
//
//go:embed openapi.yaml
var Spec []byte
