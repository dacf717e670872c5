package ports

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
)

// FunctionDispatcher defines how external function calls are executed.
// The dialogue emits requests, and the host implements this interface to handle them.
type FunctionDispatcher interface {
	Execute(ctx context.Context, call domain.FunctionCall) error
}
