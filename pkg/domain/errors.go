package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownVariable is returned when a variable name is not registered in the store.
var ErrUnknownVariable = errors.New("unknown variable")

// ErrTypeMismatch is returned when a value does not match the declared variable type.
var ErrTypeMismatch = errors.New("type mismatch")

// ErrDuplicateVariable is returned when registering a name that already exists.
var ErrDuplicateVariable = errors.New("duplicate variable")

// ErrUnsupportedOperator is returned when an operator is not defined for a variable type.
var ErrUnsupportedOperator = errors.New("unsupported operator")

// ErrIndexOutOfRange is returned when a choice index does not exist on a node.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrNodeAlreadyOwned is returned when a node ID is added to a container twice.
var ErrNodeAlreadyOwned = errors.New("node already owned by container")

// ErrUnmappedFunction is returned when the host has no handler for a typed external function.
var ErrUnmappedFunction = errors.New("unmapped external function")

// ErrIntOverflow is returned when an Int modification leaves the int64 range.
var ErrIntOverflow = errors.New("integer overflow")

// ErrSnapshotNotFound is returned when a snapshot key cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ValidationError describes a structural problem found in a dialogue container.
type ValidationError struct {
	NodeID   string // Empty for group-level problems
	NodeName string
	Group    string // Empty for ungrouped nodes
	Reason   string // Human-readable reason
}

func (e *ValidationError) Error() string {
	scope := "ungrouped"
	if e.Group != "" {
		scope = "group " + e.Group
	}
	if e.NodeName == "" && e.NodeID == "" {
		return fmt.Sprintf("%s: %s", scope, e.Reason)
	}
	return fmt.Sprintf("%s, node %q: %s", scope, e.NodeName, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is / errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
