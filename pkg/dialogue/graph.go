package dialogue

import (
	"errors"
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/rules"
)

var (
	// ErrWrongKind is returned when a primitive is used on a node of another kind.
	ErrWrongKind = errors.New("wrong node kind")
	// ErrStepBudget is returned by Walk when a conversation visits more nodes than allowed.
	ErrStepBudget = errors.New("step budget exhausted")
)

// DefaultStepBudget bounds Walk when the caller passes a non-positive budget.
const DefaultStepBudget = 1000

// GetChoices returns a copy of the node's choices in presentation order.
func GetChoices(node *domain.Node) []domain.Choice {
	if node == nil || len(node.Choices) == 0 {
		return nil
	}
	out := make([]domain.Choice, len(node.Choices))
	copy(out, node.Choices)
	return out
}

// ResolveNext follows choice idx of node.
// It returns (nil, nil) when the target is empty or no longer exists: the
// conversation ends there. An index outside the choice list is an error.
func (c *Container) ResolveNext(node *domain.Node, idx int) (*domain.Node, error) {
	if node == nil {
		return nil, fmt.Errorf("cannot resolve choices of nil node")
	}
	if idx < 0 || idx >= len(node.Choices) {
		return nil, fmt.Errorf("%w: choice %d of %d on %q", domain.ErrIndexOutOfRange, idx, len(node.Choices), node.Name)
	}
	target := node.Choices[idx].NextID
	if target == "" {
		return nil, nil
	}
	next, ok := c.nodes[target]
	if !ok {
		return nil, nil
	}
	return next, nil
}

// IsGate reports whether node is a variable condition.
func IsGate(node *domain.Node) bool {
	return node != nil && node.Kind == domain.KindVariableCondition
}

// EvaluateGate evaluates a condition node against store.
func EvaluateGate(node *domain.Node, store rules.Store) (bool, error) {
	if !IsGate(node) || node.Condition == nil {
		return false, fmt.Errorf("%w: %q is not a variable condition", ErrWrongKind, nodeName(node))
	}
	cond := node.Condition
	return rules.Check(store, cond.Variable, cond.Operator, cond.Literal)
}

// ApplyMutation applies a modification node to store and returns the committed value.
func ApplyMutation(node *domain.Node, store rules.Store) (domain.Value, error) {
	if node == nil || node.Kind != domain.KindVariableModification || node.Modification == nil {
		return domain.Value{}, fmt.Errorf("%w: %q is not a variable modification", ErrWrongKind, nodeName(node))
	}
	mod := node.Modification
	return rules.Apply(store, mod.Variable, mod.Operator, mod.Operand)
}

// FunctionCall packages the external-function request of node for the host.
func FunctionCall(node *domain.Node) (domain.FunctionCall, error) {
	if node == nil || node.Kind != domain.KindExternalFunctionCall || node.Function == nil {
		return domain.FunctionCall{}, fmt.Errorf("%w: %q is not an external function call", ErrWrongKind, nodeName(node))
	}
	return *node.Function, nil
}

// IsInteractive reports whether playback must wait for a player choice at node.
func IsInteractive(node *domain.Node) bool {
	return node != nil && node.Kind == domain.KindMultipleChoice && len(node.Choices) > 1
}

// Advance moves past a node that needs no player input.
//
// Condition nodes follow choice 0 when the gate passes and choice 1 (if any)
// when it fails; modification nodes commit their mutation first. Every other
// non-interactive kind follows choice 0. Function and story nodes are only
// followed: the caller runs their side effects before advancing.
// A nil node with a nil error means the conversation ended.
func (c *Container) Advance(node *domain.Node, store rules.Store) (*domain.Node, error) {
	if node == nil {
		return nil, nil
	}
	if IsInteractive(node) {
		return nil, fmt.Errorf("%w: %q waits for a choice", ErrWrongKind, nodeName(node))
	}

	idx := 0
	switch node.Kind {
	case domain.KindVariableCondition:
		ok, err := EvaluateGate(node, store)
		if err != nil {
			return nil, err
		}
		if !ok {
			idx = 1
		}
	case domain.KindVariableModification:
		if _, err := ApplyMutation(node, store); err != nil {
			return nil, err
		}
	}

	if idx >= len(node.Choices) {
		return nil, nil
	}
	return c.ResolveNext(node, idx)
}

// Visitor is called once per node reached by Walk, before the node is left.
// For interactive nodes the returned index selects the choice to follow; it is
// ignored elsewhere. Side effects of function and story nodes belong here.
type Visitor func(node *domain.Node) (int, error)

// Walk plays a conversation from start until it ends or visit fails.
// Graphs may contain cycles, so at most budget nodes are visited.
func (c *Container) Walk(start *domain.Node, store rules.Store, budget int, visit Visitor) error {
	if budget <= 0 {
		budget = DefaultStepBudget
	}
	node := start
	for steps := 0; node != nil; steps++ {
		if steps >= budget {
			return fmt.Errorf("%w: %d steps, stopped at %q", ErrStepBudget, budget, node.Name)
		}
		idx, err := visit(node)
		if err != nil {
			return err
		}
		if IsInteractive(node) {
			node, err = c.ResolveNext(node, idx)
		} else {
			node, err = c.Advance(node, store)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func nodeName(node *domain.Node) string {
	if node == nil {
		return "<nil>"
	}
	return node.Name
}
