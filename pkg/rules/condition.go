// Package rules holds the pure condition and modification semantics applied
// to narrative variables.
package rules

import (
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Store is the subset of the variable store the rules need.
type Store interface {
	Get(name string) (domain.Value, error)
	Set(name string, value domain.Value) error
}

// SupportsCondition reports whether op is defined for typ.
// Bool and String only support equality.
func SupportsCondition(typ domain.VariableType, op domain.ConditionOperator) bool {
	switch typ {
	case domain.TypeBool, domain.TypeString:
		return op == domain.OpEqual || op == domain.OpNotEqual
	case domain.TypeInt, domain.TypeFloat:
		switch op {
		case domain.OpEqual, domain.OpNotEqual, domain.OpGreater,
			domain.OpGreaterOrEqual, domain.OpLess, domain.OpLessOrEqual:
			return true
		}
	}
	return false
}

// Evaluate compares current against literal.
// Floats compare exactly; callers needing a tolerance must round first.
func Evaluate(current domain.Value, op domain.ConditionOperator, literal domain.Value) (bool, error) {
	if current.Type() != literal.Type() {
		return false, fmt.Errorf("%w: comparing %s with %s", domain.ErrTypeMismatch, current.Type(), literal.Type())
	}
	if !SupportsCondition(current.Type(), op) {
		return false, fmt.Errorf("%w: %q on %s", domain.ErrUnsupportedOperator, op, current.Type())
	}

	switch current.Type() {
	case domain.TypeBool:
		a, _ := current.AsBool()
		b, _ := literal.AsBool()
		return equality(op, a == b), nil
	case domain.TypeString:
		a, _ := current.AsString()
		b, _ := literal.AsString()
		return equality(op, a == b), nil
	case domain.TypeInt:
		a, _ := current.AsInt()
		b, _ := literal.AsInt()
		return compare(op, a, b), nil
	default:
		a, _ := current.AsFloat()
		b, _ := literal.AsFloat()
		return compare(op, a, b), nil
	}
}

// Check reads name from store and evaluates it against literal.
func Check(store Store, name string, op domain.ConditionOperator, literal domain.Value) (bool, error) {
	current, err := store.Get(name)
	if err != nil {
		return false, err
	}
	ok, err := Evaluate(current, op, literal)
	if err != nil {
		return false, fmt.Errorf("condition on %s: %w", name, err)
	}
	return ok, nil
}

func equality(op domain.ConditionOperator, equal bool) bool {
	if op == domain.OpNotEqual {
		return !equal
	}
	return equal
}

func compare[T int64 | float64](op domain.ConditionOperator, a, b T) bool {
	switch op {
	case domain.OpEqual:
		return a == b
	case domain.OpNotEqual:
		return a != b
	case domain.OpGreater:
		return a > b
	case domain.OpGreaterOrEqual:
		return a >= b
	case domain.OpLess:
		return a < b
	default:
		return a <= b
	}
}
