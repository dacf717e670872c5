package rules

import (
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
)

// SupportsModification reports whether op is defined for typ.
func SupportsModification(typ domain.VariableType, op domain.ModificationOperator) bool {
	switch op {
	case domain.OpSet:
		return typ != domain.TypeInvalid
	case domain.OpToggle:
		return typ == domain.TypeBool
	case domain.OpIncrease, domain.OpDecrease:
		return typ == domain.TypeInt || typ == domain.TypeFloat
	}
	return false
}

// NeedsOperand reports whether op reads its operand. Toggle does not.
func NeedsOperand(op domain.ModificationOperator) bool {
	return op != domain.OpToggle
}

// Compute returns the next value of current under op.
// It is pure; use Apply to commit the result.
func Compute(current domain.Value, op domain.ModificationOperator, operand domain.Value) (domain.Value, error) {
	if !SupportsModification(current.Type(), op) {
		return domain.Value{}, fmt.Errorf("%w: %q on %s", domain.ErrUnsupportedOperator, op, current.Type())
	}
	if NeedsOperand(op) && operand.Type() != current.Type() {
		return domain.Value{}, fmt.Errorf("%w: operand is %s, variable is %s", domain.ErrTypeMismatch, operand.Type(), current.Type())
	}

	switch op {
	case domain.OpSet:
		return operand, nil
	case domain.OpToggle:
		b, _ := current.AsBool()
		return domain.BoolValue(!b), nil
	}

	if current.Type() == domain.TypeInt {
		a, _ := current.AsInt()
		b, _ := operand.AsInt()
		return addInt(a, b, op == domain.OpDecrease)
	}
	a, _ := current.AsFloat()
	b, _ := operand.AsFloat()
	if op == domain.OpDecrease {
		b = -b
	}
	return domain.FloatValue(a + b), nil
}

// addInt computes a+b, or a-b when subtract is set, refusing to wrap.
func addInt(a, b int64, subtract bool) (domain.Value, error) {
	var r int64
	var overflow bool
	if subtract {
		r = a - b
		overflow = (b > 0 && r > a) || (b < 0 && r < a)
	} else {
		r = a + b
		overflow = (b > 0 && r < a) || (b < 0 && r > a)
	}
	if overflow {
		return domain.Value{}, fmt.Errorf("%w: %d and %d", domain.ErrIntOverflow, a, b)
	}
	return domain.IntValue(r), nil
}

// Apply computes the next value of name and commits it through store.Set.
// This is the single mutation path for narrative-driven changes.
func Apply(store Store, name string, op domain.ModificationOperator, operand domain.Value) (domain.Value, error) {
	current, err := store.Get(name)
	if err != nil {
		return domain.Value{}, err
	}
	next, err := Compute(current, op, operand)
	if err != nil {
		return domain.Value{}, fmt.Errorf("modification of %s: %w", name, err)
	}
	if err := store.Set(name, next); err != nil {
		return domain.Value{}, err
	}
	return next, nil
}
