package story

import (
	"fmt"
	"math"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Infer maps an interpreter-native value to a narrative value.
// Integers become Int, floats Float, booleans Bool; anything else is kept as
// its string form.
func Infer(native any) domain.Value {
	switch v := native.(type) {
	case bool:
		return domain.BoolValue(v)
	case int:
		return domain.IntValue(int64(v))
	case int32:
		return domain.IntValue(int64(v))
	case int64:
		return domain.IntValue(v)
	case float32:
		return domain.FloatValue(float64(v))
	case float64:
		return domain.FloatValue(v)
	case string:
		return domain.StringValue(v)
	case nil:
		return domain.StringValue("")
	default:
		return domain.StringValue(fmt.Sprint(v))
	}
}

// Convert turns an interpreter-native value into a value of type want.
// Float accepts integers; Int accepts floats only when they are whole.
// Bool and String must match exactly.
func Convert(want domain.VariableType, native any) (domain.Value, error) {
	if native == nil {
		return domain.Value{}, fmt.Errorf("%w: %s variable received nil", domain.ErrTypeMismatch, want)
	}
	got := Infer(native)
	if got.Type() == want {
		return got, nil
	}
	switch {
	case want == domain.TypeFloat && got.Type() == domain.TypeInt:
		i, _ := got.AsInt()
		return domain.FloatValue(float64(i)), nil
	case want == domain.TypeInt && got.Type() == domain.TypeFloat:
		f, _ := got.AsFloat()
		if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) <= 1<<53 {
			return domain.IntValue(int64(f)), nil
		}
		return domain.Value{}, fmt.Errorf("%w: %v is not a whole number", domain.ErrTypeMismatch, f)
	}
	return domain.Value{}, fmt.Errorf("%w: %s variable received %s", domain.ErrTypeMismatch, want, got.Type())
}
