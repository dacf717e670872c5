package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// VariableType is the closed set of value kinds dialogue logic can branch on.
type VariableType int

const (
	TypeInvalid VariableType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
)

func (t VariableType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "invalid"
	}
}

// ParseVariableType converts a type name ("bool", "int", "float", "string") to a VariableType.
func ParseVariableType(s string) (VariableType, error) {
	switch s {
	case "bool", "Bool", "boolean":
		return TypeBool, nil
	case "int", "Int", "integer":
		return TypeInt, nil
	case "float", "Float", "double":
		return TypeFloat, nil
	case "string", "String":
		return TypeString, nil
	default:
		return TypeInvalid, fmt.Errorf("unsupported variable type: %q", s)
	}
}

// MarshalText encodes the type by name so documents stay human-editable.
func (t VariableType) MarshalText() ([]byte, error) {
	if t == TypeInvalid {
		return nil, fmt.Errorf("cannot encode invalid variable type")
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *VariableType) UnmarshalText(text []byte) error {
	parsed, err := ParseVariableType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value is a typed narrative value. Exactly one of the typed slots is meaningful,
// selected by Type. The zero Value is invalid and carries no type.
type Value struct {
	typ VariableType
	b   bool
	i   int64
	f   float64
	s   string
}

// BoolValue creates a Bool value.
func BoolValue(v bool) Value { return Value{typ: TypeBool, b: v} }

// IntValue creates an Int value.
func IntValue(v int64) Value { return Value{typ: TypeInt, i: v} }

// FloatValue creates a Float value.
func FloatValue(v float64) Value { return Value{typ: TypeFloat, f: v} }

// StringValue creates a String value.
func StringValue(v string) Value { return Value{typ: TypeString, s: v} }

// ZeroValue returns the zero value of the given type (false, 0, 0.0, "").
func ZeroValue(t VariableType) Value {
	return Value{typ: t}
}

// Type reports the value's type.
func (v Value) Type() VariableType { return v.typ }

// IsValid reports whether the value carries a type.
func (v Value) IsValid() bool { return v.typ != TypeInvalid }

// IsZero reports whether the value is the untyped zero Value.
// Encoders use it for omitempty; a typed false/0/"" is not zero.
func (v Value) IsZero() bool { return v.typ == TypeInvalid }

// AsBool returns the boolean payload or ErrTypeMismatch.
func (v Value) AsBool() (bool, error) {
	if v.typ != TypeBool {
		return false, fmt.Errorf("%w: want bool, have %s", ErrTypeMismatch, v.typ)
	}
	return v.b, nil
}

// AsInt returns the integer payload or ErrTypeMismatch.
func (v Value) AsInt() (int64, error) {
	if v.typ != TypeInt {
		return 0, fmt.Errorf("%w: want int, have %s", ErrTypeMismatch, v.typ)
	}
	return v.i, nil
}

// AsFloat returns the float payload or ErrTypeMismatch.
func (v Value) AsFloat() (float64, error) {
	if v.typ != TypeFloat {
		return 0, fmt.Errorf("%w: want float, have %s", ErrTypeMismatch, v.typ)
	}
	return v.f, nil
}

// AsString returns the string payload or ErrTypeMismatch.
func (v Value) AsString() (string, error) {
	if v.typ != TypeString {
		return "", fmt.Errorf("%w: want string, have %s", ErrTypeMismatch, v.typ)
	}
	return v.s, nil
}

// Native returns the payload as a plain Go scalar (bool, int64, float64, string).
// An invalid value returns nil.
func (v Value) Native() any {
	switch v.typ {
	case TypeBool:
		return v.b
	case TypeInt:
		return v.i
	case TypeFloat:
		return v.f
	case TypeString:
		return v.s
	default:
		return nil
	}
}

// Equal reports whether both values have the same type and payload.
// Floats compare exactly.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeBool:
		return v.b == other.b
	case TypeInt:
		return v.i == other.i
	case TypeFloat:
		return v.f == other.f
	case TypeString:
		return v.s == other.s
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.typ {
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeString:
		return v.s
	default:
		return "<invalid>"
	}
}

// ParseValue parses text into a value of the given type.
func ParseValue(t VariableType, text string) (Value, error) {
	switch t {
	case TypeBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a bool", ErrTypeMismatch, text)
		}
		return BoolValue(b), nil
	case TypeInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an int", ErrTypeMismatch, text)
		}
		return IntValue(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a float", ErrTypeMismatch, text)
		}
		return FloatValue(f), nil
	case TypeString:
		return StringValue(text), nil
	default:
		return Value{}, fmt.Errorf("cannot parse value of type %s", t)
	}
}

// valueDocument is the on-disk form of a Value: exactly one field is populated.
type valueDocument struct {
	Bool   *bool    `json:"bool,omitempty" yaml:"bool,omitempty"`
	Int    *int64   `json:"int,omitempty" yaml:"int,omitempty"`
	Float  *float64 `json:"float,omitempty" yaml:"float,omitempty"`
	String *string  `json:"string,omitempty" yaml:"string,omitempty"`
}

func (v Value) document() *valueDocument {
	doc := &valueDocument{}
	switch v.typ {
	case TypeBool:
		doc.Bool = &v.b
	case TypeInt:
		doc.Int = &v.i
	case TypeFloat:
		doc.Float = &v.f
	case TypeString:
		doc.String = &v.s
	default:
		return nil
	}
	return doc
}

func (d *valueDocument) value() (Value, error) {
	var out Value
	populated := 0
	if d.Bool != nil {
		out = BoolValue(*d.Bool)
		populated++
	}
	if d.Int != nil {
		out = IntValue(*d.Int)
		populated++
	}
	if d.Float != nil {
		out = FloatValue(*d.Float)
		populated++
	}
	if d.String != nil {
		out = StringValue(*d.String)
		populated++
	}
	if populated != 1 {
		return Value{}, fmt.Errorf("value must populate exactly one of bool/int/float/string, got %d", populated)
	}
	return out, nil
}

// MarshalJSON encodes the value as {"<type>": payload}.
func (v Value) MarshalJSON() ([]byte, error) {
	doc := v.document()
	if doc == nil {
		return []byte("null"), nil
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the {"<type>": payload} form.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var doc valueDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := doc.value()
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML encodes the value with the same shape as JSON.
func (v Value) MarshalYAML() (any, error) {
	doc := v.document()
	if doc == nil {
		return nil, nil
	}
	return doc, nil
}

// UnmarshalYAML decodes the {"<type>": payload} form.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var doc valueDocument
	if err := unmarshal(&doc); err != nil {
		return err
	}
	parsed, err := doc.value()
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Variable is a declared narrative variable. Its Type never changes after creation.
type Variable struct {
	Name        string       `json:"name" yaml:"name"`
	Type        VariableType `json:"type" yaml:"type"`
	Default     Value        `json:"default" yaml:"default"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
}

// Snapshot is a persisted copy of live variable values.
type Snapshot struct {
	Values  map[string]Value `json:"values"`
	SavedAt time.Time        `json:"saved_at"`
}

// NewSnapshot creates an empty snapshot stamped with the current time.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Values:  make(map[string]Value),
		SavedAt: time.Now().UTC(),
	}
}
