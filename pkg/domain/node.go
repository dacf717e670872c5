package domain

import "fmt"

// NodeKind defines how a node behaves during playback.
type NodeKind string

const (
	// KindPlain displays a line and follows its single (optional) continuation.
	KindPlain NodeKind = "plain"
	// KindSingleChoice displays a line with exactly one continuation.
	KindSingleChoice NodeKind = "single_choice"
	// KindMultipleChoice displays a line and waits for the player to pick a choice.
	KindMultipleChoice NodeKind = "multiple_choice"
	// KindVariableCondition gates traversal on a variable comparison.
	// Choice 0 is followed when the gate passes, choice 1 (if any) when it fails.
	KindVariableCondition NodeKind = "variable_condition"
	// KindVariableModification mutates a variable and continues.
	KindVariableModification NodeKind = "variable_modification"
	// KindExternalFunctionCall asks the host to run a gameplay side effect.
	KindExternalFunctionCall NodeKind = "external_function_call"
	// KindExternalStoryEntry hands control to the embedded story interpreter.
	KindExternalStoryEntry NodeKind = "external_story_entry"
)

// Valid reports whether k is one of the known node kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case KindPlain, KindSingleChoice, KindMultipleChoice, KindVariableCondition,
		KindVariableModification, KindExternalFunctionCall, KindExternalStoryEntry:
		return true
	}
	return false
}

// Node is a single point in a dialogue graph.
// Nodes are owned by a Container; edges are weak references by ID.
type Node struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Text           string   `json:"text,omitempty" yaml:"text,omitempty"`
	SpeakerID      string   `json:"speaker_id,omitempty" yaml:"speaker_id,omitempty"`
	EmotionTag     string   `json:"emotion,omitempty" yaml:"emotion,omitempty"`
	IsStartingNode bool     `json:"starting,omitempty" yaml:"starting,omitempty"`
	Kind           NodeKind `json:"kind" yaml:"kind"`

	// Choices are presented in order.
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`

	// Payloads; at most one is set, matching Kind.
	Condition    *VariableCondition    `json:"condition,omitempty" yaml:"condition,omitempty"`
	Modification *VariableModification `json:"modification,omitempty" yaml:"modification,omitempty"`
	Function     *FunctionCall         `json:"function,omitempty" yaml:"function,omitempty"`
	Story        *StoryEntry           `json:"story,omitempty" yaml:"story,omitempty"`
}

// Choice is an outgoing edge. An empty NextID means "end of conversation".
type Choice struct {
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
	NextID string `json:"next,omitempty" yaml:"next,omitempty"`
}

// VariableCondition binds a gate node to a variable comparison.
type VariableCondition struct {
	Variable string            `json:"variable" yaml:"variable"`
	Operator ConditionOperator `json:"operator" yaml:"operator"`
	Literal  Value             `json:"literal" yaml:"literal"`
}

// VariableModification binds a mutation node to a variable update.
type VariableModification struct {
	Variable string               `json:"variable" yaml:"variable"`
	Operator ModificationOperator `json:"operator" yaml:"operator"`
	// Operand is ignored (and may be invalid) for Toggle.
	Operand Value `json:"operand,omitempty" yaml:"operand,omitempty"`
}

// StoryEntry points a node at an external story script and the label to start from.
type StoryEntry struct {
	Script string `json:"script" yaml:"script"`
	Label  string `json:"label" yaml:"label"`
}

// Group is a named category used to organise nodes inside a container.
type Group struct {
	Name string `json:"name" yaml:"name"`
}

// ConditionOperator compares a variable with a literal.
type ConditionOperator string

const (
	OpEqual          ConditionOperator = "=="
	OpNotEqual       ConditionOperator = "!="
	OpGreater        ConditionOperator = ">"
	OpGreaterOrEqual ConditionOperator = ">="
	OpLess           ConditionOperator = "<"
	OpLessOrEqual    ConditionOperator = "<="
)

var conditionAliases = map[string]ConditionOperator{
	"==": OpEqual, "Equal": OpEqual, "equal": OpEqual,
	"!=": OpNotEqual, "NotEqual": OpNotEqual, "not_equal": OpNotEqual,
	">": OpGreater, "Greater": OpGreater, "greater": OpGreater,
	">=": OpGreaterOrEqual, "GreaterOrEqual": OpGreaterOrEqual, "greater_or_equal": OpGreaterOrEqual,
	"<": OpLess, "Less": OpLess, "less": OpLess,
	"<=": OpLessOrEqual, "LessOrEqual": OpLessOrEqual, "less_or_equal": OpLessOrEqual,
}

// ParseConditionOperator accepts either the symbol or the operator name.
func ParseConditionOperator(s string) (ConditionOperator, error) {
	if op, ok := conditionAliases[s]; ok {
		return op, nil
	}
	return "", fmt.Errorf("%w: condition %q", ErrUnsupportedOperator, s)
}

// IsOrdering reports whether the operator needs a total order (numeric only).
func (op ConditionOperator) IsOrdering() bool {
	switch op {
	case OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual:
		return true
	}
	return false
}

// UnmarshalText normalises operator names to their symbols.
func (op *ConditionOperator) UnmarshalText(text []byte) error {
	parsed, err := ParseConditionOperator(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// ModificationOperator is the narrative mutation vocabulary.
type ModificationOperator string

const (
	OpSet      ModificationOperator = "set"
	OpIncrease ModificationOperator = "increase"
	OpDecrease ModificationOperator = "decrease"
	OpToggle   ModificationOperator = "toggle"
)

var modificationAliases = map[string]ModificationOperator{
	"set": OpSet, "Set": OpSet, "=": OpSet,
	"increase": OpIncrease, "Increase": OpIncrease, "+=": OpIncrease,
	"decrease": OpDecrease, "Decrease": OpDecrease, "-=": OpDecrease,
	"toggle": OpToggle, "Toggle": OpToggle, "!": OpToggle,
}

// ParseModificationOperator accepts the operator name or its shorthand symbol.
func ParseModificationOperator(s string) (ModificationOperator, error) {
	if op, ok := modificationAliases[s]; ok {
		return op, nil
	}
	return "", fmt.Errorf("%w: modification %q", ErrUnsupportedOperator, s)
}

// UnmarshalText normalises operator aliases.
func (op *ModificationOperator) UnmarshalText(text []byte) error {
	parsed, err := ParseModificationOperator(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}
