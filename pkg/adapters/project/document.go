// Package project reads and writes dialogue projects: a container of grouped
// nodes plus the variable declarations they bind to, stored as YAML or JSON.
package project

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Document is the on-disk schema of a project.
type Document struct {
	FileName  string            `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	Variables []domain.Variable `json:"variables,omitempty" yaml:"variables,omitempty"`
	Groups    []GroupDocument   `json:"groups,omitempty" yaml:"groups,omitempty"`
	Ungrouped []NodeDocument    `json:"ungrouped,omitempty" yaml:"ungrouped,omitempty"`
}

// GroupDocument is a named group and its nodes in order.
type GroupDocument struct {
	Name  string         `json:"name" yaml:"name"`
	Nodes []NodeDocument `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

// NodeDocument mirrors domain.Node. Function accepts either the full
// {function, name, parameter} map or the "Function(parameter)" shorthand,
// where an unknown function name means a Custom call.
type NodeDocument struct {
	ID           string                       `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string                       `json:"name" yaml:"name"`
	Text         string                       `json:"text,omitempty" yaml:"text,omitempty"`
	SpeakerID    string                       `json:"speaker_id,omitempty" yaml:"speaker_id,omitempty"`
	EmotionTag   string                       `json:"emotion,omitempty" yaml:"emotion,omitempty"`
	Starting     bool                         `json:"starting,omitempty" yaml:"starting,omitempty"`
	Kind         domain.NodeKind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	Choices      []domain.Choice              `json:"choices,omitempty" yaml:"choices,omitempty"`
	Condition    *domain.VariableCondition    `json:"condition,omitempty" yaml:"condition,omitempty"`
	Modification *domain.VariableModification `json:"modification,omitempty" yaml:"modification,omitempty"`
	Function     any                          `json:"function,omitempty" yaml:"function,omitempty"`
	Story        *domain.StoryEntry           `json:"story,omitempty" yaml:"story,omitempty"`
}

var shorthand = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:\((.*)\))?\s*$`)

// ParseFunctionCall parses "GiveItem(sword)" or "OpenShop(armory)".
// Names outside the enumeration become Custom calls.
func ParseFunctionCall(s string) (domain.FunctionCall, error) {
	m := shorthand.FindStringSubmatch(s)
	if m == nil {
		return domain.FunctionCall{}, fmt.Errorf("invalid function call %q", s)
	}
	fn := domain.ExternalFunction(m[1])
	if fn == domain.FuncCustom {
		return domain.FunctionCall{}, fmt.Errorf("invalid function call %q: Custom needs a name", s)
	}
	if fn.Valid() {
		return domain.FunctionCall{Function: fn, Parameter: m[2]}, nil
	}
	return domain.FunctionCall{Function: domain.FuncCustom, Name: m[1], Parameter: m[2]}, nil
}

func decodeFunction(raw any) (*domain.FunctionCall, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		call, err := ParseFunctionCall(v)
		if err != nil {
			return nil, err
		}
		return &call, nil
	case *domain.FunctionCall:
		return v, nil
	default:
		var call domain.FunctionCall
		if err := mapstructure.Decode(v, &call); err != nil {
			return nil, fmt.Errorf("invalid function call: %w", err)
		}
		if call.Function == "" && call.Name != "" {
			call.Function = domain.FuncCustom
		}
		return &call, nil
	}
}

func (n NodeDocument) node() (*domain.Node, error) {
	fn, err := decodeFunction(n.Function)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.Name, err)
	}
	kind := n.Kind
	if kind == "" {
		kind = inferKind(n, fn)
	}
	return &domain.Node{
		ID:             n.ID,
		Name:           n.Name,
		Text:           n.Text,
		SpeakerID:      n.SpeakerID,
		EmotionTag:     n.EmotionTag,
		IsStartingNode: n.Starting,
		Kind:           kind,
		Choices:        n.Choices,
		Condition:      n.Condition,
		Modification:   n.Modification,
		Function:       fn,
		Story:          n.Story,
	}, nil
}

// inferKind picks a kind from the payload when the author omitted it.
func inferKind(n NodeDocument, fn *domain.FunctionCall) domain.NodeKind {
	switch {
	case n.Condition != nil:
		return domain.KindVariableCondition
	case n.Modification != nil:
		return domain.KindVariableModification
	case fn != nil:
		return domain.KindExternalFunctionCall
	case n.Story != nil:
		return domain.KindExternalStoryEntry
	case len(n.Choices) > 1:
		return domain.KindMultipleChoice
	case len(n.Choices) == 1:
		return domain.KindSingleChoice
	default:
		return domain.KindPlain
	}
}

func nodeDocument(n *domain.Node) NodeDocument {
	doc := NodeDocument{
		ID:           n.ID,
		Name:         n.Name,
		Text:         n.Text,
		SpeakerID:    n.SpeakerID,
		EmotionTag:   n.EmotionTag,
		Starting:     n.IsStartingNode,
		Kind:         n.Kind,
		Choices:      n.Choices,
		Condition:    n.Condition,
		Modification: n.Modification,
		Story:        n.Story,
	}
	if n.Function != nil {
		doc.Function = n.Function
	}
	return doc
}

// FormatFunctionCall is the inverse of ParseFunctionCall.
func FormatFunctionCall(call domain.FunctionCall) string {
	name := string(call.Function)
	if call.IsCustom() {
		name = call.Name
	}
	if call.Parameter == "" {
		return name
	}
	return name + "(" + strings.TrimSpace(call.Parameter) + ")"
}
