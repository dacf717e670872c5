package dialogue

import (
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/rules"
)

// Catalog resolves declared variable types. *variables.Store satisfies it.
type Catalog interface {
	TypeOf(name string) (domain.VariableType, error)
}

// Validate checks the container for structural problems:
//   - condition/modification operands whose type differs from the bound
//     variable, unknown variables and operators the type does not support;
//   - node names repeated inside one scope (group or ungrouped);
//   - groups declared more than once and nodes registered in more than one bucket;
//   - choices pointing at nodes that do not exist, and incomplete payloads.
//
// A nil catalog skips the variable checks.
func Validate(c *Container, catalog Catalog) []*domain.ValidationError {
	v := &validation{c: c, catalog: catalog}

	for _, name := range c.groupNames.Collisions() {
		v.report(nil, name, fmt.Sprintf("group declared %d times", c.groupNames.Count(name)))
	}

	buckets := make([]*bucket, 0, len(c.groups)+1)
	buckets = append(buckets, c.groups...)
	buckets = append(buckets, c.ungrouped)

	seen := make(map[string]int)
	for _, b := range buckets {
		for _, id := range b.nodeIDs {
			seen[id]++
		}
		for _, name := range b.names.Collisions() {
			for _, id := range b.nodeIDs {
				if node := c.nodes[id]; node.Name == name {
					v.report(node, b.name, fmt.Sprintf("name shared by %d nodes in this scope", b.names.Count(name)))
				}
			}
		}
	}

	for _, node := range c.Nodes() {
		group := c.owner[node.ID].name
		if seen[node.ID] > 1 {
			v.report(node, group, fmt.Sprintf("node registered in %d buckets", seen[node.ID]))
		}
		v.checkNode(node, group)
	}

	return v.errs
}

// ValidateErr wraps Validate's findings in a single *domain.AggregateError.
// It returns nil when the container is valid.
func ValidateErr(c *Container, catalog Catalog) error {
	found := Validate(c, catalog)
	if len(found) == 0 {
		return nil
	}
	errs := make([]error, len(found))
	for i, e := range found {
		errs[i] = e
	}
	return &domain.AggregateError{Errors: errs}
}

type validation struct {
	c       *Container
	catalog Catalog
	errs    []*domain.ValidationError
}

func (v *validation) report(node *domain.Node, group, reason string) {
	e := &domain.ValidationError{Group: group, Reason: reason}
	if node != nil {
		e.NodeID = node.ID
		e.NodeName = node.Name
	}
	v.errs = append(v.errs, e)
}

func (v *validation) checkNode(node *domain.Node, group string) {
	if node.Name == "" {
		v.report(node, group, "node has no name")
	}
	if !node.Kind.Valid() {
		v.report(node, group, fmt.Sprintf("unknown node kind %q", node.Kind))
	}

	for i, choice := range node.Choices {
		if choice.NextID == "" {
			continue
		}
		if _, ok := v.c.nodes[choice.NextID]; !ok {
			v.report(node, group, fmt.Sprintf("choice %d targets unknown node %q", i, choice.NextID))
		}
	}

	v.checkPayloads(node, group)

	switch node.Kind {
	case domain.KindPlain, domain.KindSingleChoice:
		if len(node.Choices) > 1 {
			v.report(node, group, fmt.Sprintf("%s node has %d choices, expected at most 1", node.Kind, len(node.Choices)))
		}
	case domain.KindVariableCondition:
		if len(node.Choices) > 2 {
			v.report(node, group, fmt.Sprintf("condition node has %d choices, expected pass and fail only", len(node.Choices)))
		}
		if node.Condition != nil {
			v.checkCondition(node, group)
		}
	case domain.KindVariableModification:
		if node.Modification != nil {
			v.checkModification(node, group)
		}
	case domain.KindExternalFunctionCall:
		if fn := node.Function; fn != nil {
			if !fn.Function.Valid() {
				v.report(node, group, fmt.Sprintf("unknown external function %q", fn.Function))
			}
			if fn.IsCustom() && fn.Name == "" {
				v.report(node, group, "custom function call has no name")
			}
		}
	case domain.KindExternalStoryEntry:
		if st := node.Story; st != nil {
			if st.Script == "" {
				v.report(node, group, "story entry has no script")
			}
			if st.Label == "" {
				v.report(node, group, "story entry has no entry label")
			}
		}
	}
}

func (v *validation) checkPayloads(node *domain.Node, group string) {
	payloads := []struct {
		kind    domain.NodeKind
		present bool
	}{
		{domain.KindVariableCondition, node.Condition != nil},
		{domain.KindVariableModification, node.Modification != nil},
		{domain.KindExternalFunctionCall, node.Function != nil},
		{domain.KindExternalStoryEntry, node.Story != nil},
	}
	for _, p := range payloads {
		switch {
		case p.kind == node.Kind && !p.present:
			v.report(node, group, fmt.Sprintf("%s node is missing its payload", p.kind))
		case p.kind != node.Kind && p.present:
			v.report(node, group, fmt.Sprintf("%s node carries a %s payload", node.Kind, p.kind))
		}
	}
}

func (v *validation) checkCondition(node *domain.Node, group string) {
	cond := node.Condition
	declared, ok := v.declared(node, group, cond.Variable)
	if !ok {
		return
	}
	if cond.Literal.Type() != declared {
		v.report(node, group, fmt.Sprintf("literal is %s but %s is %s", cond.Literal.Type(), cond.Variable, declared))
	}
	if !rules.SupportsCondition(declared, cond.Operator) {
		v.report(node, group, fmt.Sprintf("operator %q is not supported on %s variable %s", cond.Operator, declared, cond.Variable))
	}
}

func (v *validation) checkModification(node *domain.Node, group string) {
	mod := node.Modification
	declared, ok := v.declared(node, group, mod.Variable)
	if !ok {
		return
	}
	if rules.NeedsOperand(mod.Operator) && mod.Operand.Type() != declared {
		v.report(node, group, fmt.Sprintf("operand is %s but %s is %s", mod.Operand.Type(), mod.Variable, declared))
	}
	if !rules.SupportsModification(declared, mod.Operator) {
		v.report(node, group, fmt.Sprintf("operator %q is not supported on %s variable %s", mod.Operator, declared, mod.Variable))
	}
}

func (v *validation) declared(node *domain.Node, group, name string) (domain.VariableType, bool) {
	if v.catalog == nil {
		return domain.TypeInvalid, false
	}
	typ, err := v.catalog.TypeOf(name)
	if err != nil {
		v.report(node, group, fmt.Sprintf("unknown variable %q", name))
		return domain.TypeInvalid, false
	}
	return typ, true
}
