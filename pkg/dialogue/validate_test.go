package dialogue_test

import (
	"strings"
	"testing"

	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reasons(errs []*domain.ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Reason
	}
	return out
}

func hasReason(errs []*domain.ValidationError, fragment string) bool {
	for _, e := range errs {
		if strings.Contains(e.Reason, fragment) {
			return true
		}
	}
	return false
}

func catalog(t *testing.T) *variables.Store {
	t.Helper()
	store := variables.NewStore()
	require.NoError(t, store.Register("Gold", domain.TypeInt, domain.IntValue(0), ""))
	require.NoError(t, store.Register("Met", domain.TypeBool, domain.BoolValue(false), ""))
	require.NoError(t, store.Register("Title", domain.TypeString, domain.StringValue(""), ""))
	return store
}

func TestValidate_CleanContainer(t *testing.T) {
	c := dialogue.NewContainer("")
	require.NoError(t, c.AddGroup("Shop"))
	require.NoError(t, c.AddGroupedNode("Shop", &domain.Node{
		ID: "gate", Name: "Gate", Kind: domain.KindVariableCondition,
		Condition: &domain.VariableCondition{Variable: "Gold", Operator: domain.OpGreater, Literal: domain.IntValue(0)},
		Choices:   []domain.Choice{{NextID: "flip"}, {}},
	}))
	require.NoError(t, c.AddGroupedNode("Shop", &domain.Node{
		ID: "flip", Name: "Flip", Kind: domain.KindVariableModification,
		Modification: &domain.VariableModification{Variable: "Met", Operator: domain.OpToggle},
	}))

	errs := dialogue.Validate(c, catalog(t))
	assert.Empty(t, errs, reasons(errs))
	assert.NoError(t, dialogue.ValidateErr(c, catalog(t)))
}

func TestValidate_OperandTypes(t *testing.T) {
	c := dialogue.NewContainer("")
	require.NoError(t, c.AddUngroupedNode(&domain.Node{
		Name: "BadLiteral", Kind: domain.KindVariableCondition,
		Condition: &domain.VariableCondition{Variable: "Gold", Operator: domain.OpEqual, Literal: domain.StringValue("5")},
	}))
	require.NoError(t, c.AddUngroupedNode(&domain.Node{
		Name: "OrderedString", Kind: domain.KindVariableCondition,
		Condition: &domain.VariableCondition{Variable: "Title", Operator: domain.OpLess, Literal: domain.StringValue("m")},
	}))
	require.NoError(t, c.AddUngroupedNode(&domain.Node{
		Name: "ToggleInt", Kind: domain.KindVariableModification,
		Modification: &domain.VariableModification{Variable: "Gold", Operator: domain.OpToggle},
	}))
	require.NoError(t, c.AddUngroupedNode(&domain.Node{
		Name: "Ghost", Kind: domain.KindVariableModification,
		Modification: &domain.VariableModification{Variable: "Silver", Operator: domain.OpSet, Operand: domain.IntValue(1)},
	}))

	errs := dialogue.Validate(c, catalog(t))
	assert.True(t, hasReason(errs, "literal is string but Gold is int"), reasons(errs))
	assert.True(t, hasReason(errs, `operator "<" is not supported on string`), reasons(errs))
	assert.True(t, hasReason(errs, `operator "toggle" is not supported on int`), reasons(errs))
	assert.True(t, hasReason(errs, `unknown variable "Silver"`), reasons(errs))
}

func TestValidate_NilCatalogSkipsVariables(t *testing.T) {
	c := dialogue.NewContainer("")
	require.NoError(t, c.AddUngroupedNode(&domain.Node{
		Name: "Ghost", Kind: domain.KindVariableCondition,
		Condition: &domain.VariableCondition{Variable: "Silver", Operator: domain.OpEqual, Literal: domain.IntValue(1)},
	}))
	assert.Empty(t, dialogue.Validate(c, nil))
}

func TestValidate_Structure(t *testing.T) {
	c := dialogue.NewContainer("")
	require.NoError(t, c.AddGroup("Intro"))
	require.NoError(t, c.AddGroup("Intro"))
	require.NoError(t, c.AddGroupedNode("Intro", plain("a", "Start")))
	require.NoError(t, c.AddGroupedNode("Intro", plain("b", "Start")))
	require.NoError(t, c.AddUngroupedNode(plain("c", "Start")))

	require.NoError(t, c.AddUngroupedNode(&domain.Node{
		Name: "Dangling", Kind: domain.KindSingleChoice,
		Choices: []domain.Choice{{NextID: "missing"}},
	}))
	require.NoError(t, c.AddUngroupedNode(&domain.Node{Name: "Story", Kind: domain.KindExternalStoryEntry, Story: &domain.StoryEntry{Script: "intro.lua"}}))
	require.NoError(t, c.AddUngroupedNode(&domain.Node{Name: "Custom", Kind: domain.KindExternalFunctionCall, Function: &domain.FunctionCall{Function: domain.FuncCustom}}))
	require.NoError(t, c.AddUngroupedNode(&domain.Node{Name: "Empty", Kind: domain.KindVariableCondition}))
	require.NoError(t, c.AddUngroupedNode(&domain.Node{Name: "Mixed", Kind: domain.KindPlain, Story: &domain.StoryEntry{Script: "x", Label: "y"}}))
	require.NoError(t, c.AddUngroupedNode(&domain.Node{Name: "Weird", Kind: "soliloquy"}))

	errs := dialogue.Validate(c, nil)
	for _, want := range []string{
		"group declared 2 times",
		"name shared by 2 nodes in this scope",
		`choice 0 targets unknown node "missing"`,
		"story entry has no entry label",
		"custom function call has no name",
		"variable_condition node is missing its payload",
		"plain node carries a external_story_entry payload",
		`unknown node kind "soliloquy"`,
	} {
		assert.True(t, hasReason(errs, want), "missing %q in %v", want, reasons(errs))
	}

	var shared int
	for _, e := range errs {
		if strings.HasPrefix(e.Reason, "name shared") {
			shared++
			assert.Equal(t, "Intro", e.Group, "ungrouped Start does not collide with grouped ones")
		}
	}
	assert.Equal(t, 2, shared)

	err := dialogue.ValidateErr(c, nil)
	require.Error(t, err)
	assert.Len(t, domain.ValidationErrors(err), len(errs))
}
