package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/colloquy/internal/presentation/graph"
	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	c := dialogue.NewContainer("tavern.yaml")
	require.NoError(t, c.AddGroupedNode("Bar", &domain.Node{
		ID: "greet", Name: "Start", Kind: domain.KindMultipleChoice, IsStartingNode: true,
		Choices: []domain.Choice{{Text: "Buy a \"drink\"", NextID: "check"}, {Text: "Cellar", NextID: "cellar"}},
	}))
	require.NoError(t, c.AddGroupedNode("Bar", &domain.Node{
		ID: "check", Name: "CanAfford", Kind: domain.KindVariableCondition,
		Condition: &domain.VariableCondition{Variable: "Gold", Operator: domain.OpGreaterOrEqual, Literal: domain.IntValue(10)},
		Choices:   []domain.Choice{{NextID: "pay"}, {NextID: "gone"}},
	}))
	require.NoError(t, c.AddGroupedNode("Bar", &domain.Node{
		ID: "pay", Name: "Pay", Kind: domain.KindVariableModification,
		Modification: &domain.VariableModification{Variable: "HasKey", Operator: domain.OpToggle},
	}))
	require.NoError(t, c.AddGroupedNode("Cellar Door", &domain.Node{
		ID: "cellar", Name: "Cellar", Kind: domain.KindExternalStoryEntry,
		Story: &domain.StoryEntry{Script: "tavern.lua", Label: "cellar"},
	}))
	require.NoError(t, c.AddUngroupedNode(&domain.Node{
		ID: "sfx-1", Name: "Pour", Kind: domain.KindExternalFunctionCall,
		Function: &domain.FunctionCall{Function: domain.FuncPlaySound, Parameter: "pour"},
	}))

	out := graph.GenerateMermaid(c)

	for _, want := range []string{
		"graph TD\n",
		`subgraph n_g_Bar["Bar"]`,
		`subgraph n_g_Cellar_Door["Cellar Door"]`,
		`n_greet(("Start"))`,
		`n_check{"CanAfford <br/> Gold >= 10"}`,
		`n_pay[/"Pay <br/> HasKey toggle"/]`,
		`n_cellar[("Cellar <br/> tavern.lua:cellar")]`,
		`n_sfx_1[["Pour <br/> PlaySound[pour]"]]`,
		`n_greet -- "Buy a 'drink'" --> n_check`,
		`n_greet -. "Cellar" .-> n_cellar`,
		`n_check -- "pass" --> n_pay`,
		`n_check -- "fail" --> n_gone`,
		`n_gone["missing: gone"]`,
		"class n_gone missing;",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, strings.Count(out, "classDef missing"))
}

func TestGenerateMermaid_Empty(t *testing.T) {
	out := graph.GenerateMermaid(dialogue.NewContainer(""))
	assert.Equal(t, "graph TD\n", out)
}
