package dialogue_test

import (
	"testing"

	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldStore(t *testing.T, gold int64) *variables.Store {
	t.Helper()
	store := variables.NewStore()
	require.NoError(t, store.Register("Gold", domain.TypeInt, domain.IntValue(gold), ""))
	return store
}

func TestResolveNext(t *testing.T) {
	c := dialogue.NewContainer("")
	hub := &domain.Node{ID: "hub", Name: "Hub", Kind: domain.KindMultipleChoice, Choices: []domain.Choice{
		{Text: "Shop", NextID: "shop"},
		{Text: "Leave"},
		{Text: "Broken", NextID: "deleted"},
	}}
	require.NoError(t, c.AddUngroupedNode(hub))
	require.NoError(t, c.AddUngroupedNode(plain("shop", "Shop")))

	next, err := c.ResolveNext(hub, 0)
	require.NoError(t, err)
	assert.Equal(t, "shop", next.ID)

	next, err = c.ResolveNext(hub, 1)
	require.NoError(t, err)
	assert.Nil(t, next, "empty target ends the conversation")

	next, err = c.ResolveNext(hub, 2)
	require.NoError(t, err)
	assert.Nil(t, next, "unresolved target ends the conversation")

	_, err = c.ResolveNext(hub, 3)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	_, err = c.ResolveNext(hub, -1)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestGetChoicesCopies(t *testing.T) {
	node := &domain.Node{Choices: []domain.Choice{{Text: "a"}}}
	got := dialogue.GetChoices(node)
	got[0].Text = "mutated"
	assert.Equal(t, "a", node.Choices[0].Text)
	assert.Nil(t, dialogue.GetChoices(nil))
}

func TestAdvance_ConditionBranches(t *testing.T) {
	c := dialogue.NewContainer("")
	gate := &domain.Node{
		ID: "gate", Name: "Rich?", Kind: domain.KindVariableCondition,
		Condition: &domain.VariableCondition{Variable: "Gold", Operator: domain.OpGreaterOrEqual, Literal: domain.IntValue(50)},
		Choices:   []domain.Choice{{NextID: "rich"}, {NextID: "poor"}},
	}
	require.NoError(t, c.AddUngroupedNode(gate))
	require.NoError(t, c.AddUngroupedNode(plain("rich", "Rich")))
	require.NoError(t, c.AddUngroupedNode(plain("poor", "Poor")))

	next, err := c.Advance(gate, newGoldStore(t, 50))
	require.NoError(t, err)
	assert.Equal(t, "rich", next.ID)

	next, err = c.Advance(gate, newGoldStore(t, 10))
	require.NoError(t, err)
	assert.Equal(t, "poor", next.ID)

	gate.Choices = gate.Choices[:1]
	next, err = c.Advance(gate, newGoldStore(t, 10))
	require.NoError(t, err)
	assert.Nil(t, next, "failed gate without a fail branch ends")
}

func TestAdvance_ModificationCommits(t *testing.T) {
	c := dialogue.NewContainer("")
	reward := &domain.Node{
		ID: "reward", Name: "Reward", Kind: domain.KindVariableModification,
		Modification: &domain.VariableModification{Variable: "Gold", Operator: domain.OpIncrease, Operand: domain.IntValue(50)},
		Choices:      []domain.Choice{{NextID: "thanks"}},
	}
	require.NoError(t, c.AddUngroupedNode(reward))
	require.NoError(t, c.AddUngroupedNode(plain("thanks", "Thanks")))

	store := newGoldStore(t, 0)
	next, err := c.Advance(reward, store)
	require.NoError(t, err)
	assert.Equal(t, "thanks", next.ID)

	gold, _ := store.Get("Gold")
	assert.True(t, gold.Equal(domain.IntValue(50)))
}

func TestAdvance_Errors(t *testing.T) {
	c := dialogue.NewContainer("")
	menu := &domain.Node{Name: "Menu", Kind: domain.KindMultipleChoice, Choices: []domain.Choice{{}, {}}}
	_, err := c.Advance(menu, nil)
	assert.ErrorIs(t, err, dialogue.ErrWrongKind)

	broken := &domain.Node{
		Name: "Broken", Kind: domain.KindVariableCondition,
		Condition: &domain.VariableCondition{Variable: "Silver", Operator: domain.OpEqual, Literal: domain.IntValue(1)},
	}
	_, err = c.Advance(broken, newGoldStore(t, 0))
	assert.ErrorIs(t, err, domain.ErrUnknownVariable)

	next, err := c.Advance(nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, next)
}

func TestPrimitivesRejectWrongKind(t *testing.T) {
	node := plain("p", "Plain")
	store := newGoldStore(t, 0)

	_, err := dialogue.EvaluateGate(node, store)
	assert.ErrorIs(t, err, dialogue.ErrWrongKind)
	_, err = dialogue.ApplyMutation(node, store)
	assert.ErrorIs(t, err, dialogue.ErrWrongKind)
	_, err = dialogue.FunctionCall(node)
	assert.ErrorIs(t, err, dialogue.ErrWrongKind)

	call := &domain.Node{Kind: domain.KindExternalFunctionCall, Function: &domain.FunctionCall{Function: domain.FuncPlayEmote, Parameter: "wave"}}
	got, err := dialogue.FunctionCall(call)
	require.NoError(t, err)
	assert.Equal(t, "wave", got.Parameter)
}

func TestWalk(t *testing.T) {
	c := dialogue.NewContainer("")
	menu := &domain.Node{ID: "menu", Name: "Menu", Kind: domain.KindMultipleChoice, Choices: []domain.Choice{
		{Text: "Pay", NextID: "pay"},
		{Text: "Leave"},
	}}
	pay := &domain.Node{
		ID: "pay", Name: "Pay", Kind: domain.KindVariableModification,
		Modification: &domain.VariableModification{Variable: "Gold", Operator: domain.OpDecrease, Operand: domain.IntValue(10)},
		Choices:      []domain.Choice{{NextID: "menu"}},
	}
	require.NoError(t, c.AddUngroupedNode(menu))
	require.NoError(t, c.AddUngroupedNode(pay))

	store := newGoldStore(t, 30)
	var visited []string
	err := c.Walk(menu, store, 0, func(n *domain.Node) (int, error) {
		visited = append(visited, n.Name)
		gold, _ := store.Get("Gold")
		if g, _ := gold.AsInt(); g > 0 {
			return 0, nil
		}
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Menu", "Pay", "Menu", "Pay", "Menu", "Pay", "Menu"}, visited)

	err = c.Walk(menu, newGoldStore(t, 1000), 5, func(*domain.Node) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, dialogue.ErrStepBudget)
}
