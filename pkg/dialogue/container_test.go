package dialogue_test

import (
	"testing"

	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(id, name string) *domain.Node {
	return &domain.Node{ID: id, Name: name, Kind: domain.KindPlain}
}

func TestContainer_AddAndFind(t *testing.T) {
	c := dialogue.NewContainer("tavern.yaml")
	require.NoError(t, c.AddGroup("Intro"))
	require.NoError(t, c.AddGroupedNode("Intro", plain("n1", "Start")))
	require.NoError(t, c.AddGroupedNode("Intro", plain("n2", "Greet")))
	require.NoError(t, c.AddUngroupedNode(plain("n3", "Loose")))

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"Intro"}, c.ListGroupNames())
	assert.Equal(t, []string{"Start", "Greet"}, c.NamesInGroup("Intro", false))
	assert.Equal(t, []string{"Loose"}, c.NamesUngrouped(false))

	assert.Equal(t, "n2", c.FindInGroup("Intro", "Greet").ID)
	assert.Nil(t, c.FindInGroup("Intro", "Loose"))
	assert.Nil(t, c.FindInGroup("Outro", "Greet"))
	assert.Equal(t, "n3", c.FindUngrouped("Loose").ID)
	assert.Nil(t, c.FindByName("Nobody"))

	group, ok := c.GroupOf("n1")
	require.True(t, ok)
	assert.Equal(t, "Intro", group)
}

func TestContainer_FindByNamePrefersGroups(t *testing.T) {
	c := dialogue.NewContainer("")
	require.NoError(t, c.AddUngroupedNode(plain("loose", "Start")))
	require.NoError(t, c.AddGroupedNode("Intro", plain("grouped", "Start")))

	assert.Equal(t, "grouped", c.FindByName("Start").ID)
}

func TestContainer_StartingFilter(t *testing.T) {
	c := dialogue.NewContainer("")
	start := plain("a", "Start")
	start.IsStartingNode = true
	require.NoError(t, c.AddGroupedNode("G", start))
	require.NoError(t, c.AddGroupedNode("G", plain("b", "Middle")))

	assert.Equal(t, []string{"Start"}, c.NamesInGroup("G", true))
	assert.Nil(t, c.NamesUngrouped(true))
}

func TestContainer_AssignsIDs(t *testing.T) {
	c := dialogue.NewContainer("")
	node := plain("", "Anon")
	require.NoError(t, c.AddUngroupedNode(node))
	assert.NotEmpty(t, node.ID)

	got, ok := c.NodeByID(node.ID)
	require.True(t, ok)
	assert.Same(t, node, got)
}

func TestContainer_NodeOwnedOnce(t *testing.T) {
	c := dialogue.NewContainer("")
	node := plain("n1", "Start")
	require.NoError(t, c.AddGroupedNode("A", node))

	err := c.AddGroupedNode("B", node)
	assert.ErrorIs(t, err, domain.ErrNodeAlreadyOwned)
	err = c.AddUngroupedNode(node)
	assert.ErrorIs(t, err, domain.ErrNodeAlreadyOwned)
	assert.Equal(t, 1, c.Len())
}

func TestContainer_Authoring(t *testing.T) {
	c := dialogue.NewContainer("")
	require.NoError(t, c.AddGroupedNode("A", plain("n1", "Start")))
	require.NoError(t, c.AddGroupedNode("A", plain("n2", "Start")))

	assert.NotEmpty(t, dialogue.Validate(c, nil), "duplicate names in one group")

	require.NoError(t, c.RenameNode("n2", "Second"))
	assert.Empty(t, dialogue.Validate(c, nil))

	require.NoError(t, c.MoveNode("n2", ""))
	assert.Equal(t, []string{"Start"}, c.NamesInGroup("A", false))
	assert.Equal(t, []string{"Second"}, c.NamesUngrouped(false))

	require.NoError(t, c.RemoveNode("n1"))
	assert.Empty(t, c.GroupNodes("A"))
	_, ok := c.NodeByID("n1")
	assert.False(t, ok)

	assert.ErrorIs(t, c.RemoveNode("n1"), dialogue.ErrNodeNotFound)
	assert.ErrorIs(t, c.RenameNode("zz", "x"), dialogue.ErrNodeNotFound)
	assert.ErrorIs(t, c.MoveNode("zz", "A"), dialogue.ErrNodeNotFound)
}

func TestContainer_NodesOrder(t *testing.T) {
	c := dialogue.NewContainer("")
	require.NoError(t, c.AddUngroupedNode(plain("u", "U")))
	require.NoError(t, c.AddGroupedNode("B", plain("b", "B")))
	require.NoError(t, c.AddGroupedNode("A", plain("a", "A")))

	var ids []string
	for _, n := range c.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"b", "a", "u"}, ids)
}

func TestNameTracker(t *testing.T) {
	tr := dialogue.NewNameTracker()
	assert.Equal(t, 1, tr.Claim("x"))
	assert.Equal(t, 2, tr.Claim("x"))
	tr.Claim("y")

	assert.Equal(t, []string{"x"}, tr.Collisions())
	assert.Equal(t, 2, tr.Len())

	assert.Equal(t, 1, tr.Release("x"))
	assert.Empty(t, tr.Collisions())
	assert.Equal(t, 0, tr.Release("x"))
	assert.Equal(t, 0, tr.Release("never"))
	assert.Equal(t, 0, tr.Count("x"))
	assert.Equal(t, 1, tr.Len())
}

func TestContainer_RenameGroup(t *testing.T) {
	c := dialogue.NewContainer("")
	require.NoError(t, c.AddGroup("Old"))
	require.NoError(t, c.AddGroupedNode("Old", plain("n1", "Start")))
	require.NoError(t, c.AddGroup("Other"))

	require.NoError(t, c.RenameGroup("Old", "New"))
	assert.Equal(t, []string{"New", "Other"}, c.ListGroupNames())
	assert.Equal(t, "n1", c.FindInGroup("New", "Start").ID)
	assert.Nil(t, c.FindInGroup("Old", "Start"))

	assert.Error(t, c.RenameGroup("New", "Other"))
	assert.Error(t, c.RenameGroup("Missing", "X"))
	assert.Empty(t, dialogue.Validate(c, nil))
}

func TestContainer_GroupClaimsIgnoreCallOrder(t *testing.T) {
	declaredFirst := dialogue.NewContainer("")
	require.NoError(t, declaredFirst.AddGroup("Bar"))
	require.NoError(t, declaredFirst.AddGroupedNode("Bar", plain("a", "A")))

	createdFirst := dialogue.NewContainer("")
	require.NoError(t, createdFirst.AddGroupedNode("Bar", plain("a", "A")))
	require.NoError(t, createdFirst.AddGroup("Bar"))

	for _, c := range []*dialogue.Container{declaredFirst, createdFirst} {
		assert.Equal(t, []string{"Bar"}, c.ListGroupNames())
		assert.Empty(t, dialogue.Validate(c, nil))
	}

	require.NoError(t, createdFirst.AddGroup("Bar"))
	errs := dialogue.Validate(createdFirst, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Reason, "group declared 2 times")
}
