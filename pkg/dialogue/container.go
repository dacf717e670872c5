package dialogue

import (
	"errors"
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/google/uuid"
)

// ErrNodeNotFound is returned by authoring operations that target a missing node ID.
var ErrNodeNotFound = errors.New("node not found")

type bucket struct {
	name    string
	nodeIDs []string
	names   *NameTracker
	// declared is false while the bucket only exists because a node was added to it.
	declared bool
}

// Container is an indexed collection of dialogue nodes grouped by named categories.
//
// It is the single owner of its nodes (arena-style, keyed by ID); choices refer
// to nodes by ID only. A node lives in exactly one place: one group's list or
// the ungrouped list.
type Container struct {
	FileName string

	nodes map[string]*domain.Node
	owner map[string]*bucket // nil bucket means ungrouped

	groups     []*bucket
	groupIndex map[string]*bucket
	groupNames *NameTracker

	ungrouped *bucket
}

// NewContainer creates an empty container.
func NewContainer(fileName string) *Container {
	return &Container{
		FileName:   fileName,
		nodes:      make(map[string]*domain.Node),
		owner:      make(map[string]*bucket),
		groupIndex: make(map[string]*bucket),
		groupNames: NewNameTracker(),
		ungrouped:  &bucket{names: NewNameTracker()},
	}
}

// AddGroup declares a group. Declaring the same name twice is recorded as a
// collision (reported by Validate) and both declarations share one bucket.
// Declaring a group that AddGroupedNode already created takes over its claim.
func (c *Container) AddGroup(name string) error {
	if name == "" {
		return fmt.Errorf("group name cannot be empty")
	}
	b, exists := c.groupIndex[name]
	if !exists || b.declared {
		c.groupNames.Claim(name)
	}
	c.bucketFor(name).declared = true
	return nil
}

func (c *Container) bucketFor(name string) *bucket {
	if b, ok := c.groupIndex[name]; ok {
		return b
	}
	b := &bucket{name: name, names: NewNameTracker()}
	c.groups = append(c.groups, b)
	c.groupIndex[name] = b
	return b
}

// AddGroupedNode adds node to group, creating the group bucket if needed.
// A node without an ID is given a fresh one.
func (c *Container) AddGroupedNode(group string, node *domain.Node) error {
	if group == "" {
		return c.AddUngroupedNode(node)
	}
	if _, ok := c.groupIndex[group]; !ok {
		c.groupNames.Claim(group)
	}
	return c.place(c.bucketFor(group), node)
}

// AddUngroupedNode adds node to the ungrouped list.
func (c *Container) AddUngroupedNode(node *domain.Node) error {
	return c.place(c.ungrouped, node)
}

func (c *Container) place(b *bucket, node *domain.Node) error {
	if node == nil {
		return fmt.Errorf("cannot add nil node")
	}
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	if _, exists := c.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %s (%s)", domain.ErrNodeAlreadyOwned, node.Name, node.ID)
	}
	c.nodes[node.ID] = node
	c.owner[node.ID] = b
	b.nodeIDs = append(b.nodeIDs, node.ID)
	b.names.Claim(node.Name)
	return nil
}

// RemoveNode deletes a node from the container. Choices that pointed at it
// are left dangling; Validate reports them.
func (c *Container) RemoveNode(id string) error {
	node, ok := c.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	b := c.owner[id]
	b.nodeIDs = removeID(b.nodeIDs, id)
	b.names.Release(node.Name)
	delete(c.nodes, id)
	delete(c.owner, id)
	return nil
}

// MoveNode moves a node to another group. An empty group means ungrouped.
func (c *Container) MoveNode(id, group string) error {
	node, ok := c.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if err := c.RemoveNode(id); err != nil {
		return err
	}
	return c.AddGroupedNode(group, node)
}

// RenameNode changes a node's name and updates collision tracking.
func (c *Container) RenameNode(id, name string) error {
	node, ok := c.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	b := c.owner[id]
	b.names.Release(node.Name)
	node.Name = name
	b.names.Claim(name)
	return nil
}

// RenameGroup renames a group. Nodes stay in the bucket; every declaration
// claim moves to the new name.
func (c *Container) RenameGroup(oldName, newName string) error {
	b, ok := c.groupIndex[oldName]
	if !ok {
		return fmt.Errorf("group %q not found", oldName)
	}
	if newName == "" {
		return fmt.Errorf("group name cannot be empty")
	}
	if _, taken := c.groupIndex[newName]; taken {
		return fmt.Errorf("group %q already exists", newName)
	}
	claims := c.groupNames.Count(oldName)
	for i := 0; i < claims; i++ {
		c.groupNames.Release(oldName)
		c.groupNames.Claim(newName)
	}
	delete(c.groupIndex, oldName)
	b.name = newName
	c.groupIndex[newName] = b
	return nil
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}

// NodeByID resolves a node reference.
func (c *Container) NodeByID(id string) (*domain.Node, bool) {
	node, ok := c.nodes[id]
	return node, ok
}

// GroupOf returns the group owning id ("" for ungrouped).
func (c *Container) GroupOf(id string) (string, bool) {
	b, ok := c.owner[id]
	if !ok {
		return "", false
	}
	return b.name, true
}

// FindByName returns the first node named name.
//
// Grouped nodes are searched first (groups in declaration order, nodes in
// insertion order), then ungrouped nodes. Names are only unique per scope, so
// a name used in several scopes is ambiguous and the first match wins.
// A miss returns nil.
func (c *Container) FindByName(name string) *domain.Node {
	for _, b := range c.groups {
		if node := c.findIn(b, name); node != nil {
			return node
		}
	}
	return c.findIn(c.ungrouped, name)
}

// FindInGroup returns the node named nodeName inside groupName, or nil.
func (c *Container) FindInGroup(groupName, nodeName string) *domain.Node {
	b, ok := c.groupIndex[groupName]
	if !ok {
		return nil
	}
	return c.findIn(b, nodeName)
}

// FindUngrouped returns the ungrouped node named nodeName, or nil.
func (c *Container) FindUngrouped(nodeName string) *domain.Node {
	return c.findIn(c.ungrouped, nodeName)
}

func (c *Container) findIn(b *bucket, name string) *domain.Node {
	for _, id := range b.nodeIDs {
		if node := c.nodes[id]; node.Name == name {
			return node
		}
	}
	return nil
}

// ListGroupNames returns the group names in declaration order.
func (c *Container) ListGroupNames() []string {
	names := make([]string, 0, len(c.groups))
	for _, b := range c.groups {
		names = append(names, b.name)
	}
	return names
}

// NamesInGroup lists node names in group; startingOnly keeps starting nodes only.
func (c *Container) NamesInGroup(group string, startingOnly bool) []string {
	b, ok := c.groupIndex[group]
	if !ok {
		return nil
	}
	return c.namesIn(b, startingOnly)
}

// NamesUngrouped lists ungrouped node names; startingOnly keeps starting nodes only.
func (c *Container) NamesUngrouped(startingOnly bool) []string {
	return c.namesIn(c.ungrouped, startingOnly)
}

func (c *Container) namesIn(b *bucket, startingOnly bool) []string {
	var names []string
	for _, id := range b.nodeIDs {
		node := c.nodes[id]
		if startingOnly && !node.IsStartingNode {
			continue
		}
		names = append(names, node.Name)
	}
	return names
}

// GroupNodes returns the nodes of group in order.
func (c *Container) GroupNodes(group string) []*domain.Node {
	b, ok := c.groupIndex[group]
	if !ok {
		return nil
	}
	return c.nodesIn(b)
}

// UngroupedNodes returns the ungrouped nodes in order.
func (c *Container) UngroupedNodes() []*domain.Node {
	return c.nodesIn(c.ungrouped)
}

// Nodes returns every node: grouped nodes first, then ungrouped.
func (c *Container) Nodes() []*domain.Node {
	out := make([]*domain.Node, 0, len(c.nodes))
	for _, b := range c.groups {
		out = append(out, c.nodesIn(b)...)
	}
	return append(out, c.nodesIn(c.ungrouped)...)
}

func (c *Container) nodesIn(b *bucket) []*domain.Node {
	out := make([]*domain.Node, 0, len(b.nodeIDs))
	for _, id := range b.nodeIDs {
		out = append(out, c.nodes[id])
	}
	return out
}

// Len returns the number of nodes owned by the container.
func (c *Container) Len() int {
	return len(c.nodes)
}
