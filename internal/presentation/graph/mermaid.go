package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a container.
// Each group becomes a subgraph. Shapes follow the node kind:
// - Starting: ((Circle))
// - Condition: {Diamond}
// - Modification: [/Parallelogram/]
// - Function call: [[Subroutine]]
// - Story entry: [(Cylinder)]
// - Default: [Rectangle]
// Edges that leave their group are dotted. Condition edges are labelled
// pass/fail. Dangling targets are drawn as a red "missing" node.
func GenerateMermaid(c *dialogue.Container) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, group := range c.ListGroupNames() {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID("g_"+group), escape(group))
		for _, node := range c.GroupNodes(group) {
			writeNode(&sb, "        ", node)
		}
		sb.WriteString("    end\n")
	}
	for _, node := range c.UngroupedNodes() {
		writeNode(&sb, "    ", node)
	}

	var missing []string
	for _, node := range c.Nodes() {
		from, _ := c.GroupOf(node.ID)
		for i, choice := range node.Choices {
			if choice.NextID == "" {
				continue
			}
			arrow := "-->"
			if to, ok := c.GroupOf(choice.NextID); !ok {
				missing = append(missing, choice.NextID)
			} else if to != from {
				arrow = "-.->"
			}
			if label := edgeLabel(node, i, choice); label != "" {
				if arrow == "-->" {
					arrow = fmt.Sprintf("-- \"%s\" -->", escape(label))
				} else {
					arrow = fmt.Sprintf("-. \"%s\" .->", escape(label))
				}
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(node.ID), arrow, sanitizeMermaidID(choice.NextID))
		}
	}

	if len(missing) > 0 {
		sb.WriteString("\n    %% Dangling targets\n")
		sb.WriteString("    classDef missing fill:#fee2e2,stroke:#b91c1c,color:#000;\n")
		seen := make(map[string]bool)
		for _, id := range missing {
			if seen[id] {
				continue
			}
			seen[id] = true
			safe := sanitizeMermaidID(id)
			fmt.Fprintf(&sb, "    %s[\"missing: %s\"]\n", safe, escape(id))
			fmt.Fprintf(&sb, "    class %s missing;\n", safe)
		}
	}

	return sb.String()
}

func writeNode(sb *strings.Builder, indent string, node *domain.Node) {
	opener, closer := "[", "]"
	switch {
	case node.IsStartingNode:
		opener, closer = "((", "))"
	case node.Kind == domain.KindVariableCondition:
		opener, closer = "{", "}"
	case node.Kind == domain.KindVariableModification:
		opener, closer = "[/", "/]"
	case node.Kind == domain.KindExternalFunctionCall:
		opener, closer = "[[", "]]"
	case node.Kind == domain.KindExternalStoryEntry:
		opener, closer = "[(", ")]"
	}
	fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, sanitizeMermaidID(node.ID), opener, escape(nodeLabel(node)), closer)
}

func nodeLabel(node *domain.Node) string {
	label := node.Name
	switch {
	case node.Condition != nil:
		label += fmt.Sprintf(" <br/> %s %s %s", node.Condition.Variable, node.Condition.Operator, node.Condition.Literal)
	case node.Modification != nil:
		mod := node.Modification
		label += fmt.Sprintf(" <br/> %s %s", mod.Variable, mod.Operator)
		if mod.Operand.IsValid() {
			label += " " + mod.Operand.String()
		}
	case node.Function != nil:
		label += " <br/> " + node.Function.String()
	case node.Story != nil:
		label += fmt.Sprintf(" <br/> %s:%s", node.Story.Script, node.Story.Label)
	}
	return label
}

func edgeLabel(node *domain.Node, idx int, choice domain.Choice) string {
	if node.Kind == domain.KindVariableCondition {
		if idx == 0 {
			return "pass"
		}
		return "fail"
	}
	return choice.Text
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return "n_" + r.Replace(id)
}
