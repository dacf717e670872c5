package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/variables"
	"gopkg.in/yaml.v3"
)

// Format selects the serialization of a Document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks JSON for ".json" files and YAML otherwise.
func FormatFromPath(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// Project is a loaded dialogue container and its variable store.
type Project struct {
	Container *dialogue.Container
	Variables *variables.Store
}

// Parse decodes a document.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse project json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse project yaml: %w", err)
		}
	}
	return &doc, nil
}

// Marshal encodes a document.
func Marshal(doc *Document, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(doc, "", "  ")
	}
	return yaml.Marshal(doc)
}

// Build registers the document's variables in a new store and its nodes in a
// new container. Structural problems are left for dialogue.Validate; only
// errors that prevent building (duplicate variables or node IDs, bad
// function shorthand) fail here.
func (d *Document) Build(opts ...variables.Option) (*Project, error) {
	store := variables.NewStore(opts...)
	for _, v := range d.Variables {
		if err := store.RegisterVariable(v); err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}
	}

	c := dialogue.NewContainer(d.FileName)
	for _, g := range d.Groups {
		if err := c.AddGroup(g.Name); err != nil {
			return nil, err
		}
		for _, nd := range g.Nodes {
			node, err := nd.node()
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", g.Name, err)
			}
			if err := c.AddGroupedNode(g.Name, node); err != nil {
				return nil, fmt.Errorf("group %q: %w", g.Name, err)
			}
		}
	}
	for _, nd := range d.Ungrouped {
		node, err := nd.node()
		if err != nil {
			return nil, err
		}
		if err := c.AddUngroupedNode(node); err != nil {
			return nil, err
		}
	}

	return &Project{Container: c, Variables: store}, nil
}

// Document converts a project back to its on-disk schema.
// Variables are written with their declared defaults, not live values.
func (p *Project) Document() *Document {
	doc := &Document{
		FileName:  p.Container.FileName,
		Variables: p.Variables.Variables(),
	}
	for _, name := range p.Container.ListGroupNames() {
		g := GroupDocument{Name: name}
		for _, n := range p.Container.GroupNodes(name) {
			g.Nodes = append(g.Nodes, nodeDocument(n))
		}
		doc.Groups = append(doc.Groups, g)
	}
	for _, n := range p.Container.UngroupedNodes() {
		doc.Ungrouped = append(doc.Ungrouped, nodeDocument(n))
	}
	return doc
}

// LoadFile reads and builds the project at path.
func LoadFile(path string, opts ...variables.Option) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}
	doc, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	if doc.FileName == "" {
		doc.FileName = filepath.Base(path)
	}
	return doc.Build(opts...)
}

// SaveFile writes the project to path in the format its extension implies.
func SaveFile(path string, p *Project) error {
	data, err := Marshal(p.Document(), FormatFromPath(path))
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	return nil
}
