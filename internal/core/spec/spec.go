// Package spec defines the release, stack and demo documents and the
// ordered name-keyed containers they are published in.
package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type Kind string

const (
	KindRelease Kind = "release"
	KindStack   Kind = "stack"
	KindDemo    Kind = "demo"
)

// Spec is the closed set of installable units: *Release, *Stack and *Demo.
type Spec interface {
	Kind() Kind
	Summary() string
	isSpec()
}

// Entry is one named spec of a document.
type Entry[S any] struct {
	Name string
	Spec S
}

// Entries keeps the order in which names appear in a YAML mapping.
type Entries[S any] []Entry[S]

func (e *Entries[S]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of spec names", node.Line)
	}

	entries := make(Entries[S], 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var s S
		if err := node.Content[i+1].Decode(&s); err != nil {
			return fmt.Errorf("failed to decode %q: %w", node.Content[i].Value, err)
		}
		entries = append(entries, Entry[S]{Name: node.Content[i].Value, Spec: s})
	}
	*e = entries
	return nil
}

func (e Entries[S]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range e {
		var value yaml.Node
		if err := value.Encode(entry.Spec); err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", entry.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: entry.Name},
			&value,
		)
	}
	return node, nil
}

// ReleaseDocument is the on-disk format of a releases file.
type ReleaseDocument struct {
	Releases Entries[*Release] `yaml:"releases"`
}

func (d ReleaseDocument) Specs() Entries[*Release] { return d.Releases }

// StackDocument is the on-disk format of a stacks file.
type StackDocument struct {
	Stacks Entries[*Stack] `yaml:"stacks"`
}

func (d StackDocument) Specs() Entries[*Stack] { return d.Stacks }

// DemoDocument is the on-disk format of a demos file.
type DemoDocument struct {
	Demos Entries[*Demo] `yaml:"demos"`
}

func (d DemoDocument) Specs() Entries[*Demo] { return d.Demos }
