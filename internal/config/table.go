package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Block is the configured value of one protected block. Omitted fields fall back to
// the enclosing layer.
type Block struct {
	Value     *int `yaml:"value,omitempty"`
	MaxHeight *int `yaml:"max_height,omitempty"`
}

type BlockEntry struct {
	Key   string
	Block Block
}

// BlockTable is an ordered mapping of block keys. Order matters: later duplicates win.
type BlockTable []BlockEntry

func (t *BlockTable) UnmarshalYAML(n *yaml.Node) error {
	if isNull(n) {
		*t = nil
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: protected blocks must be a mapping", n.Line)
	}

	table := make(BlockTable, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		var b Block
		if !isNull(v) {
			if err := v.Decode(&b); err != nil {
				return fmt.Errorf("line %d: block %q: %w", k.Line, k.Value, err)
			}
		}
		table = append(table, BlockEntry{Key: k.Value, Block: b})
	}

	*t = table
	return nil
}

func (t BlockTable) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range t {
		v := &yaml.Node{}
		if err := v.Encode(e.Block); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, scalar(e.Key), v)
	}
	return n, nil
}

// World is the section of one protected world.
type World struct {
	DefaultMaxHeight *int       `yaml:"default_max_height,omitempty"`
	ProtectedBlocks  BlockTable `yaml:"protected_blocks,omitempty"`
}

// WorldEntry is one listed world. A nil World means the world is protected with the
// global defaults only.
type WorldEntry struct {
	Name  string
	World *World
}

// WorldTable is an ordered mapping of world names.
type WorldTable []WorldEntry

func (t *WorldTable) UnmarshalYAML(n *yaml.Node) error {
	if isNull(n) {
		*t = nil
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: worlds must be a mapping", n.Line)
	}

	table := make(WorldTable, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		entry := WorldEntry{Name: k.Value}
		if !isNull(v) {
			w := &World{}
			if err := v.Decode(w); err != nil {
				return fmt.Errorf("line %d: world %q: %w", k.Line, k.Value, err)
			}
			entry.World = w
		}
		table = append(table, entry)
	}

	*t = table
	return nil
}

func (t WorldTable) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range t {
		v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if e.World != nil {
			if err := v.Encode(e.World); err != nil {
				return nil, err
			}
		}
		n.Content = append(n.Content, scalar(e.Name), v)
	}
	return n, nil
}

// isNull reports whether a node is absent, an explicit null or an empty string. An
// empty string is what older documents use to list a world without a section.
func isNull(n *yaml.Node) bool {
	if n == nil {
		return true
	}
	if n.Kind != yaml.ScalarNode {
		return false
	}
	return n.Tag == "!!null" || (n.Tag == "!!str" && n.Value == "")
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
