package legacy

import (
	"fmt"

	"github.com/karlseguin/typed"
	"github.com/spf13/cast"
	yaml "gopkg.in/yaml.v3"
)

// Metadata is the loosely typed header of a legacy document. Fields are looked
// up by name and any of them may be absent.
type Metadata struct {
	typed.Typed

	// nodes holds the value node of every key written in the header, so text
	// can be read back exactly as it was written.
	nodes map[string]*yaml.Node
}

func NewMetadata(fields map[string]any) Metadata {
	return Metadata{Typed: typed.New(fields)}
}

func metadataFromNode(node *yaml.Node) (Metadata, error) {
	node = resolve(node)
	if node.Kind != yaml.MappingNode {
		return Metadata{}, fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidMetadata, node.Line)
	}

	fields := map[string]any{}
	err := node.Decode(&fields)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	nodes := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		nodes[node.Content[i].Value] = resolve(node.Content[i+1])
	}

	return Metadata{Typed: typed.New(fields), nodes: nodes}, nil
}

// Has reports whether key is present with a non-null value.
func (m Metadata) Has(key string) bool {
	_, ok := m.Value(key)
	return ok
}

// Value returns the decoded value of key. Null values count as absent.
func (m Metadata) Value(key string) (any, bool) {
	v, ok := m.Typed[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// TextIf returns key as text. Scalars keep the text they were written with, so
// a title of 2021-03-01 or 3.10 is not turned into a date or a number.
func (m Metadata) TextIf(key string) (string, bool) {
	v, ok := m.Value(key)
	if !ok {
		return "", false
	}

	if node, ok := m.nodes[key]; ok {
		return nodeText(node)
	}
	return scalarText(v)
}

// StringsIf returns key as a list of strings. A lone scalar is a list of one.
func (m Metadata) StringsIf(key string) ([]string, bool) {
	v, ok := m.Value(key)
	if !ok {
		return nil, false
	}

	node, ok := m.nodes[key]
	if !ok {
		return valueStrings(v)
	}

	if node.Kind != yaml.SequenceNode {
		s, ok := nodeText(node)
		if !ok {
			return nil, false
		}
		return []string{s}, true
	}

	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		s, ok := nodeText(resolve(item))
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Items returns key as a list of mappings.
func (m Metadata) Items(key string) ([]Metadata, bool) {
	v, ok := m.Value(key)
	if !ok {
		return nil, false
	}

	node, ok := m.nodes[key]
	if !ok {
		return valueItems(v)
	}

	if node.Kind != yaml.SequenceNode {
		return nil, false
	}

	out := make([]Metadata, 0, len(node.Content))
	for _, item := range node.Content {
		meta, err := metadataFromNode(item)
		if err != nil {
			return nil, false
		}
		out = append(out, meta)
	}
	return out, true
}

func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func nodeText(node *yaml.Node) (string, bool) {
	if node.Kind != yaml.ScalarNode || isNull(node) {
		return "", false
	}
	return node.Value, true
}

// Values that were not written directly under their key, such as merged ones,
// only exist decoded and are converted back to text.
func scalarText(v any) (string, bool) {
	switch v.(type) {
	case nil, map[string]any, []any:
		return "", false
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

func valueStrings(v any) ([]string, bool) {
	list, isList := v.([]any)
	if !isList {
		s, ok := scalarText(v)
		if !ok {
			return nil, false
		}
		return []string{s}, true
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := scalarText(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func valueItems(v any) ([]Metadata, bool) {
	list, isList := v.([]any)
	if !isList {
		return nil, false
	}

	out := make([]Metadata, 0, len(list))
	for _, item := range list {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		out = append(out, NewMetadata(fields))
	}
	return out, true
}
