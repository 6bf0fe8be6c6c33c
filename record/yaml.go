package record

import (
	"bytes"
	"fmt"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Marshal serializes a record, or a sequence of records, as YAML. Keys keep
// their insertion order and non-ASCII text is written as is.
func Marshal(v any) ([]byte, error) {
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	err = enc.Encode(node)
	if err != nil {
		return nil, err
	}

	err = enc.Close()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// MarshalYAML lets a Record be handed to any yaml.v3 encoder.
func (r *Record) MarshalYAML() (any, error) {
	return toNode(r)
}

func toNode(v any) (*yaml.Node, error) {
	switch v := v.(type) {
	case *Record:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.keys {
			value, err := toNode(v.values[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, value)
		}
		return node, nil
	case null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case time.Time:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: v.Format(time.RFC3339Nano)}, nil
	case Date:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: v.String()}, nil
	case []*Record:
		return sequence(len(v), func(i int) any { return v[i] })
	case []string:
		return sequence(len(v), func(i int) any { return v[i] })
	case []any:
		return sequence(len(v), func(i int) any { return v[i] })
	}

	node := &yaml.Node{}
	err := node.Encode(v)
	if err != nil {
		return nil, err
	}
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
	return node, nil
}

func sequence(n int, at func(int) any) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for i := 0; i < n; i++ {
		item, err := toNode(at(i))
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		node.Content = append(node.Content, item)
	}
	return node, nil
}
