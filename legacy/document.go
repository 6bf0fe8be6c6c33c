package legacy

import (
	"fmt"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Delimiter is the line that opens and closes the header of a document.
const Delimiter = "---"

// Document is a legacy document split into its metadata and its body.
type Document struct {
	Metadata Metadata
	Body     string
}

// Split returns the text between the first two delimiter lines of raw and
// everything after the second one, trimmed. Text before the first delimiter
// is discarded.
func Split(raw string) (header, body string, err error) {
	found := 0
	headerStart := 0

	for pos := 0; pos < len(raw); {
		line := raw[pos:]
		next := len(raw)
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = pos + i + 1
		}

		if strings.TrimRight(line, " \t\r") == Delimiter {
			if found == 1 {
				return raw[headerStart:pos], strings.TrimSpace(raw[next:]), nil
			}
			headerStart = next
			found++
		}

		pos = next
	}

	return "", "", fmt.Errorf("%w: found %d of 2 %q lines", ErrMalformedDocument, found, Delimiter)
}

// Parse splits raw and parses its header.
func Parse(raw []byte) (*Document, error) {
	header, body, err := Split(string(raw))
	if err != nil {
		return nil, err
	}

	meta, err := ParseMetadata([]byte(header))
	if err != nil {
		return nil, err
	}

	return &Document{
		Metadata: meta,
		Body:     body,
	}, nil
}

// ParseMetadata parses a header block. An empty header is an empty mapping.
func ParseMetadata(header []byte) (Metadata, error) {
	root, err := parseNode(header)
	if err != nil {
		return Metadata{}, err
	}

	if root == nil {
		return NewMetadata(map[string]any{}), nil
	}

	return metadataFromNode(root)
}

// ParseSequence parses a delimiter-less file holding a sequence of mappings.
func ParseSequence(raw []byte) ([]Metadata, error) {
	root, err := parseNode(raw)
	if err != nil {
		return nil, err
	}

	if root == nil {
		return []Metadata{}, nil
	}

	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: line %d: expected a sequence", ErrInvalidMetadata, root.Line)
	}

	seq := make([]Metadata, 0, len(root.Content))
	for i, item := range root.Content {
		if isNull(resolve(item)) {
			return nil, fmt.Errorf("%w: item %d is empty", ErrInvalidMetadata, i)
		}

		meta, err := metadataFromNode(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		seq = append(seq, meta)
	}

	return seq, nil
}

// parseNode returns the root node of a YAML document, or nil when the
// document is empty or null.
func parseNode(raw []byte) (*yaml.Node, error) {
	var doc yaml.Node
	err := yaml.Unmarshal(raw, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := resolve(doc.Content[0])
	if isNull(root) {
		return nil, nil
	}

	return root, nil
}

// Compose writes a document: the header between two delimiter lines, a blank
// line and the body. The header is expected to end with a newline, as the
// YAML encoder leaves it.
func Compose(header []byte, body string) []byte {
	text := fmt.Sprintf("%s\n%s%s\n\n%s\n", Delimiter, header, Delimiter, strings.TrimSpace(body))
	return []byte(strings.TrimSpace(text) + "\n")
}
