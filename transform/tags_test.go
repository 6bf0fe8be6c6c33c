package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"go.hacdias.com/migrate/legacy"
	"go.hacdias.com/migrate/record"
)

func TestRewriteTag(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/projects/foo/bar", "project:foobar"},
		{"/projects/foo", "project:foo"},
		{"/projects/foo/", "project:foo"},
		{"news", "news"},
		{"", ""},
		{"projects/foo", "projects/foo"},
		{"/project/foo", "/project/foo"},
		{"project:foo", "project:foo"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RewriteTag(tt.input), "input: %q", tt.input)
	}
}

func TestTagDeclarations(t *testing.T) {
	src := Source{
		Path: "tags/languages.yaml",
		Raw: []byte(`
- backgroundColor: "#000"
  color: white
  tags:
    - slug: rust
      name: Rust
    - slug: go
      name: Go
- tags:
    - slug: python
      name: Python
`),
	}

	out, err := NewTagDeclarations().Transform(src)
	require.NoError(t, err)
	assert.Equal(t, TagSettingsLocation, out.Location)
	assert.Equal(t, "settings/tags.tag.yml", out.Filename())
	assert.Empty(t, out.Duplicates)

	data, err := out.Render()
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, map[string]any{
		"titles": map[string]any{
			"rust":   "Rust",
			"go":     "Go",
			"python": "Python",
		},
		"styles": []any{
			map[string]any{
				"tags":  []any{"rust", "go"},
				"apply": map[string]any{"color": "#000", "text_color": "white"},
			},
			map[string]any{
				"tags":  []any{"python"},
				"apply": map[string]any{},
			},
		},
	}, back)

	assert.Equal(t, []string{"titles", "styles"}, out.Record.Keys())
}

func TestTagDeclarationsLastTitleWins(t *testing.T) {
	src := Source{
		Path: "tags/dupes.yaml",
		Raw: []byte(`
- tags:
    - slug: shared
      name: First
- tags:
    - slug: shared
      name: Second
`),
	}

	out, err := NewTagDeclarations().Transform(src)
	require.NoError(t, err)

	titles, ok := out.Record.Get("titles")
	require.True(t, ok)
	title, _ := titles.(*record.Record).Get("shared")
	assert.Equal(t, "Second", title)

	require.Len(t, out.Duplicates, 1)
	assert.Equal(t, Duplicate{Slug: "shared", Previous: "First", Current: "Second", Path: "tags/dupes.yaml"}, out.Duplicates[0])
	assert.ErrorIs(t, out.Duplicates[0], ErrDuplicateTagTitle)
}

func TestTagDeclarationsFoldsFiles(t *testing.T) {
	out, err := NewTagDeclarations().TransformAll([]Source{
		{Path: "tags/a.yaml", Raw: []byte("- tags:\n    - slug: x\n      name: X\n")},
		{Path: "tags/b.yaml", Raw: []byte("- tags:\n    - slug: /projects/y/z\n      name: Y\n  color: red\n")},
	})
	require.NoError(t, err)

	styles, ok := out.Record.Get("styles")
	require.True(t, ok)
	assert.Len(t, styles, 2)

	assert.Equal(t, map[string]any{"x": "X", "project:yz": "Y"}, decoded(t, out)["titles"])
	assertRoundTrip(t, out)
}

func TestTagDeclarationsKeepWrittenText(t *testing.T) {
	out, err := NewTagDeclarations().Transform(Source{
		Path: "tags/dates.yaml",
		Raw:  []byte("- color: 1.10\n  tags:\n    - slug: 2021-01-01\n      name: 2021-01-01\n    - slug: 3.10\n      name: Version\n"),
	})
	require.NoError(t, err)

	back := decoded(t, out)
	assert.Equal(t, map[string]any{"2021-01-01": "2021-01-01", "3.10": "Version"}, back["titles"])
	assert.Equal(t, []any{
		map[string]any{
			"tags":  []any{"2021-01-01", "3.10"},
			"apply": map[string]any{"text_color": "1.10"},
		},
	}, back["styles"])
}

func TestTagDeclarationsErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		err  error
	}{
		{"Missing Tags", "- color: red\n", ErrMissingRequiredField},
		{"Missing Slug", "- tags:\n    - name: X\n", ErrMissingRequiredField},
		{"Missing Name", "- tags:\n    - slug: x\n", ErrMissingRequiredField},
	}

	for _, tt := range tests {
		_, err := NewTagDeclarations().Transform(Source{Path: "tags/x.yaml", Raw: []byte(tt.raw)})
		assert.ErrorIs(t, err, tt.err, "failed for: %s", tt.name)
	}

	_, err := NewTagDeclarations().Transform(Source{Path: "tags/x.yaml", Raw: []byte("not: a sequence\n")})
	assert.ErrorIs(t, err, legacy.ErrInvalidMetadata)
}
