package transform

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"go.hacdias.com/migrate/legacy"
	"go.hacdias.com/migrate/record"
)

const (
	legacyProjectPrefix = "/projects/"
	projectNamespace    = "project:"

	// TagSettingsLocation is where the folded tag declarations are written.
	TagSettingsLocation = "settings/tags.tag"
)

// RewriteTag moves legacy project cross-references into the project namespace:
// "/projects/foo/bar" becomes "project:foobar". Other tags are unchanged.
func RewriteTag(tag string) string {
	rest, ok := strings.CutPrefix(tag, legacyProjectPrefix)
	if !ok {
		return tag
	}
	return projectNamespace + strings.ReplaceAll(rest, "/", "")
}

func rewriteTags(tags []string) []string {
	return lo.Map(tags, func(t string, _ int) string { return RewriteTag(t) })
}

// Duplicate is a tag slug that was given a different title by a later
// declaration. The later title wins.
type Duplicate struct {
	Slug     string
	Previous string
	Current  string
	Path     string
}

func (d Duplicate) Error() string {
	return fmt.Sprintf("%s: %s: %q replaces %q", ErrDuplicateTagTitle, d.Slug, d.Current, d.Previous)
}

// TagDeclarations folds legacy tag style sheets into a single settings file.
type TagDeclarations struct{}

func NewTagDeclarations() *TagDeclarations {
	return &TagDeclarations{}
}

func (d *TagDeclarations) Transform(src Source) (*Output, error) {
	return d.TransformAll([]Source{src})
}

// TransformAll folds every source, in order, into one output.
func (d *TagDeclarations) TransformAll(srcs []Source) (*Output, error) {
	titles := record.New()
	styles := []*record.Record{}
	var duplicates []Duplicate

	for _, src := range srcs {
		groups, err := legacy.ParseSequence(src.Raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Path, err)
		}

		for i, group := range groups {
			entries, ok := group.Items("tags")
			if !ok {
				return nil, fmt.Errorf("%s: group %d: %w", src.Path, i, &MissingFieldError{Field: "tags"})
			}

			slugs := make([]string, 0, len(entries))
			for _, entry := range entries {
				slug, name, err := tagEntry(entry)
				if err != nil {
					return nil, fmt.Errorf("%s: group %d: %w", src.Path, i, err)
				}

				if prev, seen := titles.Get(slug); seen && prev != name {
					duplicates = append(duplicates, Duplicate{
						Slug:     slug,
						Previous: prev.(string),
						Current:  name,
						Path:     src.Path,
					})
				}

				titles.Set(slug, name)
				slugs = append(slugs, slug)
			}

			bg, hasBg := group.TextIf("backgroundColor")
			fg, hasFg := group.TextIf("color")

			styles = append(styles, record.New().
				Set("tags", slugs).
				Set("apply", record.New().
					SetIf("color", bg, hasBg).
					SetIf("text_color", fg, hasFg)))
		}
	}

	return &Output{
		Location: TagSettingsLocation,
		Kind:     KindSettings,
		Record: record.New().
			Set("titles", titles).
			Set("styles", styles),
		Duplicates: duplicates,
	}, nil
}

func tagEntry(entry legacy.Metadata) (slug, name string, err error) {
	slug, ok := entry.TextIf("slug")
	if !ok {
		return "", "", &MissingFieldError{Field: "slug"}
	}

	name, ok = entry.TextIf("name")
	if !ok {
		return "", "", &MissingFieldError{Field: "name"}
	}

	return RewriteTag(slug), name, nil
}

func (d Duplicate) Unwrap() error {
	return ErrDuplicateTagTitle
}
