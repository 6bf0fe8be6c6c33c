package transform

import (
	"fmt"
	"path"
	"strings"

	"go.hacdias.com/migrate/dates"
	"go.hacdias.com/migrate/legacy"
	"go.hacdias.com/migrate/record"
)

const (
	PostsRoot    = "blog"
	UntitledRoot = "untitled"

	IndexName    = "index.md"
	RecipeSuffix = ".recipe.md"
)

// IsRecipe reports whether p is a recipe: those live among posts but are a
// content type of their own and are copied verbatim.
func IsRecipe(p string) bool {
	return strings.HasSuffix(path.Base(p), RecipeSuffix)
}

type Post struct {
	dates *dates.Normalizer
}

func NewPost(n *dates.Normalizer) *Post {
	return &Post{dates: n}
}

func (p *Post) Transform(src Source) (*Output, error) {
	if IsRecipe(src.Path) {
		return nil, ErrSkipped
	}

	doc, err := legacy.Parse(src.Raw)
	if err != nil {
		return nil, err
	}
	meta := doc.Metadata

	rawDate, ok := meta.Value("date")
	if !ok {
		return nil, &MissingFieldError{Field: "date"}
	}

	date, err := p.dates.Normalize(rawDate)
	if err != nil {
		return nil, invalid("date", err)
	}

	slug := postSlug(src.Path)
	rec := record.New()

	// Untitled posts are quarantined in their own tree until someone names them.
	root := PostsRoot
	if title, ok := meta.TextIf("title"); ok {
		rec.Set("title", title)
	} else {
		rec.SetNull("title")
		root = UntitledRoot
	}

	tagline, hasTagline := meta.TextIf("description")
	tags, hasTags := meta.StringsIf("tags")
	thumbnail, hasThumbnail := meta.TextIf("thumbnail")

	rec.
		SetIf("tagline", tagline, hasTagline).
		Set("slug", slug).
		Set("date", record.New().
			Set("created", date).
			Set("published", date)).
		SetIf("tags", rewriteTags(tags), hasTags).
		SetIf("thumbnail", thumbnail, hasThumbnail)

	ordinal := 0
	if v, ok := meta.Value("ordinal"); ok {
		ordinal, ok = meta.IntIf("ordinal")
		if !ok || ordinal < 0 {
			return nil, invalid("ordinal", fmt.Errorf("not a non-negative integer: %v", v))
		}
	}

	return &Output{
		Location: path.Join(
			root,
			fmt.Sprintf("%d", date.Year()),
			fmt.Sprintf("%02d", date.Month()),
			fmt.Sprintf("%02d", date.Day()),
			fmt.Sprintf("%d", ordinal),
			slug,
			"index",
		),
		Kind:   KindDocument,
		Record: rec,
		Body:   doc.Body,
	}, nil
}

func postSlug(p string) string {
	if path.Base(p) == IndexName {
		return dirName(p)
	}
	return baseName(p, ".md")
}
