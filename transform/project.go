package transform

import (
	"fmt"
	"time"

	"go.hacdias.com/migrate/dates"
	"go.hacdias.com/migrate/legacy"
	"go.hacdias.com/migrate/record"
)

const ProjectsRoot = "projects"

var projectRequired = []string{"title", "description", "status", "startDate", "tags"}

// Project transforms project pages. Legacy projects carry no publication
// date, so every project is published at the date the caller provides.
type Project struct {
	dates     *dates.Normalizer
	published time.Time
}

func NewProject(n *dates.Normalizer, published time.Time) *Project {
	return &Project{dates: n, published: published}
}

func (p *Project) Transform(src Source) (*Output, error) {
	doc, err := legacy.Parse(src.Raw)
	if err != nil {
		return nil, err
	}
	meta := doc.Metadata

	for _, field := range projectRequired {
		if !meta.Has(field) {
			return nil, &MissingFieldError{Field: field}
		}
	}

	var title, tagline, status string
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"title", &title},
		{"description", &tagline},
		{"status", &status},
	} {
		v, ok := meta.TextIf(f.name)
		if !ok {
			return nil, invalid(f.name, fmt.Errorf("not text"))
		}
		*f.dst = v
	}

	tags, ok := meta.StringsIf("tags")
	if !ok {
		return nil, invalid("tags", fmt.Errorf("not a list of strings"))
	}

	rawStart, _ := meta.Value("startDate")
	started, err := p.dates.Day(rawStart)
	if err != nil {
		return nil, invalid("startDate", err)
	}

	finished, hasFinished, err := p.optionalDay(meta, "endDate")
	if err != nil {
		return nil, err
	}

	site, hasSite := meta.TextIf("url")
	source, hasSource := meta.TextIf("source")
	thumbnail, hasThumbnail := meta.TextIf("thumbnail")

	slug := dirName(src.Path)

	rec := record.New().
		Set("title", title).
		Set("tagline", tagline).
		Set("slug", slug).
		Set("status", status).
		Set("date", record.New().
			Set("started", record.Date{Time: started}).
			SetIf("finished", record.Date{Time: finished}, hasFinished).
			Set("published", p.published)).
		Set("tags", rewriteTags(tags)).
		Set("url", record.New().
			SetIf("site", site, hasSite).
			SetIf("source", source, hasSource)).
		SetIf("thumbnail", thumbnail, hasThumbnail)

	return &Output{
		Location: fmt.Sprintf("%s/%d-%02d-%s/index", ProjectsRoot, started.Year(), started.Month(), slug),
		Kind:     KindDocument,
		Record:   rec,
		Body:     doc.Body,
	}, nil
}

func (p *Project) optionalDay(meta legacy.Metadata, field string) (time.Time, bool, error) {
	raw, ok := meta.Value(field)
	if !ok {
		return time.Time{}, false, nil
	}

	day, err := p.dates.Day(raw)
	if err != nil {
		return time.Time{}, false, invalid(field, err)
	}

	return day, true, nil
}
