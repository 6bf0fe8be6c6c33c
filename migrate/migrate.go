// Package migrate walks a legacy content tree and writes its normalized
// counterpart.
package migrate

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"go.hacdias.com/migrate/dates"
	"go.hacdias.com/migrate/transform"
)

const (
	BlogDirectory     = "blog"
	TagsDirectory     = "tags"
	ProjectsDirectory = "projects"
	RecipesDirectory  = "recipes"
)

var (
	ErrOutputCollision = errors.New("output collision")
	ErrOutputExists    = errors.New("output directory exists")
)

type Options struct {
	// Published is the publication date of every project.
	Published time.Time

	// Location is assigned to legacy timestamps without an offset.
	Location *time.Location

	// KeepGoing collects per-file failures instead of stopping at the first.
	KeepGoing bool

	// Strict turns output collisions and conflicting tag titles into failures.
	Strict bool
}

type Migrator struct {
	src  *FS
	dst  *FS
	opts Options
	log  *zap.SugaredLogger

	posts    transform.Transformer
	projects transform.Transformer
	tags     *transform.TagDeclarations

	written map[string]string // output file -> source that produced it
	report  *Report
}

func New(src, dst *FS, opts Options, log *zap.SugaredLogger) *Migrator {
	n := dates.NewNormalizer(opts.Location)

	return &Migrator{
		src:      src,
		dst:      dst,
		opts:     opts,
		log:      log,
		posts:    transform.NewPost(n),
		projects: transform.NewProject(n, opts.Published),
		tags:     transform.NewTagDeclarations(),
	}
}

// Run migrates the whole tree. Without KeepGoing the first failure aborts the
// run; otherwise failures are collected and returned together at the end.
func (m *Migrator) Run() (*Report, error) {
	m.written = map[string]string{}
	m.report = newReport()

	log := m.log.With("run", m.report.ID)
	log.Infow("starting migration", "source", m.src.Path(), "output", m.dst.Path())

	steps := []func() error{
		m.migratePosts,
		m.migrateTags,
		m.migrateProjects,
	}

	for _, step := range steps {
		err := step()
		if err != nil {
			return m.report, err
		}
	}

	log.Infow("finished migration", "summary", m.report.String())
	return m.report, m.report.Err()
}

func (m *Migrator) migratePosts() error {
	files, err := m.src.Files(BlogDirectory, isMarkdown)
	if err != nil {
		return err
	}

	for _, p := range files {
		if transform.IsRecipe(p) {
			err = m.copyRecipe(p)
			if err != nil {
				return err
			}
			continue
		}

		out, err := m.migrateDocument(m.posts, p)
		if err != nil {
			return err
		}
		if out == nil {
			continue
		}

		if strings.HasPrefix(out.Location, transform.UntitledRoot+"/") {
			m.report.Untitled++
		} else {
			m.report.Posts++
		}
	}

	return nil
}

func (m *Migrator) migrateProjects() error {
	files, err := m.src.Files(ProjectsDirectory, isMarkdown)
	if err != nil {
		return err
	}

	for _, p := range files {
		out, err := m.migrateDocument(m.projects, p)
		if err != nil {
			return err
		}
		if out != nil {
			m.report.Projects++
		}
	}

	return nil
}

func (m *Migrator) migrateTags() error {
	files, err := m.src.Files(TagsDirectory, isYAML)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return nil
	}

	srcs := make([]transform.Source, 0, len(files))
	for _, p := range files {
		raw, err := m.src.ReadFile(p)
		if err != nil {
			return m.fail(p, err)
		}
		srcs = append(srcs, transform.Source{Path: filepath.ToSlash(p), Raw: raw})
	}

	out, err := m.tags.TransformAll(srcs)
	if err != nil {
		return m.fail(TagsDirectory, err)
	}

	for _, d := range out.Duplicates {
		m.report.DuplicateTitles++
		if m.opts.Strict {
			err = m.fail(d.Path, d)
			if err != nil {
				return err
			}
			continue
		}
		m.log.Warnw("tag title replaced", "tag", d.Slug, "previous", d.Previous, "current", d.Current, "source", d.Path)
	}

	err = m.write(TagsDirectory, out)
	if err != nil {
		return m.fail(TagsDirectory, err)
	}

	m.report.TagFiles += len(files)
	return nil
}

// migrateDocument transforms and writes a single document. It returns a nil
// output when the document was skipped or its failure was collected.
func (m *Migrator) migrateDocument(t transform.Transformer, p string) (*transform.Output, error) {
	raw, err := m.src.ReadFile(p)
	if err != nil {
		return nil, m.fail(p, err)
	}

	out, err := t.Transform(transform.Source{Path: filepath.ToSlash(p), Raw: raw})
	if errors.Is(err, transform.ErrSkipped) {
		m.log.Debugw("skipped", "source", p)
		m.report.Skipped++
		return nil, nil
	}
	if err != nil {
		return nil, m.fail(p, err)
	}

	err = m.write(p, out)
	if err != nil {
		return nil, m.fail(p, err)
	}

	if filepath.Base(p) == transform.IndexName {
		err = m.copyAssets(filepath.Dir(p), path.Dir(out.Filename()))
		if err != nil {
			return nil, m.fail(p, err)
		}
	}

	return out, nil
}

func (m *Migrator) write(source string, out *transform.Output) error {
	filename := out.Filename()

	err := m.claim(filename, source)
	if err != nil {
		return err
	}

	data, err := out.Render()
	if err != nil {
		return err
	}

	err = m.dst.WriteFile(filename, data)
	if err != nil {
		return fmt.Errorf("could not write %s: %w", filename, err)
	}

	m.log.Debugw("migrated", "source", source, "output", filename)
	return nil
}

// copyAssets copies the files that accompany a bundle's index next to the
// migrated index.
func (m *Migrator) copyAssets(srcDir, dstDir string) error {
	assets, err := m.src.Siblings(srcDir, func(name string) bool {
		return !isMarkdown(name)
	})
	if err != nil {
		return err
	}

	for _, asset := range assets {
		kind, err := m.copyFile(asset, path.Join(dstDir, filepath.Base(asset)))
		if err != nil {
			return err
		}
		m.report.asset(kind)
	}

	return nil
}

// copyRecipe copies a recipe verbatim into the recipes directory.
func (m *Migrator) copyRecipe(p string) error {
	_, err := m.copyFile(p, path.Join(RecipesDirectory, filepath.Base(p)))
	if err != nil {
		return m.fail(p, err)
	}

	m.report.Recipes++
	return nil
}

// copyFile copies src to dst and returns the media type detected from its
// content, without parameters.
func (m *Migrator) copyFile(src, dst string) (string, error) {
	err := m.claim(dst, src)
	if err != nil {
		return "", err
	}

	data, err := m.src.ReadFile(src)
	if err != nil {
		return "", err
	}

	err = m.dst.WriteFile(dst, data)
	if err != nil {
		return "", err
	}

	kind, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	m.log.Debugw("copied", "source", src, "output", dst, "mime", kind)
	return kind, nil
}

// claim records that source produces filename. Two sources producing the same
// file is a collision: the later one wins unless running in strict mode.
func (m *Migrator) claim(filename, source string) error {
	if prev, ok := m.written[filename]; ok {
		if m.opts.Strict {
			return fmt.Errorf("%w: %s and %s both produce %s", ErrOutputCollision, prev, source, filename)
		}
		m.log.Warnw("output overwritten", "output", filename, "previous", prev, "source", source)
		m.report.Collisions++
	}

	m.written[filename] = source
	return nil
}

// fail returns err, annotated with the file it concerns, unless failures are
// being collected.
func (m *Migrator) fail(p string, err error) error {
	err = fmt.Errorf("%s: %w", p, err)
	if !m.opts.KeepGoing {
		return err
	}

	m.log.Errorw("migration failed", "source", p, "err", err)
	m.report.fail(err)
	return nil
}

// PrepareOutput makes sure dir is a fresh, empty directory. An existing dir is
// only removed when force is set.
func PrepareOutput(fs afero.Fs, dir string, force bool, log *zap.SugaredLogger) error {
	exists, err := afero.Exists(fs, dir)
	if err != nil {
		return err
	}

	if exists {
		if !force {
			return fmt.Errorf("%w: %s exists! Provide -f/--force to clobber", ErrOutputExists, dir)
		}

		log.Infow("clobbering output", "path", dir)
		err = fs.RemoveAll(dir)
		if err != nil {
			return err
		}
	}

	return fs.MkdirAll(dir, 0777)
}

func isMarkdown(name string) bool {
	return strings.HasSuffix(name, ".md")
}

func isYAML(name string) bool {
	return lo.Contains([]string{".yaml", ".yml"}, filepath.Ext(name))
}
