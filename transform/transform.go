// Package transform maps legacy records onto the normalized schema and decides
// where each of them lives in the output tree.
package transform

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"go.hacdias.com/migrate/legacy"
	"go.hacdias.com/migrate/record"
)

var (
	// ErrSkipped is returned for inputs a transformer deliberately ignores.
	ErrSkipped = errors.New("skipped")

	ErrMissingRequiredField = errors.New("missing required field")
	ErrDuplicateTagTitle    = errors.New("duplicate tag title")
)

// MissingFieldError names the required legacy field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingRequiredField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// Source is a legacy input file. Path is slash separated and relative to the
// input root.
type Source struct {
	Path string
	Raw  []byte
}

type Kind int

const (
	// KindDocument outputs are a header followed by the Markdown body.
	KindDocument Kind = iota
	// KindSettings outputs are a bare YAML file.
	KindSettings
)

// Output is a transformed record. Location is relative to the output root and
// has no extension.
type Output struct {
	Location string
	Kind     Kind
	Record   *record.Record
	Body     string

	// Duplicates lists tag titles that were overwritten by a later declaration.
	Duplicates []Duplicate
}

func (o *Output) Filename() string {
	if o.Kind == KindSettings {
		return o.Location + ".yml"
	}
	return o.Location + ".md"
}

// Render serializes the output the way it is written to disk.
func (o *Output) Render() ([]byte, error) {
	data, err := record.Marshal(o.Record)
	if err != nil {
		return nil, err
	}

	if o.Kind == KindSettings {
		return data, nil
	}

	return legacy.Compose(data, o.Body), nil
}

// Transformer turns one legacy input into its normalized output.
type Transformer interface {
	Transform(src Source) (*Output, error)
}

func invalid(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", legacy.ErrInvalidMetadata, field, err)
}

// slugify only normalizes the Unicode form: file names written on macOS are
// decomposed and would otherwise produce different paths for the same slug.
func slugify(name string) string {
	return norm.NFC.String(name)
}

func dirName(p string) string {
	return slugify(path.Base(path.Dir(p)))
}

func baseName(p, ext string) string {
	return slugify(strings.TrimSuffix(path.Base(p), ext))
}
