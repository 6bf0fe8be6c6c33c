package migrate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Report summarizes a migration run.
type Report struct {
	ID string

	Posts    int
	Untitled int
	Projects int
	TagFiles int
	Recipes  int
	Assets   int
	Skipped  int

	// AssetTypes counts the copied assets by detected media type.
	AssetTypes map[string]int

	Collisions      int
	DuplicateTitles int

	failures error
}

func newReport() *Report {
	return &Report{ID: uuid.NewString(), AssetTypes: map[string]int{}}
}

func (r *Report) asset(kind string) {
	r.Assets++
	r.AssetTypes[kind]++
}

func (r *Report) fail(err error) {
	r.failures = multierr.Append(r.failures, err)
}

// Failures returns the per-file failures collected during the run.
func (r *Report) Failures() []error {
	return multierr.Errors(r.failures)
}

// Err returns all collected failures as one error, or nil.
func (r *Report) Err() error {
	return r.failures
}

func (r *Report) String() string {
	return fmt.Sprintf(
		"%d posts (%d untitled), %d projects, %d tag files, %d recipes, %d assets%s, %d skipped, %d collisions, %d replaced tag titles, %d failures",
		r.Posts+r.Untitled, r.Untitled, r.Projects, r.TagFiles, r.Recipes, r.Assets, r.assetTypes(), r.Skipped, r.Collisions, r.DuplicateTitles, len(r.Failures()),
	)
}

func (r *Report) assetTypes() string {
	if len(r.AssetTypes) == 0 {
		return ""
	}

	kinds := lo.Keys(r.AssetTypes)
	slices.Sort(kinds)

	parts := lo.Map(kinds, func(kind string, _ int) string {
		return fmt.Sprintf("%d %s", r.AssetTypes[kind], kind)
	})
	return " (" + strings.Join(parts, ", ") + ")"
}
