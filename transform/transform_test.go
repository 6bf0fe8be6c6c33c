package transform

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"go.hacdias.com/migrate/dates"
	"go.hacdias.com/migrate/legacy"
	"go.hacdias.com/migrate/record"
)

func pacific(t *testing.T) *time.Location {
	loc, err := time.LoadLocation(dates.DefaultTimezone)
	require.NoError(t, err)
	return loc
}

func normalizer(t *testing.T) *dates.Normalizer {
	return dates.NewNormalizer(pacific(t))
}

// decoded renders out and reads it back the way a YAML decoder sees it.
func decoded(t *testing.T, out *Output) map[string]any {
	t.Helper()

	data, err := out.Render()
	require.NoError(t, err)

	if out.Kind == KindSettings {
		var back map[string]any
		require.NoError(t, yaml.Unmarshal(data, &back))
		return back
	}

	doc, err := legacy.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, out.Body, doc.Body)
	return doc.Metadata.Typed
}

// assertRoundTrip checks that every field of out survives being written and
// read back.
func assertRoundTrip(t *testing.T, out *Output) {
	t.Helper()
	assertSameRecord(t, out.Record, decoded(t, out), "")
}

func assertSameRecord(t *testing.T, want *record.Record, got map[string]any, path string) {
	t.Helper()

	assert.Len(t, got, len(want.Keys()), path)
	for _, k := range want.Keys() {
		v, _ := want.Get(k)
		assertSameValue(t, v, got[k], path+"."+k)
	}
}

func assertSameValue(t *testing.T, want, got any, path string) {
	t.Helper()

	switch w := want.(type) {
	case *record.Record:
		m, ok := got.(map[string]any)
		require.True(t, ok, "%s: expected a mapping, got %T", path, got)
		assertSameRecord(t, w, m, path)
	case time.Time:
		g, ok := got.(time.Time)
		require.True(t, ok, "%s: expected a timestamp, got %T", path, got)
		assert.True(t, w.Equal(g), "%s: %s != %s", path, w, g)
	case record.Date:
		g, ok := got.(time.Time)
		require.True(t, ok, "%s: expected a date, got %T", path, got)
		assert.Equal(t, w.String(), g.Format(dates.DayLayout), path)
	case []*record.Record:
		items, ok := got.([]any)
		require.True(t, ok, "%s: expected a sequence, got %T", path, got)
		require.Len(t, items, len(w), path)
		for i := range w {
			assertSameValue(t, w[i], items[i], fmt.Sprintf("%s[%d]", path, i))
		}
	case []string:
		items, ok := got.([]any)
		require.True(t, ok, "%s: expected a sequence, got %T", path, got)
		require.Len(t, items, len(w), path)
		for i := range w {
			assert.Equal(t, w[i], items[i], "%s[%d]", path, i)
		}
	default:
		assert.Equal(t, want, got, path)
	}
}
