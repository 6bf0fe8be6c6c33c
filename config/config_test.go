package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"go.hacdias.com/migrate/dates"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("out", "o", "", "")
	flags.BoolP("force", "f", false, "")
	flags.StringP("published", "p", "", "")
	flags.String("timezone", dates.DefaultTimezone, "")
	flags.Bool("keep-going", false, "")
	flags.Bool("strict", false, "")
	flags.BoolP("verbose", "v", false, "")
	flags.BoolP("quiet", "q", false, "")
	flags.String("config", "", "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestParse(t *testing.T) {
	dir := t.TempDir()

	c, err := Parse(newFlags(t, "-o", filepath.Join(dir, "out"), "-f", "--published", "2021-04-01", "--keep-going"), filepath.Join(dir, "in"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "in"), c.Input)
	assert.Equal(t, filepath.Join(dir, "out"), c.Output)
	assert.True(t, c.Force)
	assert.True(t, c.KeepGoing)
	assert.False(t, c.Strict)
	assert.True(t, c.HasPublished())
	assert.Equal(t, dates.DefaultTimezone, c.Location().String())
	assert.Equal(t, zapcore.InfoLevel, c.LogLevel())

	loc, err := time.LoadLocation(dates.DefaultTimezone)
	require.NoError(t, err)
	assert.True(t, time.Date(2021, 4, 1, 0, 0, 0, 0, loc).Equal(c.PublishedDate()))
}

func TestParseDefaultsPublishedToNow(t *testing.T) {
	dir := t.TempDir()

	before := time.Now().Add(-time.Second)
	c, err := Parse(newFlags(t, "-o", filepath.Join(dir, "out"), "--timezone", "UTC"), filepath.Join(dir, "in"))
	require.NoError(t, err)

	assert.False(t, c.HasPublished())
	assert.True(t, c.PublishedDate().After(before))
	assert.Equal(t, time.UTC, c.Location())
}

func TestParseConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "migrate.yaml")
	require.NoError(t, os.WriteFile(file, []byte("out: "+filepath.Join(dir, "from-file")+"\nstrict: true\ntimezone: Europe/Lisbon\n"), 0644))

	c, err := Parse(newFlags(t, "--config", file), filepath.Join(dir, "in"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "from-file"), c.Output)
	assert.True(t, c.Strict)
	assert.Equal(t, "Europe/Lisbon", c.Location().String())
}

func TestParseEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIGRATE_KEEP_GOING", "true")
	t.Setenv("MIGRATE_OUT", filepath.Join(dir, "from-env"))
	t.Setenv("MIGRATE_STRICT", "true")

	c, err := Parse(newFlags(t), filepath.Join(dir, "in"))
	require.NoError(t, err)

	assert.True(t, c.KeepGoing)
	assert.True(t, c.Strict)
	assert.Equal(t, filepath.Join(dir, "from-env"), c.Output)

	c, err = Parse(newFlags(t, "-o", filepath.Join(dir, "out")), filepath.Join(dir, "in"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out"), c.Output)
}

func TestParseLogLevel(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	in := filepath.Join(dir, "in")

	tests := []struct {
		args     []string
		expected zapcore.Level
	}{
		{[]string{"-o", out}, zapcore.InfoLevel},
		{[]string{"-o", out, "-v"}, zapcore.DebugLevel},
		{[]string{"-o", out, "--quiet"}, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		c, err := Parse(newFlags(t, tt.args...), in)
		require.NoError(t, err, "args: %v", tt.args)
		assert.Equal(t, tt.expected, c.LogLevel(), "args: %v", tt.args)
	}
}

func TestParseErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")

	tests := []struct {
		name  string
		args  []string
		input string
	}{
		{"Missing Input", []string{"-o", out}, ""},
		{"Missing Output", []string{}, in},
		{"Same Directory", []string{"-o", in}, in},
		{"Bad Timezone", []string{"-o", out, "--timezone", "Mars/Olympus"}, in},
		{"Bad Published", []string{"-o", out, "--published", "whenever"}, in},
		{"Missing Config File", []string{"-o", out, "--config", filepath.Join(dir, "nope.yaml")}, in},
		{"Verbose And Quiet", []string{"-o", out, "-v", "-q"}, in},
	}

	for _, tt := range tests {
		_, err := Parse(newFlags(t, tt.args...), tt.input)
		assert.Error(t, err, "failed for: %s", tt.name)
	}
}
