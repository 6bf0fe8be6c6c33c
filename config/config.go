package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"go.hacdias.com/migrate/dates"
)

type Config struct {
	Input     string `mapstructure:"input"`
	Output    string `mapstructure:"out"`
	Force     bool   `mapstructure:"force"`
	Published string `mapstructure:"published"`
	Timezone  string `mapstructure:"timezone"`
	KeepGoing bool   `mapstructure:"keep-going"`
	Strict    bool   `mapstructure:"strict"`
	Verbose   bool   `mapstructure:"verbose"`
	Quiet     bool   `mapstructure:"quiet"`

	location  *time.Location
	published time.Time
}

// Parse reads the configuration from, in order of precedence, the given
// flags, MIGRATE_* environment variables (MIGRATE_KEEP_GOING for keep-going)
// and an optional config file: the one
// named by the "config" flag, or migrate.{yaml,toml,json} in the working
// directory.
func Parse(flags *pflag.FlagSet, input string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("migrate")
	v.AddConfigPath(".")
	v.SetEnvPrefix("MIGRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("timezone", dates.DefaultTimezone)

	if file, _ := flags.GetString("config"); file != "" {
		v.SetConfigFile(file)
	}

	err := v.BindPFlags(flags)
	if err != nil {
		return nil, err
	}

	if input != "" {
		v.Set("input", input)
	}

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	conf := &Config{}
	err = v.Unmarshal(conf)
	if err != nil {
		return nil, err
	}

	err = conf.validate()
	if err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) validate() error {
	var err error

	if c.Input == "" {
		return errors.New("config: input directory is required")
	}

	if c.Output == "" {
		return errors.New("config: output directory is required")
	}

	c.Input, err = filepath.Abs(c.Input)
	if err != nil {
		return err
	}

	c.Output, err = filepath.Abs(c.Output)
	if err != nil {
		return err
	}

	if c.Verbose && c.Quiet {
		return errors.New("config: verbose and quiet are mutually exclusive")
	}

	if c.Input == c.Output {
		return fmt.Errorf("config: input and output are the same directory: %s", c.Input)
	}

	c.location, err = time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}

	if c.Published == "" {
		c.published = time.Now().In(c.location).Truncate(time.Second)
		return nil
	}

	c.published, err = dates.NewNormalizer(c.location).Normalize(c.Published)
	if err != nil {
		return fmt.Errorf("config: invalid published date: %w", err)
	}

	return nil
}

// Location is the zone of legacy timestamps that carry no offset.
func (c *Config) Location() *time.Location {
	return c.location
}

// LogLevel is the minimum level of the progress log. Verbose runs log every
// migrated file, quiet runs only warnings and errors.
func (c *Config) LogLevel() zapcore.Level {
	switch {
	case c.Verbose:
		return zapcore.DebugLevel
	case c.Quiet:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// PublishedDate is the publication date given to every project.
func (c *Config) PublishedDate() time.Time {
	return c.published
}

// HasPublished reports whether the publication date was configured rather
// than defaulted to the current time. Only a configured date makes runs
// reproducible.
func (c *Config) HasPublished() bool {
	return c.Published != ""
}
