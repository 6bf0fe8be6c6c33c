package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"go.hacdias.com/migrate/config"
	"go.hacdias.com/migrate/dates"
	"go.hacdias.com/migrate/log"
	"go.hacdias.com/migrate/migrate"
)

func init() {
	flags := rootCmd.Flags()
	flags.StringP("out", "o", "", "Output directory root")
	flags.BoolP("force", "f", false, "Clobber output directory if it exists")
	flags.StringP("published", "p", "", "Publication date given to every project (default: now)")
	flags.String("timezone", dates.DefaultTimezone, "Timezone of legacy timestamps without an offset")
	flags.Bool("keep-going", false, "Migrate every file and report all failures at the end")
	flags.Bool("strict", false, "Fail on output collisions and conflicting tag titles")
	flags.BoolP("verbose", "v", false, "Log every migrated and copied file")
	flags.BoolP("quiet", "q", false, "Only log warnings and errors")
	flags.String("config", "", "Configuration file")
}

var rootCmd = &cobra.Command{
	Use:               "migrate [flags] <input>",
	Short:             "Migrate legacy content into the new content layout",
	Args:              cobra.ExactArgs(1),
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceErrors:     true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Parse(cmd.Flags(), args[0])
		if err != nil {
			return err
		}

		log.SetLevel(c.LogLevel())
		defer func() {
			_ = log.L().Sync()
		}()

		log := log.S()
		if !c.HasPublished() {
			log.Warnw("no published date given, projects are published now and runs are not reproducible", "published", c.PublishedDate())
		}

		fs := afero.NewOsFs()
		err = migrate.PrepareOutput(fs, c.Output, c.Force, log)
		if err != nil {
			return err
		}

		m := migrate.New(migrate.NewFS(fs, c.Input), migrate.NewFS(fs, c.Output), migrate.Options{
			Published: c.PublishedDate(),
			Location:  c.Location(),
			KeepGoing: c.KeepGoing,
			Strict:    c.Strict,
		}, log)

		report, err := m.Run()
		fmt.Fprintln(cmd.OutOrStdout(), report.String())
		return err
	},
}
