package migrate

import (
	"net/url"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

type migrateDownCmdOptions struct {
	DatabaseURL string
	Source      string
	All         bool
}

type migrateDownCmdArgs struct {
	N int
}

func (a *migrateDownCmdArgs) ParseArgs(args []string) error {
	if len(args) > 0 {
		// assume args already validated by cobra to be len(args) <= 1
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Wrap(err, "failed to parse N")
		}
		a.N = n
	}
	return nil
}

func NewMigrateDownCommand() *cobra.Command {
	opts := &migrateDownCmdOptions{}

	cmd := &cobra.Command{
		Use:   "down [N]",
		Short: "Apply all or N down migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// args already validated by cobra
			var downArgs migrateDownCmdArgs
			if err := downArgs.ParseArgs(args); err != nil {
				return errors.Wrap(err, "failed to parse args")
			}
			return migrateDownHandler(opts, downArgs)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Source, "source", defaultSourcePath, "Path to migrations directory")
	flags.StringVar(&opts.DatabaseURL, "database", "", "Database url to run migration on")
	flags.BoolVar(&opts.All, "all", false, "Apply all down migrations")

	return cmd
}

func migrateDownHandler(opts *migrateDownCmdOptions, args migrateDownCmdArgs) error {
	if opts.DatabaseURL == "" {
		return errors.New("--database is required")
	}
	if !opts.All && args.N == 0 {
		return errors.New("N or --all is required")
	}
	databaseURL, err := url.Parse(opts.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "failed to parse database URL")
	}
	if _, ok := supportedDrivers[databaseURL.Scheme]; !ok {
		return errors.Errorf("unsupported database driver: %s", databaseURL.Scheme)
	}

	newDatabaseURL := cloneURLWithQuery(databaseURL, url.Values{"x-migrations-table": {migrationsTableName}})
	m, err := migrate.New("file://"+opts.Source, newDatabaseURL.String())
	if err != nil {
		return errors.Wrap(err, "failed to create Migrate instance")
	}
	m.Log = &consoleLogger{prefix: "[dutchauction] "}

	if opts.All {
		m.Log.Printf("Applying all down migrations...\n")
		err = m.Down()
	} else {
		m.Log.Printf("Applying %d down migrations...\n", args.N)
		err = m.Steps(-args.N)
	}
	if err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return errors.Wrap(err, "failed to apply down migrations")
		}
		m.Log.Printf("Migrations already up-to-date\n")
	}
	return nil
}
