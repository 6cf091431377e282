// Package seedcmder provides the seed command, which loads a YAML catalog of
// cities, developers, complexes, apartments and reviews into a store.
package seedcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/novostroy/pkg/catalog"
	"github.com/papercomputeco/novostroy/pkg/cliui"
	"github.com/papercomputeco/novostroy/pkg/config"
	"github.com/papercomputeco/novostroy/pkg/logger"
	"github.com/papercomputeco/novostroy/pkg/storage"
	storageutils "github.com/papercomputeco/novostroy/pkg/storage/utils"
)

const seedLongDesc string = `Seed a catalog into the configured store.

Reads a YAML file with cities, developers, complexes, apartments and reviews
and writes it into SQLite, PostgreSQL or libSQL. Existing rows with the same
identifiers are replaced.

Examples:
  novostroy seed --file catalog.yaml --sqlite ./novostroy.db
  novostroy seed --file catalog.yaml --postgres postgres://localhost/novostroy`

const seedShortDesc string = "Seed the residential complex catalog"

var errNoStore = errors.New("seed needs a persistent store: set --sqlite, --postgres or --libsql")

type seedCommander struct {
	file string

	sqlitePath    string
	postgresDSN   string
	libsqlURL     string
	libsqlReplica string

	viper *viper.Viper
	out   io.Writer
}

var flags = []string{
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagLibSQL,
	config.FlagLibSQLReplica,
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Registry, flags)

			cfg := config.Load(v)
			cmder.viper = v
			cmder.sqlitePath = cfg.Storage.SQLitePath
			cmder.postgresDSN = cfg.Storage.PostgresDSN
			cmder.libsqlURL = cfg.Storage.LibSQLURL
			cmder.libsqlReplica = cfg.Storage.LibSQLReplica
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.file, "file", "", "Path to the YAML catalog")
	_ = cmd.MarkFlagRequired("file")
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagLibSQL, &cmder.libsqlURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagLibSQLReplica, &cmder.libsqlReplica)

	return cmd
}

func (c *seedCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := &storageutils.NewDriverOpts{
		SQLitePath:      c.sqlitePath,
		PostgresDSN:     c.postgresDSN,
		LibSQLURL:       c.libsqlURL,
		LibSQLAuthToken: c.viper.GetString(config.KeyLibSQLAuthToken),
		LibSQLReplica:   c.libsqlReplica,
		Logger:          logger.Nop(),
	}
	if opts.Backend() == storageutils.BackendInMemory {
		return errNoStore
	}

	f, err := os.Open(c.file)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	fixtures, err := catalog.LoadFixtures(f)
	if err != nil {
		return err
	}

	driver, err := storageutils.NewDriver(ctx, opts)
	if err != nil {
		return err
	}
	defer driver.Close()

	var counts storage.SeedCounts
	if err := cliui.Step(c.out, "Seeding catalog", func() error {
		var seedErr error
		counts, seedErr = storage.Seed(ctx, driver, fixtures)
		return seedErr
	}); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Seeded %s complexes %s into %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(counts.Complexes)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d cities, %d developers, %d apartments, %d reviews)",
			counts.Cities, counts.Developers, counts.Apartments, counts.Reviews)),
		cliui.DimStyle.Render(opts.Backend()),
	)
	return nil
}
