// Package apicmder provides the catalog API server cobra command.
package apicmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/novostroy/api"
	"github.com/papercomputeco/novostroy/pkg/cliui"
	"github.com/papercomputeco/novostroy/pkg/config"
	"github.com/papercomputeco/novostroy/pkg/logger"
	storageutils "github.com/papercomputeco/novostroy/pkg/storage/utils"
)

type apiCommander struct {
	listen string
	noMCP  bool

	sqlitePath    string
	postgresDSN   string
	libsqlURL     string
	libsqlReplica string

	debug  bool
	viper  *viper.Viper
	logger *slog.Logger
}

const apiLongDesc string = `Run the catalog API server.

Serves residential complexes with their apartments and reviews, resolves the
complexes recommended by an answer, lists the search history, and exposes the
catalog as MCP tools at /mcp.`

const apiShortDesc string = "Run the catalog API server"

var flags = []string{
	config.FlagAPIListenStandalone,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagLibSQL,
	config.FlagLibSQLReplica,
}

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}

	cmd := &cobra.Command{
		Use:   "api",
		Short: apiShortDesc,
		Long:  apiLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Registry, flags)

			cfg := config.Load(v)
			cmder.viper = v
			cmder.listen = cfg.API.Listen
			cmder.sqlitePath = cfg.Storage.SQLitePath
			cmder.postgresDSN = cfg.Storage.PostgresDSN
			cmder.libsqlURL = cfg.Storage.LibSQLURL
			cmder.libsqlReplica = cfg.Storage.LibSQLReplica
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagAPIListenStandalone, &cmder.listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagLibSQL, &cmder.libsqlURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagLibSQLReplica, &cmder.libsqlReplica)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the /mcp endpoint")

	return cmd
}

func (c *apiCommander) run(ctx context.Context) error {
	tty := cliui.IsTerminal(os.Stderr)
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithSource(c.debug),
		logger.WithPretty(tty),
		logger.WithJSON(!tty),
		logger.WithWriter(os.Stderr),
		logger.WithComponent("api"),
	)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
		SQLitePath:      c.sqlitePath,
		PostgresDSN:     c.postgresDSN,
		LibSQLURL:       c.libsqlURL,
		LibSQLAuthToken: c.viper.GetString(config.KeyLibSQLAuthToken),
		LibSQLReplica:   c.libsqlReplica,
		Logger:          c.logger,
	})
	if err != nil {
		return err
	}
	defer driver.Close()

	server, err := api.NewServer(api.Config{
		ListenAddr: c.listen,
		NoMCP:      c.noMCP,
	}, driver, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	select {
	case err := <-errChan:
		return errors.Join(err, server.Shutdown())
	case <-ctx.Done():
		c.logger.Info("shutting down API server")
		return server.Shutdown()
	}
}
