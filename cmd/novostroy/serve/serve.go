// Package servecmder provides the serve command with subcommands for running services.
package servecmder

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
	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/novostroy/api"
	apicmder "github.com/papercomputeco/novostroy/cmd/novostroy/serve/api"
	proxycmder "github.com/papercomputeco/novostroy/cmd/novostroy/serve/proxy"
	"github.com/papercomputeco/novostroy/pkg/cliui"
	"github.com/papercomputeco/novostroy/pkg/config"
	"github.com/papercomputeco/novostroy/pkg/dotdir"
	eventstreamutils "github.com/papercomputeco/novostroy/pkg/eventstream/utils"
	"github.com/papercomputeco/novostroy/pkg/logger"
	storageutils "github.com/papercomputeco/novostroy/pkg/storage/utils"
	"github.com/papercomputeco/novostroy/proxy"
)

type ServeCommander struct {
	proxyListen string
	apiListen   string
	gatewayURL  string
	model       string
	rateLimit   uint

	sqlitePath    string
	postgresDSN   string
	libsqlURL     string
	libsqlReplica string

	kafkaBrokers []string
	kafkaTopic   string

	configDir string
	debug     bool
	viper  *viper.Viper
	logger *slog.Logger
}

const serveLongDesc string = `Run novostroy services.

Use subcommands to run individual services or all services together:
  novostroy serve          Run both the ai-search function and the API server
  novostroy serve api      Run just the API server
  novostroy serve proxy    Run just the ai-search function

Both services share one store. The gateway key is read from
NOVOSTROY_GATEWAY_API_KEY. Besides the terminal, logs are appended as JSON to
serve.log in the .novostroy/ directory.`

const serveShortDesc string = "Run novostroy services"

var flags = []string{
	config.FlagProxyListen,
	config.FlagAPIListen,
	config.FlagGatewayURL,
	config.FlagModel,
	config.FlagRateLimit,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagLibSQL,
	config.FlagLibSQLReplica,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Registry, flags)
			cmder.load(v)
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

	config.AddStringFlag(cmd, config.Registry, config.FlagProxyListen, &cmder.proxyListen)
	config.AddStringFlag(cmd, config.Registry, config.FlagAPIListen, &cmder.apiListen)
	config.AddStringFlag(cmd, config.Registry, config.FlagGatewayURL, &cmder.gatewayURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagModel, &cmder.model)
	config.AddUintFlag(cmd, config.Registry, config.FlagRateLimit, &cmder.rateLimit)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagLibSQL, &cmder.libsqlURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagLibSQLReplica, &cmder.libsqlReplica)
	config.AddStringSliceFlag(cmd, config.Registry, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaTopic, &cmder.kafkaTopic)

	cmd.AddCommand(apicmder.NewAPICmd())
	cmd.AddCommand(proxycmder.NewProxyCmd())

	return cmd
}

func (c *ServeCommander) load(v *viper.Viper) {
	cfg := config.Load(v)

	c.viper = v
	c.proxyListen = cfg.Proxy.Listen
	c.apiListen = cfg.API.Listen
	c.gatewayURL = cfg.Proxy.GatewayURL
	c.model = cfg.Proxy.Model
	c.rateLimit = cfg.Proxy.RateLimit
	c.sqlitePath = cfg.Storage.SQLitePath
	c.postgresDSN = cfg.Storage.PostgresDSN
	c.libsqlURL = cfg.Storage.LibSQLURL
	c.libsqlReplica = cfg.Storage.LibSQLReplica
	c.kafkaBrokers = cfg.EventStream.KafkaBrokers
	c.kafkaTopic = cfg.EventStream.KafkaTopic
}

func (c *ServeCommander) run(ctx context.Context) error {
	tty := cliui.IsTerminal(os.Stderr)
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithSource(c.debug),
		logger.WithPretty(tty),
		logger.WithJSON(!tty),
		logger.WithWriter(os.Stderr),
	)

	logFile, err := dotdir.NewManager().OpenServeLog(c.configDir)
	if err != nil {
		c.logger.Warn("serve log disabled", "error", err)
	} else {
		defer logFile.Close()
		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithDebug(c.debug),
			logger.WithJSON(true),
			logger.WithWriter(logFile),
		))
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create shared driver
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

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		KafkaBrokers: c.kafkaBrokers,
		KafkaTopic:   c.kafkaTopic,
		Logger:       c.logger,
	})
	if err != nil {
		return err
	}
	defer publisher.Close()

	p, err := proxy.New(proxy.Config{
		ListenAddr:    c.proxyListen,
		GatewayURL:    c.gatewayURL,
		GatewayAPIKey: c.viper.GetString(config.KeyGatewayAPIKey),
		Model:         c.model,
		RateLimit:     int(c.rateLimit),
		Publisher:     publisher,
	}, driver, c.logger.With("component", "proxy"))
	if err != nil {
		return fmt.Errorf("creating proxy: %w", err)
	}

	apiServer, err := api.NewServer(api.Config{ListenAddr: c.apiListen}, driver, c.logger.With("component", "api"))
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := p.Run(); err != nil {
			return fmt.Errorf("proxy error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := apiServer.Run(); err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	})

	// Either a signal or a failed server stops both.
	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down")
		return errors.Join(p.Close(), apiServer.Shutdown())
	})

	return g.Wait()
}
