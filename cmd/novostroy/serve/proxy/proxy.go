// Package proxycmder provides the ai-search function server command.
package proxycmder

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

	"github.com/papercomputeco/novostroy/pkg/cliui"
	"github.com/papercomputeco/novostroy/pkg/config"
	eventstreamutils "github.com/papercomputeco/novostroy/pkg/eventstream/utils"
	"github.com/papercomputeco/novostroy/pkg/logger"
	storageutils "github.com/papercomputeco/novostroy/pkg/storage/utils"
	"github.com/papercomputeco/novostroy/proxy"
)

type proxyCommander struct {
	listen     string
	gatewayURL string
	model      string
	rateLimit  uint

	sqlitePath    string
	postgresDSN   string
	libsqlURL     string
	libsqlReplica string

	kafkaBrokers []string
	kafkaTopic   string

	debug  bool
	viper  *viper.Viper
	logger *slog.Logger
}

const proxyLongDesc string = `Run the ai-search function.

Every search is grounded on the residential complexes in the configured store,
forwarded to an OpenAI-compatible AI gateway and streamed back to the caller
as server-sent events, unmodified. The finished answer is recorded in the
search history and, when Kafka brokers are configured, published as a
search-completed event.

The gateway key is read from NOVOSTROY_GATEWAY_API_KEY.`

const proxyShortDesc string = "Run the ai-search function"

var flags = []string{
	config.FlagProxyListenStandalone,
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

func NewProxyCmd() *cobra.Command {
	cmder := &proxyCommander{}

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: proxyShortDesc,
		Long:  proxyLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
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

	config.AddStringFlag(cmd, config.Registry, config.FlagProxyListenStandalone, &cmder.listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagGatewayURL, &cmder.gatewayURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagModel, &cmder.model)
	config.AddUintFlag(cmd, config.Registry, config.FlagRateLimit, &cmder.rateLimit)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagLibSQL, &cmder.libsqlURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagLibSQLReplica, &cmder.libsqlReplica)
	config.AddStringSliceFlag(cmd, config.Registry, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaTopic, &cmder.kafkaTopic)

	return cmd
}

func (c *proxyCommander) load(v *viper.Viper) {
	cfg := config.Load(v)

	c.viper = v
	c.listen = cfg.Proxy.Listen
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

func (c *proxyCommander) run(ctx context.Context) error {
	c.logger = newLogger(c.debug)

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
		ListenAddr:    c.listen,
		GatewayURL:    c.gatewayURL,
		GatewayAPIKey: c.viper.GetString(config.KeyGatewayAPIKey),
		Model:         c.model,
		RateLimit:     int(c.rateLimit),
		Publisher:     publisher,
	}, driver, c.logger)
	if err != nil {
		return fmt.Errorf("creating proxy: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- p.Run()
	}()

	select {
	case err := <-errChan:
		return errors.Join(err, p.Close())
	case <-ctx.Done():
		c.logger.Info("shutting down ai-search server")
		return p.Close()
	}
}

func newLogger(debug bool) *slog.Logger {
	tty := cliui.IsTerminal(os.Stderr)
	return logger.New(
		logger.WithDebug(debug),
		logger.WithSource(debug),
		logger.WithPretty(tty),
		logger.WithJSON(!tty),
		logger.WithWriter(os.Stderr),
		logger.WithComponent("proxy"),
	)
}
