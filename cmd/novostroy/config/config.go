// Package configcmder provides the config command for managing persistent
// novostroy configuration stored in the .novostroy/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent novostroy configuration.

Configuration is stored as config.toml in the .novostroy/ directory and
provides default values for command flags. CLI flags and NOVOSTROY_*
environment variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path, storage.postgres_dsn, storage.libsql_url,
  storage.libsql_replica,
  proxy.listen, proxy.gateway_url, proxy.model, proxy.rate_limit,
  api.listen,
  client.function_target, client.api_target, client.city_id,
  eventstream.kafka_brokers, eventstream.kafka_topic

Secrets are never written to the config file. Set them in the environment:
  NOVOSTROY_GATEWAY_API_KEY, NOVOSTROY_CLIENT_TOKEN, NOVOSTROY_LIBSQL_AUTH_TOKEN

Use subcommands to get, set, or list configuration values:
  novostroy config set <key> <value>    Set a configuration value
  novostroy config get <key>            Get a configuration value
  novostroy config list                 List all configuration values

Examples:
  novostroy config set proxy.model google/gemini-2.5-flash
  novostroy config set eventstream.kafka_brokers localhost:9092,localhost:9093
  novostroy config get client.city_id
  novostroy config list`

const configShortDesc string = "Manage persistent novostroy configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
