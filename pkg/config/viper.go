package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/novostroy/pkg/dotdir"
)

// Viper keys that are only ever read from the environment.
const (
	// KeyGatewayAPIKey is bound to NOVOSTROY_GATEWAY_API_KEY.
	KeyGatewayAPIKey = "gateway_api_key"

	// KeyClientToken is bound to NOVOSTROY_CLIENT_TOKEN.
	KeyClientToken = "client_token"

	// KeyLibSQLAuthToken is bound to NOVOSTROY_LIBSQL_AUTH_TOKEN.
	KeyLibSQLAuthToken = "libsql_auth_token"
)

const envPrefix = "NOVOSTROY"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the NOVOSTROY_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (NOVOSTROY_PROXY_LISTEN, NOVOSTROY_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: NOVOSTROY_PROXY_LISTEN, NOVOSTROY_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{KeyGatewayAPIKey, KeyClientToken, KeyLibSQLAuthToken} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	return v, nil
}

// Load decodes the effective configuration held by v.
func Load(v *viper.Viper) *Config {
	cfg := NewDefaultConfig()

	cfg.Storage.SQLitePath = v.GetString("storage.sqlite_path")
	cfg.Storage.PostgresDSN = v.GetString("storage.postgres_dsn")
	cfg.Storage.LibSQLURL = v.GetString("storage.libsql_url")
	cfg.Storage.LibSQLReplica = v.GetString("storage.libsql_replica")

	cfg.Proxy.Listen = v.GetString("proxy.listen")
	cfg.Proxy.GatewayURL = v.GetString("proxy.gateway_url")
	cfg.Proxy.Model = v.GetString("proxy.model")
	cfg.Proxy.RateLimit = v.GetUint("proxy.rate_limit")

	cfg.API.Listen = v.GetString("api.listen")

	cfg.Client.FunctionTarget = v.GetString("client.function_target")
	cfg.Client.APITarget = v.GetString("client.api_target")
	cfg.Client.CityID = v.GetString("client.city_id")

	cfg.EventStream.KafkaBrokers = brokers(v)
	cfg.EventStream.KafkaTopic = v.GetString("eventstream.kafka_topic")

	return cfg
}

// brokers accepts both a TOML list and a comma separated environment value.
func brokers(v *viper.Viper) []string {
	var out []string
	for _, item := range v.GetStringSlice("eventstream.kafka_brokers") {
		out = append(out, SplitList(item)...)
	}
	return out
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)
	v.SetDefault("storage.libsql_url", d.Storage.LibSQLURL)
	v.SetDefault("storage.libsql_replica", d.Storage.LibSQLReplica)

	// Proxy
	v.SetDefault("proxy.listen", d.Proxy.Listen)
	v.SetDefault("proxy.gateway_url", d.Proxy.GatewayURL)
	v.SetDefault("proxy.model", d.Proxy.Model)
	v.SetDefault("proxy.rate_limit", d.Proxy.RateLimit)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Client
	v.SetDefault("client.function_target", d.Client.FunctionTarget)
	v.SetDefault("client.api_target", d.Client.APITarget)
	v.SetDefault("client.city_id", d.Client.CityID)

	// Event stream
	v.SetDefault("eventstream.kafka_brokers", d.EventStream.KafkaBrokers)
	v.SetDefault("eventstream.kafka_topic", d.EventStream.KafkaTopic)
}
