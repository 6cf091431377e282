package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent novostroy configuration stored as
// config.toml in the .novostroy/ directory. The TOML layout uses sections for
// logical grouping.
//
// Secrets are never persisted: the gateway key and the client bearer token
// are read from NOVOSTROY_GATEWAY_API_KEY and NOVOSTROY_CLIENT_TOKEN.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	Proxy       ProxyConfig       `toml:"proxy"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// StorageConfig selects the catalog and search-history backend shared by the
// ai-search function and the API. The first non-empty of libsql_url,
// postgres_dsn and sqlite_path wins; with none set an in-memory store is used.
type StorageConfig struct {
	SQLitePath    string `toml:"sqlite_path,omitempty"`
	PostgresDSN   string `toml:"postgres_dsn,omitempty"`
	LibSQLURL     string `toml:"libsql_url,omitempty"`
	LibSQLReplica string `toml:"libsql_replica,omitempty"`
}

// ProxyConfig holds settings of the ai-search function.
type ProxyConfig struct {
	Listen     string `toml:"listen,omitempty"`
	GatewayURL string `toml:"gateway_url,omitempty"`
	Model      string `toml:"model,omitempty"`

	// RateLimit is the number of searches accepted per minute. 0 disables
	// the limit.
	RateLimit uint `toml:"rate_limit,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to the running
// servers (e.g. novostroy ask). Targets are full URLs (scheme + host + port).
type ClientConfig struct {
	FunctionTarget string `toml:"function_target,omitempty"`
	APITarget      string `toml:"api_target,omitempty"`
	CityID         string `toml:"city_id,omitempty"`
}

// EventStreamConfig configures publishing of search-completed events.
// Without brokers events are not published.
type EventStreamConfig struct {
	KafkaBrokers []string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string   `toml:"kafka_topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"storage.libsql_url": {
		get: func(c *Config) string { return c.Storage.LibSQLURL },
		set: func(c *Config, v string) error { c.Storage.LibSQLURL = v; return nil },
	},
	"storage.libsql_replica": {
		get: func(c *Config) string { return c.Storage.LibSQLReplica },
		set: func(c *Config, v string) error { c.Storage.LibSQLReplica = v; return nil },
	},
	"proxy.listen": {
		get: func(c *Config) string { return c.Proxy.Listen },
		set: func(c *Config, v string) error { c.Proxy.Listen = v; return nil },
	},
	"proxy.gateway_url": {
		get: func(c *Config) string { return c.Proxy.GatewayURL },
		set: func(c *Config, v string) error { c.Proxy.GatewayURL = v; return nil },
	},
	"proxy.model": {
		get: func(c *Config) string { return c.Proxy.Model },
		set: func(c *Config, v string) error { c.Proxy.Model = v; return nil },
	},
	"proxy.rate_limit": {
		get: func(c *Config) string {
			if c.Proxy.RateLimit == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Proxy.RateLimit), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for proxy.rate_limit: %w", err)
			}
			c.Proxy.RateLimit = uint(n)
			return nil
		},
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"client.function_target": {
		get: func(c *Config) string { return c.Client.FunctionTarget },
		set: func(c *Config, v string) error { c.Client.FunctionTarget = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"client.city_id": {
		get: func(c *Config) string { return c.Client.CityID },
		set: func(c *Config, v string) error { c.Client.CityID = v; return nil },
	},
	"eventstream.kafka_brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.KafkaBrokers, ",") },
		set: func(c *Config, v string) error {
			c.EventStream.KafkaBrokers = SplitList(v)
			return nil
		},
	},
	"eventstream.kafka_topic": {
		get: func(c *Config) string { return c.EventStream.KafkaTopic },
		set: func(c *Config, v string) error { c.EventStream.KafkaTopic = v; return nil },
	},
}

// SplitList splits a comma separated value, trimming blanks and dropping
// empty items. It returns nil when nothing is left.
func SplitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
