package config

const (
	defaultProxyListen = ":8080"
	defaultAPIListen   = ":8081"
	defaultGatewayURL  = "https://ai.gateway.lovable.dev"
	defaultModel       = "google/gemini-3-flash-preview"

	defaultClientFunctionTarget = "http://localhost:8080"
	defaultClientAPITarget      = "http://localhost:8081"

	defaultKafkaTopic = "novostroy.searches"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Proxy: ProxyConfig{
			Listen:     defaultProxyListen,
			GatewayURL: defaultGatewayURL,
			Model:      defaultModel,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			FunctionTarget: defaultClientFunctionTarget,
			APITarget:      defaultClientAPITarget,
		},
		EventStream: EventStreamConfig{
			KafkaTopic: defaultKafkaTopic,
		},
	}
}
