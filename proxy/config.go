package proxy

import (
	"time"

	"github.com/papercomputeco/novostroy/pkg/eventstream"
)

const (
	// DefaultModel is the chat model requested from the gateway.
	DefaultModel = "google/gemini-3-flash-preview"

	// DefaultGatewayURL is the chat-completions gateway base URL.
	DefaultGatewayURL = "https://ai.gateway.lovable.dev"
)

// Config is the ai-search server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// GatewayURL is the chat-completions gateway base URL; requests go to
	// <GatewayURL>/v1/chat/completions.
	GatewayURL string

	// GatewayAPIKey is the bearer key for the gateway. An empty key makes
	// every search fail with a configuration error.
	GatewayAPIKey string

	// Model is the gateway model name. Defaults to DefaultModel.
	Model string

	// RateLimit is the number of searches accepted per minute across all
	// clients. Zero disables the limit.
	RateLimit int

	// GatewayTimeout bounds one gateway request including its stream.
	// Defaults to 5 minutes.
	GatewayTimeout time.Duration

	// Publisher is an optional event publisher for completed searches.
	Publisher eventstream.Publisher

	// NumWorkers and QueueSize size the persistence worker pool.
	NumWorkers uint
	QueueSize  uint
}
