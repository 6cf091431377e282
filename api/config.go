// Package api provides the catalog HTTP API: residential complexes, their
// apartments and reviews, the search history, and an MCP endpoint over the
// same data.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8082")
	ListenAddr string

	// NoMCP disables the /mcp tools.
	NoMCP bool
}
