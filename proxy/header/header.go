// Package header provides header policy for the ai-search function.
//
// The function sits between a browser client and the chat-completions gateway:
//
//	Client <--> ai-search <--> Gateway
//
// and headers are handled accordingly as each leg negotiates compression, hops,
// encoding, etc. independently.
package header

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// AllowOrigin is sent on every response, preflight included.
	AllowOrigin = "*"

	// AllowHeaders lists the request headers browsers may send.
	AllowHeaders = "authorization, x-client-info, apikey, content-type"

	// EventStream is the content type of a successful search response.
	EventStream = "text/event-stream"
)

// Handler manages headers between the client and gateway connections.
type Handler struct{}

// NewHandler creates a new header Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// skipResponse is the set of gateway response headers (client <-- ai-search <-- gateway)
// that are not copied back to the downstream client.
var skipResponse = map[string]struct{}{
	// Hop-by-hop headers: only meaningful for a single transport-level connection.
	"Connection":        {},
	"Keep-Alive":        {},
	"Transfer-Encoding": {},

	// The body is read decompressed; Fiber's compress middleware sets its own.
	"Content-Encoding": {},
	"Content-Length":   {},

	// Gateway session state is not the client's.
	"Set-Cookie": {},

	// CORS is owned by this service.
	"Access-Control-Allow-Origin":  {},
	"Access-Control-Allow-Headers": {},
	"Access-Control-Allow-Methods": {},
}

// SetCORSHeaders sets the CORS headers sent with every response.
func (h *Handler) SetCORSHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, AllowOrigin)
	c.Set(fiber.HeaderAccessControlAllowHeaders, AllowHeaders)
}

// SetGatewayRequestHeaders sets the headers of the outgoing chat-completions
// request. The client's own headers are never forwarded: the gateway key is
// the only credential.
func (h *Handler) SetGatewayRequestHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", EventStream)
}

// SetClientResponseHeaders copies gateway response headers to the Fiber
// context, filtering headers that should not reach the client, then sets the
// CORS and event-stream headers.
func (h *Handler) SetClientResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for k, v := range resp.Header {
		if _, skip := skipResponse[http.CanonicalHeaderKey(k)]; !skip {
			c.Set(k, strings.Join(v, ", "))
		}
	}
	h.SetCORSHeaders(c)
	c.Set(fiber.HeaderContentType, EventStream)
	c.Set(fiber.HeaderCacheControl, "no-cache")
}
