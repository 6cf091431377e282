// Package proxy provides the ai-search function: it turns a search request into
// a streamed chat completion grounded on the catalog and relays the gateway's
// event stream to the client unmodified.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/papercomputeco/novostroy/pkg/chatstream"
	"github.com/papercomputeco/novostroy/pkg/llm"
	"github.com/papercomputeco/novostroy/pkg/metrics"
	"github.com/papercomputeco/novostroy/pkg/storage"
	"github.com/papercomputeco/novostroy/proxy/header"
	"github.com/papercomputeco/novostroy/proxy/worker"
)

// SearchPath is the route of the ai-search function.
const SearchPath = "/functions/v1/ai-search"

const completionsPath = "/v1/chat/completions"

// Error messages returned to the client as {"error": ...}.
const (
	PaymentRequiredMessage = "Требуется пополнение баланса AI."
	GatewayErrorMessage    = "Ошибка AI сервиса"
	CatalogErrorMessage    = "Failed to fetch complexes"
	MissingKeyMessage      = "gateway API key is not configured"
)

// Proxy is the ai-search server. Every accepted search is forwarded to the
// gateway; the streamed answer is relayed to the client while being assembled
// on the side, and the finished turn is enqueued for async persistence.
type Proxy struct {
	config        Config
	driver        storage.Driver
	workerPool    *worker.Pool
	logger        *slog.Logger
	httpClient    *http.Client
	server        *fiber.App
	headerHandler *header.Handler
	limiter       *rate.Limiter
}

// New creates a new Proxy.
// The driver supplies the catalog and receives search records.
func New(config Config, driver storage.Driver, logger *slog.Logger) (*Proxy, error) {
	if driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.GatewayURL == "" {
		config.GatewayURL = DefaultGatewayURL
	}
	config.GatewayURL = strings.TrimRight(config.GatewayURL, "/")
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.GatewayTimeout <= 0 {
		config.GatewayTimeout = 5 * time.Minute
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		StreamRequestBody:     true,
	})

	// The search stream is relayed byte for byte, so only other routes are compressed.
	app.Use(compress.New(compress.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == SearchPath
		},
	}))

	wp, err := worker.NewPool(&worker.Config{
		Driver:     driver,
		Publisher:  config.Publisher,
		NumWorkers: config.NumWorkers,
		QueueSize:  config.QueueSize,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	p := &Proxy{
		config:        config,
		driver:        driver,
		workerPool:    wp,
		logger:        logger,
		server:        app,
		headerHandler: header.NewHandler(),
		limiter:       newLimiter(config.RateLimit),
		httpClient: &http.Client{
			Timeout: config.GatewayTimeout,
		},
	}

	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Options(SearchPath, p.handlePreflight)
	app.Post(SearchPath, p.rateLimit, p.handleSearch)

	return p, nil
}

// Run starts the server on the configured listening address
func (p *Proxy) Run() error {
	p.logger.Info("starting ai-search server",
		"listen", p.config.ListenAddr,
		"gateway", p.config.GatewayURL,
		"model", p.config.Model,
	)

	return p.server.Listen(p.config.ListenAddr)
}

// RunWithListener starts the server using the provided listener.
func (p *Proxy) RunWithListener(listener net.Listener) error {
	p.logger.Info("starting ai-search server",
		"listen", listener.Addr().String(),
		"gateway", p.config.GatewayURL,
		"model", p.config.Model,
	)

	return p.server.Listener(listener)
}

// Close gracefully shuts down the server and waits for the worker pool to drain
func (p *Proxy) Close() error {
	err := p.server.Shutdown()
	p.workerPool.Close()
	return err
}

func (p *Proxy) handlePreflight(c *fiber.Ctx) error {
	p.headerHandler.SetCORSHeaders(c)
	return c.SendStatus(fiber.StatusOK)
}

func (p *Proxy) fail(c *fiber.Ctx, status int, outcome, message string) error {
	metrics.ObserveOutcome(outcome)
	p.headerHandler.SetCORSHeaders(c)
	return c.Status(status).JSON(llm.ErrorResponse{Error: message})
}

// handleSearch validates the request, builds the grounded prompt and forwards
// it to the gateway.
func (p *Proxy) handleSearch(c *fiber.Ctx) error {
	startTime := time.Now()

	var req SearchRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		p.logger.Warn("failed to parse search request", "error", err)
		return p.fail(c, fiber.StatusBadRequest, metrics.OutcomeUpstream, "invalid request body")
	}

	if p.config.GatewayAPIKey == "" {
		p.logger.Error("gateway API key is not configured")
		return p.fail(c, fiber.StatusInternalServerError, metrics.OutcomeUpstream, MissingKeyMessage)
	}

	complexes, err := p.driver.ListComplexes(c.UserContext(), storage.ComplexFilter{CityID: req.CityID})
	if err != nil {
		p.logger.Error("failed to fetch complexes", "city_id", req.CityID, "error", err)
		return p.fail(c, fiber.StatusInternalServerError, metrics.OutcomeCatalog, CatalogErrorMessage)
	}

	chatReq, err := BuildChatRequest(p.config.Model, complexes, req)
	if err != nil {
		p.logger.Error("failed to build chat request", "error", err)
		return p.fail(c, fiber.StatusInternalServerError, metrics.OutcomeUpstream, "internal error")
	}

	p.logger.Debug("forwarding search to gateway",
		"city_id", req.CityID,
		"complexes", len(complexes),
		"has_preferences", req.Preferences != nil,
	)

	return p.handleStreamingProxy(c, req, chatReq, startTime)
}

// handleStreamingProxy sends the chat request and relays the streamed answer.
func (p *Proxy) handleStreamingProxy(c *fiber.Ctx, req SearchRequest, chatReq *llm.ChatRequest, startTime time.Time) error {
	body, err := json.Marshal(chatReq)
	if err != nil {
		p.logger.Error("failed to encode chat request", "error", err)
		return p.fail(c, fiber.StatusInternalServerError, metrics.OutcomeUpstream, "internal error")
	}

	// Use context.Background() instead of c.Context() because fasthttp recycles
	// its RequestCtx after the handler returns, but the streaming callback runs
	// asynchronously in a separate goroutine and needs the gateway connection
	// to remain open.
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, p.config.GatewayURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		p.logger.Error("failed to create gateway request", "error", err)
		return p.fail(c, fiber.StatusInternalServerError, metrics.OutcomeUpstream, "internal error")
	}
	p.headerHandler.SetGatewayRequestHeaders(httpReq, p.config.GatewayAPIKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.logger.Error("gateway request failed", "error", err)
		return p.fail(c, fiber.StatusBadGateway, metrics.OutcomeUpstream, "upstream request failed")
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 64*1024))
		httpResp.Body.Close()
		return p.gatewayError(c, httpResp.StatusCode, respBody)
	}

	p.headerHandler.SetClientResponseHeaders(c, httpResp)

	// Use io.Pipe + SetBodyStream instead of SetBodyStreamWriter.
	// SetBodyStreamWriter uses an internal PipeConns with a buffered channel
	// (capacity 4) and two bufio.Writers, which means Flush() in the callback
	// only pushes data into the pipe, not to the TCP socket.
	//
	// With io.Pipe, pw.Write blocks until the reader consumes the data, and
	// the reader is fasthttp's writeBodyChunked which flushes to TCP after
	// every chunk.
	pr, pw := io.Pipe()
	go p.relay(httpResp, pw, req, startTime)

	// Unknown size (-1) triggers chunked transfer encoding in fasthttp.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// gatewayError maps a failed gateway status to the client response.
func (p *Proxy) gatewayError(c *fiber.Ctx, status int, body []byte) error {
	switch status {
	case http.StatusTooManyRequests:
		p.logger.Warn("gateway rate limited the search")
		return p.fail(c, fiber.StatusTooManyRequests, metrics.OutcomeRateLimited, RateLimitedMessage)
	case http.StatusPaymentRequired:
		p.logger.Warn("gateway requires payment")
		return p.fail(c, fiber.StatusPaymentRequired, metrics.OutcomeUpstream, PaymentRequiredMessage)
	default:
		p.logger.Error("gateway returned error",
			"status", status,
			"body", string(body),
		)
		return p.fail(c, fiber.StatusInternalServerError, metrics.OutcomeUpstream, GatewayErrorMessage)
	}
}

// relay copies the gateway body to the pipe verbatim while assembling the
// answer from the same bytes. Bytes after the done sentinel are relayed too.
func (p *Proxy) relay(httpResp *http.Response, pw *io.PipeWriter, req SearchRequest, startTime time.Time) {
	defer httpResp.Body.Close()

	asm := chatstream.NewAssembler(chatstream.WithLogger(p.logger))
	src := io.TeeReader(httpResp.Body, pw)

	result, err := asm.Consume(context.Background(), src, nil)
	if err == nil {
		_, err = io.Copy(pw, httpResp.Body)
	}

	elapsed := time.Since(startTime)
	if err != nil {
		p.logger.Error("error relaying gateway stream", "error", err)
		metrics.ObserveSearch(metrics.OutcomeAborted, elapsed, result)
		pw.CloseWithError(err)
		return
	}
	// The pipe is closed only after the job is queued, so a graceful
	// shutdown cannot close the pool first.
	defer pw.Close()

	metrics.ObserveSearch(metrics.OutcomeOK, elapsed, result)
	p.logger.Debug("streaming complete",
		"content_preview", result.Display,
		"fragments", result.Stats.Fragments,
		"recovered", result.Stats.Recovered,
		"dropped", result.Stats.Dropped,
		"complex_ids", result.IDs,
		"duration", elapsed,
	)

	p.workerPool.Enqueue(worker.Job{
		Query:       req.Query,
		CityID:      req.CityID,
		Model:       p.config.Model,
		Result:      result,
		StartedAt:   startTime,
		CompletedAt: startTime.Add(elapsed),
	})
}
