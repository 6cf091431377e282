// Package client talks to the ai-search function and the catalog API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/novostroy/pkg/llm"
)

// SearchPath is the route of the ai-search function relative to its host.
const SearchPath = "/functions/v1/ai-search"

// GenericErrorMessage is surfaced when a failed response carries no error
// string of its own.
const GenericErrorMessage = "Ошибка AI"

var (
	// ErrRateLimited matches an *APIError with status 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrPaymentRequired matches an *APIError with status 402.
	ErrPaymentRequired = errors.New("payment required")

	// ErrNoBody is returned when a successful response has no body to stream.
	ErrNoBody = errors.New("response has no body")
)

// APIError is a non-2xx answer from the function or the catalog API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is reports whether the error matches one of the status sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrPaymentRequired:
		return e.Status == http.StatusPaymentRequired
	}
	return false
}

// SearchRequest is the body of an ai-search call.
type SearchRequest struct {
	Query  string `json:"query"`
	CityID string `json:"cityId,omitempty"`
}

// Config is the client configuration.
type Config struct {
	// FunctionTarget is the base URL of the host serving the ai-search
	// function, e.g. "http://localhost:8080".
	FunctionTarget string

	// APITarget is the base URL of the catalog API.
	APITarget string

	// Token is sent as a bearer credential. Optional.
	Token string

	// HTTPClient overrides the default client. Streams can be slow, so the
	// default has no overall timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client calls the ai-search function and the catalog API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a Client for cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 2 * time.Minute,
			},
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Search posts a query to the ai-search function and returns the SSE response
// body. The caller must close it. Non-2xx answers are returned as *APIError.
func (c *Client) Search(ctx context.Context, req SearchRequest) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.config.FunctionTarget, "/") + SearchPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	c.authorize(httpReq)

	c.logger.Debug("sending search request",
		"url", url,
		"city_id", req.CityID,
		"query_length", len(req.Query),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending search request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ErrNoBody
	}

	return resp.Body, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
}

// readAPIError builds an *APIError from a failed response. The message is
// the "error" field of a JSON body when there is one.
func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: GenericErrorMessage}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}

	var body llm.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}
