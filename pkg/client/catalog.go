package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/papercomputeco/novostroy/pkg/catalog"
	"github.com/papercomputeco/novostroy/pkg/storage"
)

// ResolveRequest asks the catalog API for the complexes behind a list of
// recommended identifiers.
type ResolveRequest struct {
	IDs []string `json:"ids"`
}

// ComplexesResponse is the catalog API's list envelope.
type ComplexesResponse struct {
	Complexes []catalog.Complex `json:"complexes"`
}

// SearchesResponse is the catalog API's search history envelope.
type SearchesResponse struct {
	Count    int                    `json:"count"`
	Searches []storage.SearchRecord `json:"searches"`
}

// ResolveComplexes returns the complexes for ids in the order given.
// Unknown identifiers are skipped by the API.
func (c *Client) ResolveComplexes(ctx context.Context, ids []string) ([]catalog.Complex, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(ResolveRequest{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.config.APITarget, "/") + "/complexes/resolve"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolving complexes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	var out ComplexesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding complexes: %w", err)
	}
	return out.Complexes, nil
}

// ListSearches returns up to limit recorded searches, newest first.
// A limit <= 0 leaves the bound to the API.
func (c *Client) ListSearches(ctx context.Context, limit int) ([]storage.SearchRecord, error) {
	endpoint := strings.TrimRight(c.config.APITarget, "/") + "/searches"
	if limit > 0 {
		endpoint += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	var out SearchesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding searches: %w", err)
	}
	return out.Searches, nil
}
