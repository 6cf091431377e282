package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/novostroy/pkg/llm"
	"github.com/papercomputeco/novostroy/pkg/logger"
	"github.com/papercomputeco/novostroy/pkg/storage"
	"github.com/papercomputeco/novostroy/pkg/storage/inmemory"
	"github.com/papercomputeco/novostroy/pkg/storage/storagetest"
)

func decodeJSON(resp *http.Response, v any) {
	defer resp.Body.Close()
	Expect(json.NewDecoder(resp.Body).Decode(v)).To(Succeed())
}

var _ = Describe("API Server", func() {
	var (
		server *Server
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		_, err := storage.Seed(ctx, driver, storagetest.Fixtures())
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{ListenAddr: ":0"}, driver, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = server.Shutdown()
	})

	do := func(req *http.Request) *http.Response {
		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	It("requires a driver", func() {
		_, err := NewServer(Config{}, nil, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("storage driver is required")))
	})

	It("answers ping", func() {
		resp := do(httptest.NewRequest(http.MethodGet, "/ping", nil))
		var body string
		decodeJSON(resp, &body)
		Expect(body).To(Equal("pong"))
	})

	Describe("GET /complexes", func() {
		It("lists all complexes by rating", func() {
			resp := do(httptest.NewRequest(http.MethodGet, "/complexes", nil))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body ComplexesResponse
			decodeJSON(resp, &body)
			Expect(body.Complexes).To(HaveLen(4))
			Expect(body.Complexes[0].ID).To(Equal("11"))
			Expect(body.Complexes[0].Developer).NotTo(BeNil())
		})

		It("filters by city", func() {
			resp := do(httptest.NewRequest(http.MethodGet, "/complexes?city_id=spb", nil))

			var body ComplexesResponse
			decodeJSON(resp, &body)
			Expect(body.Complexes).To(HaveLen(1))
			Expect(body.Complexes[0].ID).To(Equal("7"))
		})

		It("sends CORS headers", func() {
			req := httptest.NewRequest(http.MethodGet, "/complexes", nil)
			req.Header.Set("Origin", "https://example.com")
			resp := do(req)
			resp.Body.Close()
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})

	Describe("GET /complexes/:id", func() {
		It("returns the complex with apartments and reviews", func() {
			resp := do(httptest.NewRequest(http.MethodGet, "/complexes/11", nil))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body ComplexDetail
			decodeJSON(resp, &body)
			Expect(body.ID).To(Equal("11"))
			Expect(body.Name).To(Equal("ЖК Сосны"))
			Expect(body.Apartments).To(HaveLen(2))
			Expect(body.Apartments[0].ID).To(Equal("a-1"))
			Expect(body.Reviews).To(HaveLen(2))
			Expect(body.Reviews[0].ID).To(Equal("r-2"))
		})

		It("returns empty lists for a complex without apartments", func() {
			resp := do(httptest.NewRequest(http.MethodGet, "/complexes/7", nil))
			defer resp.Body.Close()

			raw, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`"apartments":[]`))
			Expect(string(raw)).To(ContainSubstring(`"reviews":[]`))
		})

		It("returns 404 for an unknown complex", func() {
			resp := do(httptest.NewRequest(http.MethodGet, "/complexes/missing", nil))
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

			var body llm.ErrorResponse
			decodeJSON(resp, &body)
			Expect(body.Error).To(Equal("complex not found"))
		})
	})

	Describe("POST /complexes/resolve", func() {
		resolve := func(body string) *http.Response {
			req := httptest.NewRequest(http.MethodPost, "/complexes/resolve", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			return do(req)
		}

		It("resolves ids in request order", func() {
			resp := resolve(`{"ids":["42","missing","11","42"]}`)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body ComplexesResponse
			decodeJSON(resp, &body)
			Expect(body.Complexes).To(HaveLen(2))
			Expect(body.Complexes[0].ID).To(Equal("42"))
			Expect(body.Complexes[1].ID).To(Equal("11"))
		})

		It("returns an empty list for no ids", func() {
			resp := resolve(`{"ids":[]}`)

			var body ComplexesResponse
			decodeJSON(resp, &body)
			Expect(body.Complexes).To(BeEmpty())
		})

		It("rejects a malformed body", func() {
			resp := resolve(`{"ids":`)
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects too many ids", func() {
			ids := make([]string, maxResolveIDs+1)
			for i := range ids {
				ids[i] = "x"
			}
			raw, err := json.Marshal(ResolveRequest{IDs: ids})
			Expect(err).NotTo(HaveOccurred())

			resp := resolve(string(raw))
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /searches", func() {
		BeforeEach(func() {
			base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			for i, q := range []string{"первый", "второй", "третий"} {
				Expect(driver.RecordSearch(ctx, storage.SearchRecord{
					ID:         q,
					Query:      q,
					ComplexIDs: []string{"11"},
					CreatedAt:  base.Add(time.Duration(i) * time.Minute),
				})).To(Succeed())
			}
		})

		It("returns searches newest first", func() {
			resp := do(httptest.NewRequest(http.MethodGet, "/searches", nil))

			var body SearchesResponse
			decodeJSON(resp, &body)
			Expect(body.Count).To(Equal(3))
			Expect(body.Searches[0].Query).To(Equal("третий"))
		})

		It("honors the limit", func() {
			resp := do(httptest.NewRequest(http.MethodGet, "/searches?limit=2", nil))

			var body SearchesResponse
			decodeJSON(resp, &body)
			Expect(body.Count).To(Equal(2))
		})

		It("rejects an invalid limit", func() {
			resp := do(httptest.NewRequest(http.MethodGet, "/searches?limit=abc", nil))
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("/mcp", func() {
		It("is mounted", func() {
			req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json, text/event-stream")
			resp := do(req)
			resp.Body.Close()
			Expect(resp.StatusCode).NotTo(Equal(http.StatusNotFound))
		})

		It("is absent when disabled", func() {
			noMCP, err := NewServer(Config{NoMCP: true}, driver, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			defer noMCP.Shutdown()

			resp, err := noMCP.app.Test(httptest.NewRequest(http.MethodPost, "/mcp", nil), -1)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})
