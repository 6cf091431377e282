package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/novostroy/pkg/client"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		received *http.Request
		bodySent map[string]any
		c        *client.Client
	)

	BeforeEach(func() {
		handler = nil
		received = nil
		bodySent = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received = r
			if r.Body != nil {
				_ = json.NewDecoder(r.Body).Decode(&bodySent)
			}
			handler(w, r)
		}))

		c = client.New(client.Config{
			FunctionTarget: server.URL,
			APITarget:      server.URL,
			Token:          "anon-key",
		})
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Search", func() {
		It("posts the query and returns the event stream", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = io.WriteString(w, "data: [DONE]\n\n")
			}

			body, err := c.Search(context.Background(), client.SearchRequest{Query: "двушка", CityID: "msk"})
			Expect(err).NotTo(HaveOccurred())
			defer body.Close()

			data, err := io.ReadAll(body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("data: [DONE]\n\n"))

			Expect(received.Method).To(Equal(http.MethodPost))
			Expect(received.URL.Path).To(Equal(client.SearchPath))
			Expect(received.Header.Get("Authorization")).To(Equal("Bearer anon-key"))
			Expect(received.Header.Get("Content-Type")).To(Equal("application/json"))
			Expect(bodySent).To(Equal(map[string]any{"query": "двушка", "cityId": "msk"}))
		})

		It("omits an empty city", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "data: [DONE]\n\n")
			}

			body, err := c.Search(context.Background(), client.SearchRequest{Query: "q"})
			Expect(err).NotTo(HaveOccurred())
			body.Close()

			Expect(bodySent).NotTo(HaveKey("cityId"))
		})

		DescribeTable("maps failed responses to APIError",
			func(status int, body, message string, sentinel error) {
				handler = func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(status)
					_, _ = io.WriteString(w, body)
				}

				_, err := c.Search(context.Background(), client.SearchRequest{Query: "q"})

				var apiErr *client.APIError
				Expect(errors.As(err, &apiErr)).To(BeTrue())
				Expect(apiErr.Status).To(Equal(status))
				Expect(apiErr.Message).To(Equal(message))
				if sentinel != nil {
					Expect(errors.Is(err, sentinel)).To(BeTrue())
				} else {
					Expect(errors.Is(err, client.ErrRateLimited)).To(BeFalse())
					Expect(errors.Is(err, client.ErrPaymentRequired)).To(BeFalse())
				}
			},
			Entry("rate limited", 429, `{"error":"Слишком много запросов. Попробуйте позже."}`,
				"Слишком много запросов. Попробуйте позже.", client.ErrRateLimited),
			Entry("payment required", 402, `{"error":"Требуется пополнение баланса AI."}`,
				"Требуется пополнение баланса AI.", client.ErrPaymentRequired),
			Entry("server error with message", 500, `{"error":"Ошибка AI сервиса"}`, "Ошибка AI сервиса", nil),
			Entry("empty error field", 500, `{"error":""}`, client.GenericErrorMessage, nil),
			Entry("non-JSON body", 502, `<html>bad gateway</html>`, client.GenericErrorMessage, nil),
			Entry("no body", 503, ``, client.GenericErrorMessage, nil),
		)

		It("reports a successful response without a body", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}

			_, err := c.Search(context.Background(), client.SearchRequest{Query: "q"})
			Expect(err).To(MatchError(client.ErrNoBody))
		})

		It("returns transport errors", func() {
			server.Close()

			_, err := c.Search(context.Background(), client.SearchRequest{Query: "q"})
			Expect(err).To(HaveOccurred())

			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeFalse())
		})
	})

	Describe("ResolveComplexes", func() {
		It("posts the identifiers and decodes complexes", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"complexes":[{"id":"42","name":"ЖК Речной","slug":"rechnoy"},{"id":"11","name":"ЖК Сосны","slug":"sosny"}]}`)
			}

			complexes, err := c.ResolveComplexes(context.Background(), []string{"42", "11"})
			Expect(err).NotTo(HaveOccurred())
			Expect(complexes).To(HaveLen(2))
			Expect(complexes[0].Name).To(Equal("ЖК Речной"))

			Expect(received.URL.Path).To(Equal("/complexes/resolve"))
			Expect(bodySent).To(Equal(map[string]any{"ids": []any{"42", "11"}}))
		})

		It("does not call the API without identifiers", func() {
			complexes, err := c.ResolveComplexes(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(complexes).To(BeNil())
			Expect(received).To(BeNil())
		})

		It("returns API errors", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"error":"Failed to fetch complexes"}`)
			}

			_, err := c.ResolveComplexes(context.Background(), []string{"1"})
			Expect(err).To(MatchError("Failed to fetch complexes"))
		})
	})

	Describe("ListSearches", func() {
		It("passes the limit and decodes records", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"count":1,"searches":[{"id":"s1","query":"двушка","display":"Нашла.","complex_ids":["42"]}]}`)
			}

			searches, err := c.ListSearches(context.Background(), 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(searches).To(HaveLen(1))
			Expect(searches[0].Query).To(Equal("двушка"))
			Expect(searches[0].ComplexIDs).To(Equal([]string{"42"}))

			Expect(received.URL.Path).To(Equal("/searches"))
			Expect(received.URL.Query().Get("limit")).To(Equal("5"))
		})
	})
})
