package client_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/novostroy/pkg/chatstream"
	"github.com/papercomputeco/novostroy/pkg/client"
)

// fakeSearcher answers every search with a canned body or error.
type fakeSearcher struct {
	body    string
	bodyErr error
	err     error

	requests []client.SearchRequest
	block    chan struct{}
}

func (f *fakeSearcher) Search(_ context.Context, req client.SearchRequest) (io.ReadCloser, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}

	var r io.Reader = strings.NewReader(f.body)
	if f.bodyErr != nil {
		r = io.MultiReader(r, iotest.ErrReader(f.bodyErr))
	}
	if f.block != nil {
		r = io.MultiReader(r, blockingReader{f.block})
	}
	return io.NopCloser(r), nil
}

type blockingReader struct {
	release chan struct{}
}

func (b blockingReader) Read([]byte) (int, error) {
	<-b.release
	return 0, io.EOF
}

const answer = `data: {"choices":[{"delta":{"content":"Нашла для вас "}}]}` + "\n" +
	`data: {"choices":[{"delta":{"content":"2 варианта. [IDS: 11, 42]"}}]}` + "\n" +
	"data: [DONE]\n"

var _ = Describe("Session", func() {
	It("starts with the greeting", func() {
		s := client.NewSession(&fakeSearcher{}, client.SessionConfig{})

		Expect(s.Messages()).To(Equal([]chatstream.Message{
			{Role: chatstream.RoleAssistant, Content: client.Greeting},
		}))
	})

	It("resumes from a history instead of the greeting", func() {
		history := []chatstream.Message{
			{Role: chatstream.RoleAssistant, Content: client.Greeting},
			{Role: chatstream.RoleUser, Content: "трёшка"},
			{Role: chatstream.RoleAssistant, Content: "Вот что нашлось."},
		}
		s := client.NewSession(&fakeSearcher{body: answer}, client.SessionConfig{History: history})
		Expect(s.Messages()).To(Equal(history))

		_, err := s.Send(context.Background(), "а подешевле?", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Messages()).To(HaveLen(5))
		Expect(history).To(HaveLen(3))
	})

	It("streams one assistant entry per turn", func() {
		searcher := &fakeSearcher{body: answer}
		s := client.NewSession(searcher, client.SessionConfig{CityID: "msk"})

		var snapshots [][]chatstream.Message
		res, err := s.Send(context.Background(), "двушка у метро", func(log []chatstream.Message) {
			snapshots = append(snapshots, log)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.IDs).To(Equal([]string{"11", "42"}))

		Expect(snapshots).To(HaveLen(2))
		Expect(snapshots[0][2].Content).To(Equal("Нашла для вас"))
		Expect(snapshots[1]).To(HaveLen(3))

		Expect(s.Messages()).To(Equal([]chatstream.Message{
			{Role: chatstream.RoleAssistant, Content: client.Greeting},
			{Role: chatstream.RoleUser, Content: "двушка у метро"},
			{Role: chatstream.RoleAssistant, Content: "Нашла для вас 2 варианта."},
		}))
		Expect(searcher.requests).To(Equal([]client.SearchRequest{{Query: "двушка у метро", CityID: "msk"}}))
	})

	It("appends the apology when the request fails", func() {
		apiErr := &client.APIError{Status: 429, Message: "Слишком много запросов. Попробуйте позже."}
		s := client.NewSession(&fakeSearcher{err: apiErr}, client.SessionConfig{})

		_, err := s.Send(context.Background(), "q", nil)
		Expect(errors.Is(err, client.ErrRateLimited)).To(BeTrue())

		log := s.Messages()
		Expect(log).To(HaveLen(3))
		Expect(log[2]).To(Equal(chatstream.Message{Role: chatstream.RoleAssistant, Content: client.Apology}))
	})

	It("replaces a partial answer with the apology when the stream breaks", func() {
		boom := errors.New("connection reset")
		body := `data: {"choices":[{"delta":{"content":"Начало"}}]}` + "\n\n"
		s := client.NewSession(&fakeSearcher{body: body, bodyErr: boom}, client.SessionConfig{})

		_, err := s.Send(context.Background(), "q", nil)
		Expect(err).To(MatchError(boom))

		log := s.Messages()
		Expect(log).To(HaveLen(3))
		Expect(log[2].Content).To(Equal(client.Apology))
	})

	It("keeps earlier turns when a later turn fails", func() {
		searcher := &fakeSearcher{body: answer}
		s := client.NewSession(searcher, client.SessionConfig{})

		_, err := s.Send(context.Background(), "first", nil)
		Expect(err).NotTo(HaveOccurred())

		searcher.err = errors.New("offline")
		_, err = s.Send(context.Background(), "second", nil)
		Expect(err).To(HaveOccurred())

		log := s.Messages()
		Expect(log).To(HaveLen(5))
		Expect(log[2].Content).To(Equal("Нашла для вас 2 варианта."))
		Expect(log[3]).To(Equal(chatstream.Message{Role: chatstream.RoleUser, Content: "second"}))
		Expect(log[4].Content).To(Equal(client.Apology))
	})

	It("runs one turn at a time", func() {
		release := make(chan struct{})
		s := client.NewSession(&fakeSearcher{block: release}, client.SessionConfig{})

		done := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			_, err := s.Send(context.Background(), "slow", nil)
			done <- err
		}()

		Eventually(func() int { return len(s.Messages()) }).Should(Equal(2))

		_, err := s.Send(context.Background(), "second", nil)
		Expect(err).To(MatchError(client.ErrTurnInProgress))

		close(release)
		Eventually(done).Should(Receive(BeNil()))
	})
})
