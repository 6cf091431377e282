package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/papercomputeco/novostroy/pkg/chatstream"
)

// Greeting opens every conversation.
const Greeting = "Привет! 👋 Я помогу найти идеальную квартиру. Расскажите, что вы ищете? " +
	"Например: «квартира до 8 млн с хорошей инфраструктурой» или «двушка в тихом районе»."

// Apology replaces the assistant's answer when a turn fails.
const Apology = "Извините, произошла ошибка. Попробуйте ещё раз."

// Suggestions are example queries offered before the first turn.
var Suggestions = []string{
	"Квартира до 10 млн с отделкой",
	"Двушка рядом с метро",
	"Новый ЖК от надёжного застройщика",
	"Семейная квартира с детской площадкой",
}

// ErrTurnInProgress is returned by Send while another turn is streaming.
var ErrTurnInProgress = errors.New("a search is already in progress")

// Searcher opens an ai-search stream. *Client implements it.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (io.ReadCloser, error)
}

// Session is one conversation with the search assistant. It owns the message
// log and runs one turn at a time.
type Session struct {
	searcher Searcher
	cityID   string
	logger   *slog.Logger
	opts     []chatstream.Option

	mu      sync.Mutex
	log     []chatstream.Message
	running bool
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// CityID scopes searches to one city. Optional.
	CityID string

	Logger *slog.Logger

	// AssemblerOptions are applied to the assembler of every turn.
	AssemblerOptions []chatstream.Option

	// History resumes an earlier conversation. When empty the log starts
	// with Greeting.
	History []chatstream.Message
}

// NewSession starts a conversation whose log holds the greeting, or the
// given history.
func NewSession(searcher Searcher, cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := make([]chatstream.Option, 0, len(cfg.AssemblerOptions)+1)
	opts = append(opts, chatstream.WithLogger(logger))
	opts = append(opts, cfg.AssemblerOptions...)

	log := []chatstream.Message{{Role: chatstream.RoleAssistant, Content: Greeting}}
	if len(cfg.History) > 0 {
		log = make([]chatstream.Message, len(cfg.History))
		copy(log, cfg.History)
	}

	return &Session{
		searcher: searcher,
		cityID:   cfg.CityID,
		logger:   logger,
		opts:     opts,
		log:      log,
	}
}

// Messages returns a copy of the message log.
func (s *Session) Messages() []chatstream.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]chatstream.Message, len(s.log))
	copy(out, s.log)
	return out
}

// Send runs one turn: it appends the user query, streams the answer into a
// single assistant entry and calls onUpdate with the log after every
// fragment. On a transport error the turn's answer becomes Apology and the
// error is returned for the caller to surface.
func (s *Session) Send(ctx context.Context, query string, onUpdate func([]chatstream.Message)) (chatstream.Result, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return chatstream.Result{}, ErrTurnInProgress
	}
	s.running = true
	s.log = chatstream.AppendUser(s.log, query)
	turnStart := len(s.log)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	body, err := s.searcher.Search(ctx, SearchRequest{Query: query, CityID: s.cityID})
	if err != nil {
		s.fail(turnStart, err)
		return chatstream.Result{}, err
	}
	defer body.Close()

	asm := chatstream.NewAssembler(s.opts...)
	res, err := asm.Consume(ctx, body, func(u chatstream.Update) {
		s.mu.Lock()
		s.log = chatstream.Apply(s.log, u.Content)
		snapshot := s.log
		s.mu.Unlock()

		if onUpdate != nil {
			onUpdate(snapshot)
		}
	})
	if err != nil {
		s.fail(turnStart, err)
		return res, err
	}

	s.logger.Debug("search turn finished",
		"fragments", res.Stats.Fragments,
		"recovered", res.Stats.Recovered,
		"dropped", res.Stats.Dropped,
		"ids", res.IDs,
	)
	return res, nil
}

// fail replaces the turn's in-progress answer with Apology, or appends
// Apology when no answer was streamed yet.
func (s *Session) fail(turnStart int, err error) {
	s.logger.Debug("search turn failed", "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]chatstream.Message, turnStart, turnStart+1)
	copy(next, s.log[:turnStart])
	s.log = append(next, chatstream.Message{Role: chatstream.RoleAssistant, Content: Apology})
}
