package chatstream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/papercomputeco/novostroy/pkg/marker"
	"github.com/papercomputeco/novostroy/pkg/sse"
)

const readChunkSize = 16 * 1024

// Update is emitted for every non-empty content fragment.
type Update struct {
	// Fragment is the content carried by one data payload.
	Fragment string

	// Content is the cumulative assistant content of the turn so far,
	// markers included.
	Content string
}

// Stats counts what happened while assembling one turn.
type Stats struct {
	Lines     int
	Fragments int

	// Retries is the number of payloads pushed back after a parse failure.
	Retries int

	// Recovered is the number of pushed-back payloads that parsed once
	// joined with their continuation.
	Recovered int

	// Dropped is the number of pushed-back payloads that were abandoned.
	Dropped int
}

// Result is the final state of an assembled turn.
type Result struct {
	// Content is the raw concatenation of all fragments.
	Content string

	// Display is Content with identifier markers removed.
	Display string

	// IDs are the recommended identifiers from the first marker in Content.
	IDs []string

	// Done reports whether the "[DONE]" sentinel was seen.
	Done bool

	Stats Stats
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithMaxPending bounds how large a pushed-back payload may grow while
// waiting for its continuation.
func WithMaxPending(n int) Option {
	return func(a *Assembler) {
		a.framer.SetMaxPending(n)
	}
}

// WithLogger sets the logger used for recovery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Assembler turns the chunks of one streamed turn into cumulative content.
// A new Assembler is created for every turn; it is not safe for concurrent
// use.
type Assembler struct {
	framer  *sse.Framer
	logger  *slog.Logger
	content strings.Builder

	done      bool
	finished  bool
	abandoned int
	stats     Stats
}

// NewAssembler returns an Assembler for a new turn.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		framer: sse.NewFramer(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Feed processes one chunk synchronously and returns an Update for every
// fragment it completed. Once the done sentinel has been seen, or after
// Finish, further chunks are ignored.
//
// A payload that fails to parse is pushed back into the framer and
// re-attempted joined with the following line. Lines already buffered are
// processed in the same call, so the result does not depend on where the
// stream was split into chunks.
func (a *Assembler) Feed(chunk []byte) []Update {
	if a.done || a.finished {
		return nil
	}
	a.framer.Push(chunk)

	var updates []Update
	for !a.done {
		line, ok := a.framer.Next()
		if !ok {
			break
		}
		a.stats.Lines++

		ev := sse.Classify(line)
		switch ev.Kind {
		case sse.KindDone:
			a.done = true

		case sse.KindData:
			fragment, err := ParseDelta(ev.Data)
			if err != nil {
				a.logger.Debug("holding malformed payload for its continuation",
					"error", err,
					"bytes", len(line),
				)
				a.framer.Unread(line)
				a.stats.Retries++
				continue
			}

			if a.framer.Merged() {
				a.stats.Recovered++
			}
			if fragment == "" {
				continue
			}

			a.content.WriteString(fragment)
			a.stats.Fragments++
			updates = append(updates, Update{
				Fragment: fragment,
				Content:  a.content.String(),
			})
		}
	}

	return updates
}

// Done reports whether the done sentinel has been seen.
func (a *Assembler) Done() bool {
	return a.done
}

// Content returns the cumulative content so far.
func (a *Assembler) Content() string {
	return a.content.String()
}

// Finish ends the turn. An unterminated remainder and a payload still waiting
// for its continuation are discarded.
func (a *Assembler) Finish() Result {
	if !a.finished {
		a.finished = true
		if a.framer.Holding() {
			a.abandoned++
			a.logger.Debug("discarding pushed-back payload at end of stream")
		}
		a.framer.Reset()
	}
	return a.Result()
}

// Result returns a snapshot of the turn.
func (a *Assembler) Result() Result {
	content := a.content.String()
	stats := a.stats
	stats.Dropped = a.framer.Dropped() + a.abandoned

	return Result{
		Content: content,
		Display: marker.Clean(content),
		IDs:     marker.ExtractIDs(content),
		Done:    a.done,
		Stats:   stats,
	}
}

// Consume reads r until the done sentinel, end of stream, or an error, and
// calls onUpdate for every fragment. The only blocking point is the read of
// the next chunk; a cancelled ctx abandons the turn.
//
// The returned error is nil when the stream ended normally, with or without
// the sentinel.
func (a *Assembler) Consume(ctx context.Context, r io.Reader, onUpdate func(Update)) (Result, error) {
	buf := make([]byte, readChunkSize)

	for !a.done {
		if err := ctx.Err(); err != nil {
			return a.Result(), err
		}

		n, err := r.Read(buf)
		if n > 0 {
			for _, u := range a.Feed(buf[:n]) {
				if onUpdate != nil {
					onUpdate(u)
				}
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return a.Result(), ctxErr
			}
			return a.Result(), err
		}
	}

	return a.Finish(), nil
}
