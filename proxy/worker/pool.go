// Package worker provides an asynchronous worker pool that records completed
// search turns in the provided storage.Driver and publishes them to the
// configured eventstream.Publisher.
//
// The pool decouples persistence from the ai-search hot path so that relaying
// the gateway stream to the client never waits on storage.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/novostroy/pkg/chatstream"
	"github.com/papercomputeco/novostroy/pkg/eventstream"
	"github.com/papercomputeco/novostroy/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is one completed search turn.
type Job struct {
	Query  string
	CityID string
	Model  string

	// Result is the answer reconstructed from the relayed stream.
	Result chatstream.Result

	StartedAt   time.Time
	CompletedAt time.Time
}

// Duration is the time between the request and the end of the stream.
func (j Job) Duration() time.Duration {
	return j.CompletedAt.Sub(j.StartedAt)
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for search records.
	Driver storage.Driver

	// Publisher is the optional event publisher. Nil disables events.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger
}

// Pool processes search jobs asynchronously.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("job not queued, pool closed", "city_id", job.CityID)
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"city_id", job.CityID,
			"model", job.Model,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"city_id", job.CityID,
			"model", job.Model,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob records the search and publishes its event. A failed record
// does not prevent the event.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	record := NewRecord(job)
	if err := p.config.Driver.RecordSearch(ctx, record); err != nil {
		p.logger.Error("recording search failed",
			"search_id", record.ID,
			"error", err,
		)
	} else {
		p.logger.Info("search recorded",
			"search_id", record.ID,
			"complexes", len(record.ComplexIDs),
			"duration", record.Duration,
		)
	}

	if p.config.Publisher == nil {
		return
	}

	event := NewEvent(job)
	if err := p.config.Publisher.PublishSearch(ctx, event); err != nil {
		p.logger.Warn("publishing search event failed",
			"event_id", event.EventID,
			"error", err,
		)
	}
}

// NewRecord converts a job into a storage record.
func NewRecord(job Job) storage.SearchRecord {
	ids := job.Result.IDs
	if ids == nil {
		ids = []string{}
	}

	return storage.SearchRecord{
		ID:         uuid.NewString(),
		Query:      job.Query,
		CityID:     job.CityID,
		Content:    job.Result.Content,
		Display:    job.Result.Display,
		ComplexIDs: ids,
		Fragments:  job.Result.Stats.Fragments,
		Recovered:  job.Result.Stats.Recovered,
		Dropped:    job.Result.Stats.Dropped,
		Duration:   job.Duration(),
		CreatedAt:  job.CompletedAt,
	}
}

// NewEvent converts a job into a search-completed event.
func NewEvent(job Job) *eventstream.SearchCompletedEvent {
	return eventstream.NewSearchCompletedEvent(
		eventstream.SearchMeta{
			Query:          job.Query,
			CityID:         job.CityID,
			ComplexIDs:     job.Result.IDs,
			DisplayPreview: job.Result.Display,
			Model:          job.Model,
		},
		eventstream.SearchRequestMeta{
			StartedAt:   job.StartedAt,
			CompletedAt: job.CompletedAt,
			DurationMs:  job.Duration().Milliseconds(),
			Streaming:   true,
			SentinelHit: job.Result.Done,
			Recovered:   job.Result.Stats.Recovered,
			Dropped:     job.Result.Stats.Dropped,
		},
	)
}
