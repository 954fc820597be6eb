// Package logsink mirrors log events into Elasticsearch without ever
// blocking the code that produced them.
package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/ganiszulfa/okblog/search/cmd/internal/metrics"
)

// ErrSink wraps every failure to write an event.
var ErrSink = errors.New("log sink write failed")

const writeTimeout = 5 * time.Second

// Event is one mirrored log line.
type Event struct {
	Timestamp  time.Time              `json:"timestamp"`
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	Target     string                 `json:"target"`
	ModulePath string                 `json:"module_path,omitempty"`
	File       string                 `json:"file,omitempty"`
	Line       int                    `json:"line,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Sink receives log events. Emit must not block.
type Sink interface {
	Emit(Event)
}

// Nop discards every event. The server installs it when mirroring is
// disabled.
type Nop struct{}

func (Nop) Emit(Event) {}

// IndexName returns the date-suffixed index an event emitted at t goes to.
func IndexName(prefix string, t time.Time) string {
	return prefix + "-" + t.UTC().Format("2006-01-02")
}

// Elastic writes one document per event from a single background worker.
// Events that do not fit in the queue are dropped.
type Elastic struct {
	client   *elasticsearch.Client
	index    string
	fallback io.Writer
	metrics  *metrics.Metrics

	queue chan Event
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	noteMu sync.Mutex
}

// NewElastic starts the worker. Failures are reported to fallback only.
func NewElastic(client *elasticsearch.Client, index string, queueSize int, fallback io.Writer, m *metrics.Metrics) *Elastic {
	if queueSize <= 0 {
		queueSize = 1
	}

	s := &Elastic{
		client:   client,
		index:    index,
		fallback: fallback,
		metrics:  m,
		queue:    make(chan Event, queueSize),
		done:     make(chan struct{}),
	}
	go s.run()

	return s
}

// Emit queues e for writing, or drops it when the queue is full or the sink
// is closed.
func (s *Elastic) Emit(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	select {
	case s.queue <- e:
	default:
		s.metrics.LogEventsDropped.Inc()
		s.note("log sink queue full, dropping event: %s", e.Message)
	}
}

// Close stops accepting events and waits for queued ones to be written or
// for ctx to end.
func (s *Elastic) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Elastic) run() {
	defer close(s.done)

	for e := range s.queue {
		if err := s.write(e); err != nil {
			s.metrics.LogEventsFailed.Inc()
			s.note("Failed to send log to Elasticsearch: %v", err)
			continue
		}
		s.metrics.LogEventsShipped.Inc()
	}
}

func (s *Elastic) write(e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %w", ErrSink, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	req := esapi.IndexRequest{
		Index:      IndexName(s.index, e.Timestamp),
		DocumentID: uuid.NewString(),
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSink, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: index returned %s", ErrSink, res.Status())
	}

	return nil
}

func (s *Elastic) note(format string, args ...interface{}) {
	if s.fallback == nil {
		return
	}
	s.noteMu.Lock()
	defer s.noteMu.Unlock()
	_, _ = fmt.Fprintf(s.fallback, format+"\n", args...)
}
