package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ganiszulfa/okblog/search/cmd/internal/estest"
	"github.com/ganiszulfa/okblog/search/cmd/internal/metrics"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestIndexName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))
	assert.Equal(t, "okblog-search-logs-2024-03-09", IndexName("okblog-search-logs", ts))

	late := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, "logs-2024-03-10", IndexName("logs", late))
}

func TestElasticWritesDateSuffixedDocuments(t *testing.T) {
	server := estest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		estest.WriteJSON(w, http.StatusCreated, map[string]interface{}{"result": "created"})
	})
	m := metrics.NewNop()
	fallback := &syncBuffer{}
	sink := NewElastic(server.Client(t), "okblog-search-logs", 8, fallback, m)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sink.Emit(Event{Timestamp: ts, Level: "INFO", Message: "Search completed", Target: "search", File: "handler.go", Line: 42})

	require.NoError(t, sink.Close(context.Background()))

	writes := server.RequestsWithPrefix("/okblog-search-logs-2024-05-01/_doc/")
	require.Len(t, writes, 1)
	assert.Equal(t, http.MethodPut, writes[0].Method)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(writes[0].Body, &doc))
	assert.Equal(t, "INFO", doc["level"])
	assert.Equal(t, "Search completed", doc["message"])
	assert.Equal(t, "search", doc["target"])
	assert.Equal(t, "handler.go", doc["file"])
	assert.EqualValues(t, 42, doc["line"])
	assert.Equal(t, "2024-05-01T12:00:00Z", doc["timestamp"])
	assert.NotContains(t, doc, "module_path")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LogEventsShipped))
	assert.Empty(t, fallback.String())
}

func TestElasticFailuresGoToFallback(t *testing.T) {
	server := estest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	m := metrics.NewNop()
	fallback := &syncBuffer{}
	sink := NewElastic(server.Client(t), "logs", 8, fallback, m)

	sink.Emit(Event{Timestamp: time.Now(), Level: "ERROR", Message: "boom"})
	require.NoError(t, sink.Close(context.Background()))

	assert.Contains(t, fallback.String(), "Failed to send log to Elasticsearch")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LogEventsFailed))
}

func TestElasticDropsWhenQueueFull(t *testing.T) {
	release := make(chan struct{})
	server := estest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		estest.WriteJSON(w, http.StatusCreated, map[string]interface{}{"result": "created"})
	})
	m := metrics.NewNop()
	fallback := &syncBuffer{}
	sink := NewElastic(server.Client(t), "logs", 1, fallback, m)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			sink.Emit(Event{Timestamp: time.Now(), Level: "INFO", Message: "line"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked while the sink was stalled")
	}

	close(release)
	require.NoError(t, sink.Close(context.Background()))

	assert.GreaterOrEqual(t, testutil.ToFloat64(m.LogEventsDropped), 18.0)
	assert.Contains(t, fallback.String(), "log sink queue full")
}

func TestElasticIgnoresEventsAfterClose(t *testing.T) {
	server := estest.NewServer(t, nil)
	sink := NewElastic(server.Client(t), "logs", 4, nil, metrics.NewNop())

	require.NoError(t, sink.Close(context.Background()))
	require.NoError(t, sink.Close(context.Background()))

	sink.Emit(Event{Message: "late"})
	assert.Empty(t, server.RequestsWithPrefix("/logs-"))
}

func TestCoreMapsEntries(t *testing.T) {
	rec := &recordingSink{}
	logger := zap.New(NewCore(rec, zapcore.InfoLevel), zap.AddCaller()).Named("search")

	logger.With(zap.String("request_id", "r1")).Info("Search request received", zap.String("query", "go"))
	logger.Debug("not enabled")

	require.Len(t, rec.events, 1)
	e := rec.events[0]
	assert.Equal(t, "INFO", e.Level)
	assert.Equal(t, "Search request received", e.Message)
	assert.Equal(t, "search", e.Target)
	assert.True(t, strings.HasSuffix(e.File, "sink_test.go"), e.File)
	assert.Positive(t, e.Line)
	assert.Contains(t, e.ModulePath, "TestCoreMapsEntries")
	assert.Equal(t, map[string]interface{}{"request_id": "r1", "query": "go"}, e.Fields)
	assert.Equal(t, time.UTC, e.Timestamp.Location())
}

func TestCoreDefaultTarget(t *testing.T) {
	rec := &recordingSink{}
	logger := zap.New(NewCore(rec, zapcore.DebugLevel))

	logger.Warn("no caller")

	require.Len(t, rec.events, 1)
	assert.Equal(t, DefaultTarget, rec.events[0].Target)
	assert.Equal(t, "WARN", rec.events[0].Level)
	assert.Empty(t, rec.events[0].File)
	assert.Nil(t, rec.events[0].Fields)
}

func TestNopIsInert(t *testing.T) {
	var sink Sink = Nop{}
	sink.Emit(Event{Message: "ignored"})
}
