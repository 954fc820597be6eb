package logger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ganiszulfa/okblog/search/cmd/internal/logsink"
)

type recordingSink struct {
	mu     sync.Mutex
	events []logsink.Event
}

func (r *recordingSink) Emit(e logsink.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestNewEnvironments(t *testing.T) {
	for _, env := range []string{"prod", "", "local", "dev", "docker"} {
		l, err := New(env, "")
		require.NoError(t, err, env)
		assert.NotNil(t, l)
	}

	_, err := New("staging", "")
	assert.Error(t, err)
}

func TestNewLevelOverride(t *testing.T) {
	l, err := New("prod", "warn")
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = New("prod", "loud")
	assert.Error(t, err)
}

func TestWithSinkMirrorsEnabledEntries(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := &recordingSink{}

	l := WithSink(zap.New(core), sink)
	l.Info("Search completed", zap.Int64("total", 2))
	l.Debug("filtered")

	assert.Equal(t, 1, logs.Len())
	require.Len(t, sink.events, 1)
	assert.Equal(t, "Search completed", sink.events[0].Message)
	assert.Equal(t, "INFO", sink.events[0].Level)
	assert.EqualValues(t, 2, sink.events[0].Fields["total"])
}
