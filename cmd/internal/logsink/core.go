package logsink

import (
	"go.uber.org/zap/zapcore"
)

// DefaultTarget names events logged without a named logger.
const DefaultTarget = "search"

type core struct {
	zapcore.LevelEnabler
	sink   Sink
	fields []zapcore.Field
}

// NewCore returns a zapcore.Core that turns enabled entries into events for
// sink. Tee it with the console core to mirror every line.
func NewCore(sink Sink, enab zapcore.LevelEnabler) zapcore.Core {
	return &core{LevelEnabler: enab, sink: sink}
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	clone := &core{LevelEnabler: c.LevelEnabler, sink: c.sink}
	clone.fields = make([]zapcore.Field, 0, len(c.fields)+len(fields))
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	event := Event{
		Timestamp: ent.Time.UTC(),
		Level:     ent.Level.CapitalString(),
		Message:   ent.Message,
		Target:    ent.LoggerName,
	}
	if event.Target == "" {
		event.Target = DefaultTarget
	}
	if ent.Caller.Defined {
		event.ModulePath = ent.Caller.Function
		event.File = ent.Caller.File
		event.Line = ent.Caller.Line
	}

	if len(c.fields)+len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range c.fields {
			f.AddTo(enc)
		}
		for _, f := range fields {
			f.AddTo(enc)
		}
		event.Fields = enc.Fields
	}

	c.sink.Emit(event)
	return nil
}

func (c *core) Sync() error {
	return nil
}
