package logging

import (
	"encoding/json"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var flatPool = buffer.NewPool()

// FlatEncoder writes every entry as a single flat JSON object: entry metadata
// and fields share one level, caller is split into file/line/function.
// Fields attached with Logger.With accumulate in the embedded map encoder.
type FlatEncoder struct {
	*zapcore.MapObjectEncoder
	config zapcore.EncoderConfig
}

// NewFlatEncoder creates a flat JSON encoder
func NewFlatEncoder(config zapcore.EncoderConfig) zapcore.Encoder {
	return &FlatEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		config:           config,
	}
}

// EncodeEntry encodes a log entry
func (e *FlatEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	enc := zapcore.NewMapObjectEncoder()
	for k, v := range e.Fields {
		enc.Fields[k] = v
	}
	for _, field := range fields {
		field.AddTo(enc)
	}

	obj := enc.Fields
	obj[keyOr(e.config.TimeKey, "timestamp")] = entry.Time.UTC().Format("2006-01-02T15:04:05.999999999Z07:00")
	obj[keyOr(e.config.LevelKey, "level")] = entry.Level.String()
	obj[keyOr(e.config.MessageKey, "message")] = entry.Message
	if entry.LoggerName != "" {
		obj["logger"] = entry.LoggerName
	}
	if entry.Caller.Defined {
		obj["file"] = entry.Caller.File
		obj["line"] = entry.Caller.Line
		obj["function"] = entry.Caller.Function
	}
	if entry.Stack != "" {
		obj["stack"] = entry.Stack
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}

	buf := flatPool.Get()
	buf.AppendBytes(data)
	buf.AppendString(zapcore.DefaultLineEnding)
	return buf, nil
}

// Clone creates a copy of the encoder
func (e *FlatEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range e.Fields {
		clone.Fields[k] = v
	}
	return &FlatEncoder{
		MapObjectEncoder: clone,
		config:           e.config,
	}
}

func keyOr(configured, fallback string) string {
	if configured == "" || configured == zapcore.OmitKey {
		return fallback
	}
	return configured
}
