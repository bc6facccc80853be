package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured log field. It exists so callers outside this
// package do not import zap directly.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for constructing a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// ToZapField converts the field to its zap representation
func (f Field) ToZapField() zapcore.Field {
	return zap.Any(f.Key, f.Value)
}
