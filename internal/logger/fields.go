package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldCandidateID is the structured log field key for a candidate identifier.
	FieldCandidateID = "candidate_id"
	// FieldSession is the structured log field key for a chat session kind.
	FieldSession = "session"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CandidateFields returns the field identifying a candidate, or nothing for an empty id.
func CandidateFields(id string) []zap.Field {
	return StringFields(StringField{Key: FieldCandidateID, Value: id})
}

// SessionFields describes a chat session. The candidate id is omitted for corpus-wide sessions.
func SessionFields(kind, candidateID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSession, Value: kind},
		StringField{Key: FieldCandidateID, Value: candidateID},
	)
}
