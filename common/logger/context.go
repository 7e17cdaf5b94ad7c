package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The claim loop sets EventID and ChatRoom once per event so every log line below it
// (classifier, ticket update, alert) carries them without passing them around.
type LogFields struct {
	EventID   *int64  // message_event id being processed
	TicketID  *int64  // ticket touched by the current operation
	ChatRoom  *string // conversation (chat room) key
	DeviceID  *string // forwarding bridge device
	Component string  // Component name, e.g. "cs.worker.sla_monitor"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.EventID != nil {
		result.EventID = next.EventID
	}
	if next.TicketID != nil {
		result.TicketID = next.TicketID
	}
	if next.ChatRoom != nil {
		result.ChatRoom = next.ChatRoom
	}
	if next.DeviceID != nil {
		result.DeviceID = next.DeviceID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{TicketID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to at most maxRunes characters, appending "..." if cut.
// Counts runes, not bytes, since most chat text is Korean.
func Truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
