package alert

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sink shows an alert to a user. Implementations must be safe for
// concurrent use; errors are reported but never retried by callers.
type Sink interface {
	Show(ctx context.Context, recipient, title, body string) error
}

// Bridge schedules durable notifications outside the in-process timers,
// keyed by a positive 31-bit handle. The nil Bridge is valid and inert.
type Bridge interface {
	Schedule(ctx context.Context, handle int32, key, title, body string, fireAt time.Time) error
	Cancel(ctx context.Context, handle int32) error
}

// LogSink is the fallback sink: the alert lands in the structured log
// instead of a delivery channel. Never fails.
type LogSink struct{}

func (LogSink) Show(_ context.Context, recipient, title, body string) error {
	log.Info().
		Str("recipient", recipient).
		Str("title", title).
		Str("body", body).
		Msg("alert")
	return nil
}
