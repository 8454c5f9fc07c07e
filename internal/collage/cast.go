package collage

import (
	"context"
	"log/slog"
)

// Sink receives a finished collage for display elsewhere.
type Sink interface {
	Cast(ctx context.Context, r *Result) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, r *Result) error

// Cast calls f.
func (f SinkFunc) Cast(ctx context.Context, r *Result) error { return f(ctx, r) }

// LogSink is a placeholder cast target: it announces that the collage is
// ready to cast and does nothing else.
type LogSink struct {
	Logger *slog.Logger
}

// Cast logs the result summary at info level.
func (s LogSink) Cast(ctx context.Context, r *Result) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "ready to cast",
		"id", r.ID,
		"width", r.Width(),
		"height", r.Height(),
		"mime_type", r.MimeType(),
		"url_length", len(r.DataURL()),
	)
	return nil
}
