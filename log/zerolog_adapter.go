package log

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// zerologAdapter implements Logger on top of zerolog.
type zerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a Logger backed by zerolog. With pretty enabled
// the output goes through the console writer for local development.
func NewZerologAdapter(level zerolog.Level, pretty bool) Logger {
	var zlog zerolog.Logger
	if pretty {
		zlog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	} else {
		zlog = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	return &zerologAdapter{logger: zlog}
}

// addTraceInfo attaches trace_id and span_id when the context carries a
// recording span.
func addTraceInfo(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		event = event.
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String())
	}
	return event
}

func (z *zerologAdapter) emit(ctx context.Context, event *zerolog.Event, msg string, fields []map[string]interface{}) {
	event = addTraceInfo(ctx, event)
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(msg)
}

func (z *zerologAdapter) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	z.emit(ctx, z.logger.Debug(), msg, fields)
}

func (z *zerologAdapter) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	z.emit(ctx, z.logger.Info(), msg, fields)
}

func (z *zerologAdapter) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	z.emit(ctx, z.logger.Warn(), msg, fields)
}

func (z *zerologAdapter) Error(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	z.emit(ctx, z.logger.Error().Err(err), msg, fields)
}

func (z *zerologAdapter) Fatal(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	z.emit(ctx, z.logger.Fatal().Err(err), msg, fields)
}

func (z *zerologAdapter) With(fields map[string]interface{}) Logger {
	return &zerologAdapter{logger: z.logger.With().Fields(fields).Logger()}
}
