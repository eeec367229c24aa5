// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"runtime/trace"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog"
)

// Span represents an HTTP request being served.
type Span struct {
	// only these fields are set automatically
	task     *trace.Task
	start    time.Time
	duration time.Duration
	metric   *servertiming.Metric

	RequestID  string
	Method     string
	URL        string
	StatusCode int
	Error      error
	Debug      bool
	Toggle     string // debug cookie change made by the response, if any
}

// ServerTimingName is the metric name reported in the Server-Timing header.
const ServerTimingName = "handler"

// Begin starts timing the span. When ctx carries Server-Timing state, the
// span is also reported there.
func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "http.handler")
	if timing := servertiming.FromContext(ctx); timing != nil {
		span.metric = timing.NewMetric(ServerTimingName)
		span.metric.Desc = span.Method
	}

	return ctx
}

// End stops timing the span. Calling End more than once has no effect.
func (span *Span) End() {
	if span.task == nil {
		return
	}

	span.duration = time.Since(span.start)
	span.task.End()

	if span.metric != nil {
		span.metric.Duration = span.duration
	}

	span.task = nil
}

// Duration returns the measured duration, valid after End.
func (span *Span) Duration() time.Duration {
	return span.duration
}

// Log writes the span to logger at debug level, or info level when the
// request was in debug mode.
func (span *Span) Log(logger *zerolog.Logger) {
	event := logger.Debug()
	if span.Debug {
		event = logger.Info()
	}

	event.Str("sys", "http")
	event.Str("method", span.Method)
	event.Str("url", span.URL)
	event.Int("status_code", span.StatusCode)
	event.Dur("dur", span.duration)
	event.Str("request_id", span.RequestID)
	event.Bool("debug", span.Debug)

	if span.Toggle != "" {
		event.Str("debug_toggle", span.Toggle)
	}

	if span.Error != nil {
		event.Err(span.Error)
	}

	event.Send()
}
