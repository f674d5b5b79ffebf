// Package report carries progress events from engines to whatever is
// watching a run. Engines emit without blocking; consumers choose how to
// render.
package report

import "log/slog"

// Event is one unit of run progress.
type Event struct {
	// Phase names the run stage emitting the event, such as "reconcile"
	// or "dedupe".
	Phase string
	// Current and Total describe position within the phase. Total may be 0
	// when the phase length is unknown up front.
	Current int
	Total   int
	Message string
	// Success is false when the event describes a skipped or failed item.
	Success bool
}

// Reporter receives progress events. Implementations must not block for
// long; engines call Report on their own goroutine.
type Reporter interface {
	Report(event Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Report(Event) {}

// Channel buffers events for a consumer goroutine. When the consumer lags
// and the buffer fills, new events are dropped so the engine never stalls on
// its observer.
type Channel struct {
	events chan Event
}

// NewChannel builds a channel reporter with the given buffer size.
func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = 64
	}
	return &Channel{events: make(chan Event, buffer)}
}

// Report enqueues the event, dropping it when the buffer is full.
func (c *Channel) Report(event Event) {
	select {
	case c.events <- event:
	default:
	}
}

// Events exposes the consumer side of the reporter.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Close signals consumers that no more events will arrive. Report must not
// be called after Close.
func (c *Channel) Close() {
	close(c.events)
}

// Log writes each event to a structured logger. Suited to headless runs.
type Log struct {
	logger *slog.Logger
}

// NewLog builds a logger-backed reporter.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Report(event Event) {
	if l.logger == nil {
		return
	}
	attrs := []any{
		slog.String("phase", event.Phase),
		slog.Int("current", event.Current),
		slog.Int("total", event.Total),
	}
	if event.Success {
		l.logger.Debug(event.Message, attrs...)
		return
	}
	l.logger.Warn(event.Message, attrs...)
}

// Multi fans one event out to several reporters.
type Multi []Reporter

func (m Multi) Report(event Event) {
	for _, r := range m {
		r.Report(event)
	}
}
