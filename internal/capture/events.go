package capture

import (
	"fmt"
	"log/slog"
)

// EventKind identifies a session event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventStopped
	EventShutdown
	EventEndOfStream
	EventFormat
	EventBackendLog
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventShutdown:
		return "shutdown"
	case EventEndOfStream:
		return "end of stream"
	case EventFormat:
		return "format"
	case EventBackendLog:
		return "backend log"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a notification from an audio session.
type Event struct {
	Kind       EventKind
	Source     string
	Message    string
	SampleRate int
	Channels   int
}

// Ack tells the source how to proceed after an event.
type Ack int

const (
	// Continue keeps the session running.
	Continue Ack = iota
	// Quit ends the session; the source closes its Done channel.
	Quit
)

// EventHandler receives session events. It is called from audio backend
// threads but never from the sample callback itself.
type EventHandler interface {
	OnSessionEvent(Event) Ack
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(Event) Ack

func (f EventHandlerFunc) OnSessionEvent(e Event) Ack { return f(e) }

// LogEvents logs every event and quits when the backend shuts the session
// down underneath us.
type LogEvents struct {
	Log *slog.Logger
}

func (h LogEvents) OnSessionEvent(e Event) Ack {
	log := h.Log
	if log == nil {
		log = slog.Default()
	}
	attrs := []any{"source", e.Source}
	if e.SampleRate > 0 {
		attrs = append(attrs, "sample_rate", e.SampleRate, "channels", e.Channels)
	}
	if e.Message != "" {
		attrs = append(attrs, "message", e.Message)
	}

	switch e.Kind {
	case EventShutdown:
		log.Warn("audio session shut down", attrs...)
		return Quit
	case EventBackendLog:
		log.Debug("audio backend", attrs...)
	default:
		log.Info("audio session "+e.Kind.String(), attrs...)
	}
	return Continue
}

func notify(h EventHandler, e Event) Ack {
	if h == nil {
		return Continue
	}
	return h.OnSessionEvent(e)
}
