package capture

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogEventsQuitsOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	h := LogEvents{Log: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	if ack := h.OnSessionEvent(Event{Kind: EventStarted, Source: "mic", SampleRate: 48000, Channels: 1}); ack != Continue {
		t.Fatalf("expected Continue for start, got %v", ack)
	}
	if ack := h.OnSessionEvent(Event{Kind: EventBackendLog, Message: "hello"}); ack != Continue {
		t.Fatalf("expected Continue for backend log, got %v", ack)
	}
	if ack := h.OnSessionEvent(Event{Kind: EventShutdown, Source: "mic"}); ack != Quit {
		t.Fatalf("expected Quit for shutdown, got %v", ack)
	}

	out := buf.String()
	for _, want := range []string{"audio session started", "sample_rate=48000", "level=WARN", "message=hello"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log to contain %q, got:\n%s", want, out)
		}
	}
}

func TestNotifyWithoutHandler(t *testing.T) {
	if ack := notify(nil, Event{Kind: EventShutdown}); ack != Continue {
		t.Fatalf("expected Continue without a handler, got %v", ack)
	}
}

func TestEventKindString(t *testing.T) {
	if EventEndOfStream.String() != "end of stream" {
		t.Fatalf("unexpected name %q", EventEndOfStream.String())
	}
	if EventKind(42).String() != "EventKind(42)" {
		t.Fatalf("unexpected name %q", EventKind(42).String())
	}
}
