package lcd

import (
	"io"
	"log/slog"
	"testing"

	"github.com/harveysanders/picoscroll/display"
	"github.com/harveysanders/picoscroll/display/displaytest"
)

func newHandler(t *testing.T, buffered int) (*Handler, *display.Display, chan Message) {
	t.Helper()
	d, err := display.New(displaytest.New(16, 2), display.DefaultConfig())
	if err != nil {
		t.Fatalf("display.New() error = %v", err)
	}
	messages := make(chan Message, buffered)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(d, messages, logger), d, messages
}

func TestSendDropsWhenFull(t *testing.T) {
	messages := make(chan Message, 1)
	if !Send(messages, RowWiFi, "joining") {
		t.Fatal("Send() to empty channel = false")
	}
	if Send(messages, RowWiFi, "joined") {
		t.Error("Send() to full channel = true")
	}
}

func TestDrainAppliesUpdates(t *testing.T) {
	h, d, messages := newHandler(t, 10)
	Send(messages, RowMQTT, "MQTT Connect")
	Send(messages, RowMQTTDetail, "Authenticating")
	Send(messages, RowMQTT, "MQTT Connected")

	if n := h.Drain(); n != 3 {
		t.Errorf("Drain() = %d, want 3", n)
	}
	if got := d.Row(RowMQTT); got != "MQTT Connected" {
		t.Errorf("Row(RowMQTT) = %q", got)
	}
	if got := d.Row(RowMQTTDetail); got != "Authenticating" {
		t.Errorf("Row(RowMQTTDetail) = %q", got)
	}
	if n := h.Drain(); n != 0 {
		t.Errorf("Drain() on empty channel = %d, want 0", n)
	}
}

func TestDrainIsBounded(t *testing.T) {
	h, d, messages := newHandler(t, 10)
	for i := range 6 {
		Send(messages, RowUptime, string(rune('a'+i)))
	}
	if n := h.Drain(); n != h.maxPerDrain {
		t.Errorf("first Drain() = %d, want %d", n, h.maxPerDrain)
	}
	if n := h.Drain(); n != 2 {
		t.Errorf("second Drain() = %d, want 2", n)
	}
	if got := d.Row(RowUptime); got != "f" {
		t.Errorf("Row(RowUptime) = %q, want %q", got, "f")
	}
}

func TestRowFromTopic(t *testing.T) {
	const prefix = "display/row/"
	tests := []struct {
		topic  string
		want   int
		wantOK bool
	}{
		{"display/row/0", 0, true},
		{"display/row/7", 7, true},
		{"display/row/07", 7, true},
		{"display/row/8", 0, false},
		{"display/row/123", 0, false},
		{"display/row/", 0, false},
		{"display/row/x", 0, false},
		{"display/row/1/extra", 0, false},
		{"sensors/pico", 0, false},
		{"display", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, ok := RowFromTopic(prefix, []byte(tt.topic))
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("RowFromTopic(%q) = %d, %v, want %d, %v", tt.topic, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDrainToleratesBadRows(t *testing.T) {
	h, d, messages := newHandler(t, 10)
	Send(messages, display.MaxCharacterRows, "nowhere")
	Send(messages, RowIP, "IP 10.0.0.9")
	if n := h.Drain(); n != 2 {
		t.Errorf("Drain() = %d, want 2", n)
	}
	if got := d.Row(RowIP); got != "IP 10.0.0.9" {
		t.Errorf("Row(RowIP) = %q", got)
	}
}
