// Package lcd carries row updates from background goroutines to the
// scrolling display owned by the main loop.
//
// Example usage:
//
//	rowUpdates := make(chan lcd.Message, 10)
//	handler := lcd.NewHandler(disp, rowUpdates, logger)
//
//	// From any goroutine; never blocks.
//	lcd.Send(rowUpdates, lcd.RowMQTT, "MQTT Connected")
//
//	// From the main loop.
//	for {
//	    handler.Drain()
//	    disp.Loop()
//	}
package lcd

import (
	"log/slog"

	"github.com/harveysanders/picoscroll/display"
)

// Logical rows used by the sensor firmware.
const (
	RowVoltage = iota
	RowTemperature
	RowHumidity
	RowWiFi
	RowIP
	RowMQTT
	RowMQTTDetail
	RowUptime
)

// Message replaces the text of one logical row.
type Message struct {
	Row  int
	Text []byte
}

// Send queues a row update without blocking. If the channel is full the
// update is dropped; the next status change will overwrite it anyway.
func Send(messages chan<- Message, row int, text string) bool {
	select {
	case messages <- Message{Row: row, Text: []byte(text)}:
		return true
	default:
		return false
	}
}

// RowFromTopic parses topics of the form prefix+"<n>" where n is a valid
// logical row.
func RowFromTopic(prefix string, topic []byte) (row int, ok bool) {
	if len(topic) <= len(prefix) || string(topic[:len(prefix)]) != prefix {
		return 0, false
	}
	for _, c := range topic[len(prefix):] {
		if c < '0' || c > '9' {
			return 0, false
		}
		row = row*10 + int(c-'0')
		if row >= display.MaxCharacterRows {
			return 0, false
		}
	}
	return row, true
}

// Handler applies queued row updates to a display.
type Handler struct {
	display  *display.Display
	messages <-chan Message
	logger   *slog.Logger
	// maxPerDrain bounds the work done by one Drain call.
	maxPerDrain int
}

// NewHandler creates a Handler that writes updates from messages to d.
func NewHandler(d *display.Display, messages <-chan Message, logger *slog.Logger) *Handler {
	return &Handler{
		display:     d,
		messages:    messages,
		logger:      logger,
		maxPerDrain: 4,
	}
}

// Drain applies pending updates and returns how many were applied. It
// never blocks and must be called from the goroutine that runs the
// display loop.
func (h *Handler) Drain() int {
	for n := 0; n < h.maxPerDrain; n++ {
		select {
		case msg := <-h.messages:
			if err := h.display.Print(msg.Row, msg.Text); err != nil {
				h.logger.Warn("lcd:row update truncated",
					slog.Int("row", msg.Row),
					slog.Int("len", len(msg.Text)),
				)
			}
		default:
			return n
		}
	}
	return h.maxPerDrain
}
