package display_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/harveysanders/picoscroll/display"
	"github.com/harveysanders/picoscroll/display/displaytest"
)

func newTestDisplay(t *testing.T, cols, rows int, mode display.ScrollMode) (*display.Display, *displaytest.Device, *displaytest.Clock) {
	t.Helper()
	dev := displaytest.New(cols, rows)
	clock := displaytest.NewClock()
	d, err := display.New(dev, display.Config{
		ScrollTime: display.DefaultScrollTime,
		Mode:       mode,
		Now:        clock.Now,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d, dev, clock
}

func TestPrintReadBack(t *testing.T) {
	tests := []struct {
		name string
		row  int
		text string
	}{
		{"empty", 0, ""},
		{"single char", 1, "A"},
		{"status line", 3, "Temp: 21.5C"},
		{"full row", 7, strings.Repeat("x", display.MaxCharacterCols)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _ := newTestDisplay(t, 16, 2, display.ScrollRow)
			if err := d.Print(tt.row, []byte(tt.text)); err != nil {
				t.Fatalf("Print() error = %v", err)
			}
			if got := d.Row(tt.row); got != tt.text {
				t.Errorf("Row(%d) = %q, want %q", tt.row, got, tt.text)
			}
		})
	}
}

func TestSetRowClearsPreviousText(t *testing.T) {
	d, _, _ := newTestDisplay(t, 16, 2, display.ScrollRow)
	d.Print(2, []byte("a long old line"))
	d.Print(2, []byte("new"))
	if got := d.Row(2); got != "new" {
		t.Errorf("Row(2) = %q, want %q", got, "new")
	}
}

func TestWriteAppends(t *testing.T) {
	d, _, _ := newTestDisplay(t, 16, 2, display.ScrollRow)
	if err := d.SetRow(4); err != nil {
		t.Fatalf("SetRow() error = %v", err)
	}
	d.WriteString("V: ")
	d.Write([]byte("3.3"))
	d.WriteByte('V')
	if got := d.Row(4); got != "V: 3.3V" {
		t.Errorf("Row(4) = %q, want %q", got, "V: 3.3V")
	}
}

func TestWriteBeyondColumnCapacity(t *testing.T) {
	d, _, _ := newTestDisplay(t, 16, 2, display.ScrollRow)
	d.Print(0, []byte("above"))
	d.Print(2, []byte("below"))

	long := strings.Repeat("y", display.MaxCharacterCols+5)
	d.SetRow(1)
	n, err := d.WriteString(long)
	if !errors.Is(err, display.ErrOutOfRange) {
		t.Errorf("WriteString() error = %v, want ErrOutOfRange", err)
	}
	if n != display.MaxCharacterCols {
		t.Errorf("WriteString() n = %d, want %d", n, display.MaxCharacterCols)
	}
	if got := d.Row(1); got != long[:display.MaxCharacterCols] {
		t.Errorf("Row(1) = %q, want %q", got, long[:display.MaxCharacterCols])
	}
	if err := d.WriteByte('z'); !errors.Is(err, display.ErrOutOfRange) {
		t.Errorf("WriteByte() on full row error = %v, want ErrOutOfRange", err)
	}
	if got := d.Row(0); got != "above" {
		t.Errorf("Row(0) = %q, want %q", got, "above")
	}
	if got := d.Row(2); got != "below" {
		t.Errorf("Row(2) = %q, want %q", got, "below")
	}
}

func TestWriteBeyondRowCapacity(t *testing.T) {
	d, _, _ := newTestDisplay(t, 16, 2, display.ScrollRow)
	d.Print(0, []byte("keep"))

	for _, row := range []int{-1, display.MaxCharacterRows, 100} {
		if err := d.SetRow(row); !errors.Is(err, display.ErrOutOfRange) {
			t.Errorf("SetRow(%d) error = %v, want ErrOutOfRange", row, err)
		}
		if err := d.WriteByte('x'); !errors.Is(err, display.ErrOutOfRange) {
			t.Errorf("WriteByte() after SetRow(%d) error = %v, want ErrOutOfRange", row, err)
		}
	}
	if err := d.Print(display.MaxCharacterRows, []byte("lost")); !errors.Is(err, display.ErrOutOfRange) {
		t.Errorf("Print() error = %v, want ErrOutOfRange", err)
	}
	if got := d.Row(0); got != "keep" {
		t.Errorf("Row(0) = %q, want %q", got, "keep")
	}
	if got := d.Row(display.MaxCharacterRows); got != "" {
		t.Errorf("Row(out of range) = %q, want empty", got)
	}
}

func TestWriteDropsNUL(t *testing.T) {
	d, _, _ := newTestDisplay(t, 16, 2, display.ScrollRow)
	d.Print(0, []byte{'a', 0, 'b'})
	if got := d.Row(0); got != "ab" {
		t.Errorf("Row(0) = %q, want %q", got, "ab")
	}
}

func TestAppendRow(t *testing.T) {
	d, _, _ := newTestDisplay(t, 16, 2, display.ScrollRow)
	d.Print(5, []byte("IP 10.0.0.9"))
	buf := make([]byte, 0, 32)
	buf = append(buf, "row5="...)
	buf = d.AppendRow(buf, 5)
	if got := string(buf); got != "row5=IP 10.0.0.9" {
		t.Errorf("AppendRow() = %q", got)
	}
}
