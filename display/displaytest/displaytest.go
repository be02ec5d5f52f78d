// Package displaytest provides a recording display.Device and a manual
// clock for testing code that renders through package display.
package displaytest

import (
	"strings"
	"time"
)

// OpKind identifies a device operation.
type OpKind uint8

const (
	OpBegin OpKind = iota
	OpClear
	OpSetRow
	OpWrite
)

func (k OpKind) String() string {
	switch k {
	case OpBegin:
		return "begin"
	case OpClear:
		return "clear"
	case OpSetRow:
		return "setrow"
	case OpWrite:
		return "write"
	}
	return "unknown"
}

// Op is one recorded device call.
type Op struct {
	Kind OpKind
	Slot int  // OpSetRow
	Char byte // OpWrite
}

// Device is a display.Device that records every call and keeps an
// emulated copy of the screen.
type Device struct {
	Cols, Rows int
	// Err, if set, is returned by every operation.
	Err error

	ops    []Op
	busy   bool
	screen [][]byte
	curRow int
	curCol int
}

// New returns a Device with the given geometry and a blank screen.
func New(cols, rows int) *Device {
	d := &Device{Cols: cols, Rows: rows}
	d.screen = make([][]byte, rows)
	for i := range d.screen {
		d.screen[i] = make([]byte, cols)
	}
	d.blank()
	return d
}

func (d *Device) Size() (cols, rows int) { return d.Cols, d.Rows }

func (d *Device) Begin() error {
	d.ops = append(d.ops, Op{Kind: OpBegin})
	return d.Err
}

func (d *Device) Clear() error {
	d.ops = append(d.ops, Op{Kind: OpClear})
	d.blank()
	d.curRow, d.curCol = 0, 0
	return d.Err
}

// Busy returns the value set with SetBusy.
func (d *Device) Busy() bool { return d.busy }

// SetBusy sets the value reported by Busy.
func (d *Device) SetBusy(busy bool) { d.busy = busy }

func (d *Device) SetRow(slot int) error {
	d.ops = append(d.ops, Op{Kind: OpSetRow, Slot: slot})
	d.curRow, d.curCol = slot, 0
	return d.Err
}

func (d *Device) WriteChar(c byte) error {
	d.ops = append(d.ops, Op{Kind: OpWrite, Char: c})
	if d.curRow >= 0 && d.curRow < len(d.screen) && d.curCol < d.Cols {
		d.screen[d.curRow][d.curCol] = c
	}
	d.curCol++
	return d.Err
}

// Ops returns the operations recorded since the last Reset.
func (d *Device) Ops() []Op { return d.ops }

// Reset discards recorded operations. The screen contents are kept.
func (d *Device) Reset() { d.ops = d.ops[:0] }

// Line returns screen line slot with trailing spaces removed.
func (d *Device) Line(slot int) string {
	if slot < 0 || slot >= len(d.screen) {
		return ""
	}
	return strings.TrimRight(string(d.screen[slot]), " ")
}

// Lines returns every screen line, as Line does.
func (d *Device) Lines() []string {
	lines := make([]string, len(d.screen))
	for i := range lines {
		lines[i] = d.Line(i)
	}
	return lines
}

func (d *Device) blank() {
	for _, line := range d.screen {
		for i := range line {
			line[i] = ' '
		}
	}
}

// Clock is a manually advanced clock.
type Clock struct {
	t time.Time
}

// NewClock returns a Clock set to an arbitrary fixed instant.
func NewClock() *Clock {
	return &Clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current clock time.
func (c *Clock) Now() time.Time { return c.t }

// Advance moves the clock forward by dt.
func (c *Clock) Advance(dt time.Duration) { c.t = c.t.Add(dt) }
