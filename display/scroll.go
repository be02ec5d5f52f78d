package display

import (
	"errors"
	"time"
)

// ScrollMode selects which logical rows are shown on successive screen
// cycles when there are more non-blank rows than screen lines.
type ScrollMode uint8

const (
	// ScrollContinuous fills the screen with non-blank rows and moves the
	// window down by one row on each cycle.
	ScrollContinuous ScrollMode = iota
	// ScrollPage flips between whole pages of rows.
	ScrollPage
	// ScrollRow moves the window by one row per cycle. It behaves the same
	// as ScrollContinuous.
	ScrollRow
)

var errUnknownMode = errors.New("display: unknown scroll mode")

// ParseScrollMode parses a mode name ("continuous", "page", "row" or
// "row-step") or its numeric value ("0", "1", "2").
func ParseScrollMode(s string) (ScrollMode, error) {
	switch s {
	case "continuous", "0":
		return ScrollContinuous, nil
	case "page", "1":
		return ScrollPage, nil
	case "row", "row-step", "2":
		return ScrollRow, nil
	}
	return 0, errors.New(errUnknownMode.Error() + ": " + s)
}

func (m ScrollMode) String() string {
	switch m {
	case ScrollContinuous:
		return "continuous"
	case ScrollPage:
		return "page"
	case ScrollRow:
		return "row"
	}
	return "unknown"
}

func (m ScrollMode) paged() bool {
	return m == ScrollPage
}

// cycle is the resumable state of the step engine. A cycle is one pass
// that fills every screen line once.
type cycle struct {
	origin  int // row the scan starts from
	next    int // next row to examine
	scanned int // rows examined since the cycle began
	first   int // first row shown this cycle, or noRow
	last    int // last row shown this cycle, or noRow

	exhausted bool // the scan ran out of rows
	active    bool // a cycle has begun and not yet completed

	slot      int  // screen line being filled
	streaming bool // line has been fetched and the cursor positioned
	col       int  // screen column of the next character
	pos       int  // index into line of the next character

	// line is the snapshot of the row being streamed. Writes to the row
	// after the snapshot is taken show up on the next cycle.
	line [MaxCharacterCols + 1]byte

	completed  bool      // at least one cycle has finished
	lastScroll time.Time // when the last cycle finished
}

// reset returns the state to the start of a fresh cycle from row 0.
func (c *cycle) reset() {
	*c = cycle{first: noRow, last: noRow}
}

func (c *cycle) begin() {
	c.next = c.origin
	c.scanned = 0
	c.first = noRow
	c.last = noRow
	c.exhausted = false
	c.slot = 0
	c.streaming = false
	c.active = true
}

// nextRow finds the next non-blank row under the display's scroll mode.
// It examines at most MaxCharacterRows rows per cycle. ok is false when
// no more rows can be shown in this cycle.
func (d *Display) nextRow() (row int, ok bool) {
	c := &d.cycle
	for !c.exhausted {
		row = c.next
		if row >= MaxCharacterRows {
			if d.mode.paged() {
				// A page never wraps past the last row.
				c.exhausted = true
				break
			}
			row = 0
		}
		if c.scanned >= MaxCharacterRows {
			// Back where this cycle started.
			c.exhausted = true
			break
		}
		c.next = row + 1
		c.scanned++
		if !d.blank(row) {
			if c.first == noRow {
				c.first = row
			}
			c.last = row
			return row, true
		}
	}
	return noRow, false
}

// advanceOrigin picks the row the next cycle starts from.
func (d *Display) advanceOrigin() {
	c := &d.cycle
	switch {
	case c.first == noRow || d.nonBlankRows() <= d.rows:
		// Everything fits: keep the rows in order.
		c.origin = 0
	case d.mode.paged():
		c.origin = 0
		if c.exhausted {
			return
		}
		// Start the next page at the next non-blank row, if any.
		for row := c.last + 1; row < MaxCharacterRows; row++ {
			if !d.blank(row) {
				c.origin = row
				return
			}
		}
	default:
		c.origin = (c.first + 1) % MaxCharacterRows
	}
}
