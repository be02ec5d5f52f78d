package display

import (
	"log/slog"
	"time"
)

// Loop advances the screen update by one operation: either the cursor is
// moved to the start of the next screen line, or one character is
// written. It should be called frequently from the main loop.
//
// Loop does nothing if the device is busy, or if a cycle finished less
// than the configured scroll time ago and a new one would start.
func (d *Display) Loop() {
	if d.dev.Busy() {
		return
	}
	now := d.now()
	c := &d.cycle
	if !c.active && c.completed && now.Sub(c.lastScroll) < d.scroll {
		return
	}
	d.step(now)
}

// Refresh redraws the whole screen before returning, ignoring the busy
// state and the scroll time. It blocks for as long as the device takes
// and is intended for start-up, when no other work needs to run.
//
// A cycle in progress is restarted from its first row.
func (d *Display) Refresh() {
	d.cycle.active = false
	now := d.now()
	for {
		d.step(now)
		if !d.cycle.active {
			return
		}
	}
}

// step performs one unit of work.
func (d *Display) step(now time.Time) {
	c := &d.cycle
	if !c.active {
		c.begin()
	}
	if !c.streaming {
		d.fetch()
		return
	}
	d.emit(now)
}

// fetch snapshots the next row to show and positions the cursor.
func (d *Display) fetch() {
	c := &d.cycle
	if row, ok := d.nextRow(); ok {
		c.line = d.buf[row]
	} else {
		c.line[0] = 0
	}
	c.pos = 0
	c.col = 0
	c.streaming = true
	d.deviceErr("set row", d.dev.SetRow(c.slot))
}

// emit writes one character of the current line, padding with spaces
// past its end to erase what was there before.
func (d *Display) emit(now time.Time) {
	c := &d.cycle
	ch := c.line[c.pos]
	if ch != 0 {
		c.pos++
	} else {
		ch = ' '
	}
	d.deviceErr("write", d.dev.WriteChar(ch))

	c.col++
	if c.col < d.cols {
		return
	}
	// Screen line complete.
	c.streaming = false
	c.slot++
	if c.slot < d.rows {
		return
	}
	d.finish(now)
}

// finish completes the cycle and prepares the next one.
func (d *Display) finish(now time.Time) {
	c := &d.cycle
	d.advanceOrigin()
	c.active = false
	c.completed = true
	c.lastScroll = now
	d.log.Debug("display:cycle",
		slog.Int("first", c.first),
		slog.Int("last", c.last),
		slog.Int("nextOrigin", c.origin),
	)
}
