// Package oled draws a character grid on a pixel display such as an
// SSD1306, so that it can be driven by package display like a character
// LCD.
//
// Characters are drawn into the driver's frame buffer, which is sent to
// the panel when a line is complete, when the cursor moves to a new line
// or when the screen is cleared.
package oled

import (
	"image/color"
	"time"

	"github.com/harveysanders/picoscroll/display"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	black = color.RGBA{0, 0, 0, 255}
	white = color.RGBA{255, 255, 255, 255}
)

// Config configures the character grid.
type Config struct {
	// Font used to draw characters. Defaults to proggy.TinySZ8pt7b.
	Font tinyfont.Fonter
	// CellWidth and CellHeight are the character cell size in pixels.
	// Default 6x10.
	CellWidth  int16
	CellHeight int16
	// Baseline is the offset of the font baseline within a cell. Default 8.
	Baseline int16
	// OpDelay is the busy time after each flush. Zero disables pacing.
	OpDelay time.Duration
	// Now is the clock used for pacing. Defaults to time.Now.
	Now func() time.Time
}

// Device is a display.Device that renders characters on a pixel display.
type Device struct {
	dev      drivers.Displayer
	font     tinyfont.Fonter
	cellW    int16
	cellH    int16
	baseline int16
	cols     int
	rows     int

	row   int
	col   int
	dirty bool
	pacer display.Pacer
}

// New returns a character device drawing on dev.
func New(dev drivers.Displayer, cfg Config) *Device {
	if cfg.Font == nil {
		cfg.Font = &proggy.TinySZ8pt7b
	}
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = 6
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = 10
	}
	if cfg.Baseline <= 0 {
		cfg.Baseline = 8
	}
	w, h := dev.Size()
	return &Device{
		dev:      dev,
		font:     cfg.Font,
		cellW:    cfg.CellWidth,
		cellH:    cfg.CellHeight,
		baseline: cfg.Baseline,
		cols:     int(w / cfg.CellWidth),
		rows:     int(h / cfg.CellHeight),
		pacer: display.Pacer{
			Delay: cfg.OpDelay,
			Now:   cfg.Now,
		},
	}
}

func (d *Device) Size() (cols, rows int) { return d.cols, d.rows }

func (d *Device) Begin() error { return d.Clear() }

// Clear blanks the frame buffer and sends it to the panel.
func (d *Device) Clear() error {
	w, h := d.dev.Size()
	d.fill(0, 0, w, h)
	d.row, d.col = 0, 0
	d.dirty = true
	return d.flush()
}

func (d *Device) Busy() bool { return d.pacer.Busy() }

// SetRow sends pending characters to the panel and moves to line slot.
func (d *Device) SetRow(slot int) error {
	if slot < 0 || slot >= d.rows {
		return display.ErrOutOfRange
	}
	err := d.flush()
	d.row, d.col = slot, 0
	return err
}

// WriteChar draws c in the frame buffer. Characters beyond the last
// column are dropped.
func (d *Device) WriteChar(c byte) error {
	if d.col >= d.cols {
		return nil
	}
	x := int16(d.col) * d.cellW
	y := int16(d.row) * d.cellH
	d.fill(x, y, d.cellW, d.cellH)
	if c != ' ' {
		tinyfont.DrawChar(d.dev, d.font, x, y+d.baseline, rune(c), white)
	}
	d.col++
	d.dirty = true
	if d.col == d.cols {
		return d.flush()
	}
	return nil
}

func (d *Device) flush() error {
	if !d.dirty {
		return nil
	}
	d.dirty = false
	d.pacer.Mark()
	return d.dev.Display()
}

func (d *Device) fill(x, y, w, h int16) {
	for i := x; i < x+w; i++ {
		for j := y; j < y+h; j++ {
			d.dev.SetPixel(i, j, black)
		}
	}
}
