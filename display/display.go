// Package display renders more logical rows of text than a character
// screen can show, scrolling through them over time without blocking the
// caller.
//
// A Display owns a fixed grid of MaxCharacterRows rows. The application
// writes rows with SetRow/Write (or Print), and the main loop calls Loop as
// often as it can. Each Loop call performs at most one operation on the
// Device: either positioning the cursor at the start of a screen line or
// writing a single character. This keeps slow buses such as I2C from
// holding up the rest of the loop.
//
// Example usage:
//
//	d, err := display.New(dev, display.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	d.Begin()
//	d.Print(0, []byte("Hello"))
//	d.Print(1, []byte("from TinyGo"))
//	d.Refresh() // blocking, start-up only
//	for {
//	    d.Loop()
//	    // other cooperative work...
//	}
package display

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"
)

const (
	// MaxCharacterRows is the number of logical rows held by a Display.
	MaxCharacterRows = 8
	// MaxCharacterCols is the capacity of each logical row in bytes.
	MaxCharacterCols = 20
	// MaxScreenRows and MaxScreenCols bound the geometry reported by a Device.
	MaxScreenRows = 8
	MaxScreenCols = 40

	// DefaultScrollTime is the minimum time between the end of one
	// screen cycle and the start of the next.
	DefaultScrollTime = 3 * time.Second
)

const noRow = -1

var (
	// ErrOutOfRange is returned when a row or column is beyond the
	// capacity of the row buffer. The write has no effect.
	ErrOutOfRange = errors.New("display: out of range")

	errNilDevice = errors.New("display: nil device")
)

// Config configures a Display.
type Config struct {
	// ScrollTime is the minimum interval between screen cycles started
	// by Loop. Zero disables throttling.
	ScrollTime time.Duration
	// Mode selects which rows are shown on successive cycles.
	Mode ScrollMode
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
	// Logger for device errors and cycle events. Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with a 3 second scroll time, row-step
// scrolling and the system clock.
func DefaultConfig() Config {
	return Config{
		ScrollTime: DefaultScrollTime,
		Mode:       ScrollRow,
		Now:        time.Now,
	}
}

// Display is a scrolling text renderer for a single Device.
//
// A Display is not safe for concurrent use. Rows must be written from the
// same goroutine that calls Loop and Refresh.
type Display struct {
	dev    Device
	log    *slog.Logger
	now    func() time.Time
	mode   ScrollMode
	scroll time.Duration

	// Physical geometry, fixed at construction.
	cols int
	rows int

	buf    [MaxCharacterRows][MaxCharacterCols + 1]byte
	hotRow int
	hotCol int

	cycle cycle
}

// New creates a Display that renders to dev. The device geometry is
// queried once and clamped to MaxScreenCols x MaxScreenRows.
func New(dev Device, cfg Config) (*Display, error) {
	if dev == nil {
		return nil, errNilDevice
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127), // Discard everything.
		}))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	cols, rows := dev.Size()
	if cols < 1 || rows < 1 {
		return nil, errors.New("display: invalid device geometry " +
			strconv.Itoa(cols) + "x" + strconv.Itoa(rows))
	}
	if cols > MaxScreenCols || rows > MaxScreenRows {
		logger.Warn("display:geometry clamped",
			slog.Int("cols", cols), slog.Int("rows", rows),
			slog.Int("maxCols", MaxScreenCols), slog.Int("maxRows", MaxScreenRows))
		cols = min(cols, MaxScreenCols)
		rows = min(rows, MaxScreenRows)
	}

	d := &Display{
		dev:    dev,
		log:    logger,
		now:    now,
		mode:   cfg.Mode,
		scroll: cfg.ScrollTime,
		cols:   cols,
		rows:   rows,
	}
	d.cycle.reset()
	return d, nil
}

// Size returns the physical screen geometry in characters.
func (d *Display) Size() (cols, rows int) {
	return d.cols, d.rows
}

// Mode returns the scroll mode in use.
func (d *Display) Mode() ScrollMode {
	return d.mode
}

// Begin initializes the device and clears the screen and all rows.
func (d *Display) Begin() error {
	if err := d.dev.Begin(); err != nil {
		return errors.New("display: begin: " + err.Error())
	}
	d.Clear()
	return nil
}

// Clear empties every row, clears the physical screen and restarts
// scrolling from row 0. The next Loop starts a cycle immediately.
func (d *Display) Clear() {
	d.deviceErr("clear", d.dev.Clear())
	for row := range d.buf {
		d.buf[row][0] = 0
	}
	d.cycle.reset()
}

// deviceErr logs a failed device operation. Failures are never fatal; the
// next cycle repaints the screen.
func (d *Display) deviceErr(op string, err error) {
	if err != nil {
		d.log.Warn("display:device", slog.String("op", op), slog.Any("reason", err))
	}
}
