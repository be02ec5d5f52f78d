// Package charlcd adapts an HD44780 character LCD behind a PCF8574 I2C
// backpack to the display.Device interface.
package charlcd

import (
	"errors"
	"time"

	"github.com/harveysanders/picoscroll/display"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"
)

// CommonAddrs are the usual PCF8574 (0x27) and PCF8574A (0x3F) addresses.
var CommonAddrs = []uint8{0x27, 0x3F}

// DefaultOpDelay is how long the device reports busy after each
// operation. At 100kHz one HD44780 write over the backpack takes about
// half a millisecond.
const DefaultOpDelay = time.Millisecond

// Config configures the LCD.
type Config struct {
	Width  uint8
	Height uint8
	// OpDelay is the busy time after each operation. Zero disables pacing.
	OpDelay time.Duration
	// Now is the clock used for pacing. Defaults to time.Now.
	Now func() time.Time
}

// Device is a display.Device backed by an HD44780 over I2C.
type Device struct {
	lcd   hd44780i2c.Device
	cols  int
	rows  int
	pacer display.Pacer
	buf   [1]byte
}

// Probe looks for an LCD backpack on each of addrs and configures the
// first that acknowledges. If addrs is empty, CommonAddrs is used.
func Probe(bus drivers.I2C, cfg Config, addrs ...uint8) (*Device, error) {
	if len(addrs) == 0 {
		addrs = CommonAddrs
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, errors.New("charlcd: zero geometry")
	}
	for _, a := range addrs {
		// A single byte write is acknowledged only by a device present on
		// the bus. All expander pins low is harmless before Configure.
		if err := bus.Tx(uint16(a), []byte{0}, nil); err != nil {
			continue
		}
		lcd := hd44780i2c.New(bus, a)
		lcd.Configure(hd44780i2c.Config{
			Width:  cfg.Width,
			Height: cfg.Height,
		})
		return New(lcd, cfg), nil
	}
	return nil, errors.New("charlcd: LCD not found on addresses: " + formatAddrs(addrs))
}

// New wraps an already configured LCD.
func New(lcd hd44780i2c.Device, cfg Config) *Device {
	return &Device{
		lcd:  lcd,
		cols: int(cfg.Width),
		rows: int(cfg.Height),
		pacer: display.Pacer{
			Delay: cfg.OpDelay,
			Now:   cfg.Now,
		},
	}
}

func (d *Device) Size() (cols, rows int) { return d.cols, d.rows }

func (d *Device) Begin() error {
	d.lcd.ClearDisplay()
	d.lcd.SetCursor(0, 0)
	d.pacer.Mark()
	return nil
}

func (d *Device) Clear() error {
	d.lcd.ClearDisplay()
	d.pacer.Mark()
	return nil
}

func (d *Device) Busy() bool { return d.pacer.Busy() }

func (d *Device) SetRow(slot int) error {
	if slot < 0 || slot >= d.rows {
		return display.ErrOutOfRange
	}
	d.lcd.SetCursor(0, uint8(slot))
	d.pacer.Mark()
	return nil
}

func (d *Device) WriteChar(c byte) error {
	d.buf[0] = c
	d.lcd.Print(d.buf[:])
	d.pacer.Mark()
	return nil
}

func formatAddrs(addrs []uint8) string {
	const hex = "0123456789abcdef"
	b := make([]byte, 0, len(addrs)*6)
	for i, a := range addrs {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '0', 'x', hex[a>>4], hex[a&0xf])
	}
	return string(b)
}
