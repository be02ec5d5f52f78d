package main

import (
	"machine"
	"strconv"
	"time"

	"github.com/harveysanders/picoscroll/display"
	"github.com/harveysanders/picoscroll/display/charlcd"
	"github.com/harveysanders/picoscroll/display/oled"
	"tinygo.org/x/drivers/ssd1306"
)

const (
	lcdDisplay  = 0
	oledDisplay = 1
)

func main() {
	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GP4,
		SCL:       machine.GP5,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		for {
			println("could not configure I2C", err)
			time.Sleep(time.Second)
		}
	}

	var displays display.Registry

	// 16x2 character LCD, flipping between pages of rows.
	panel, err := charlcd.Probe(machine.I2C0, charlcd.Config{
		Width:   16,
		Height:  2,
		OpDelay: charlcd.DefaultOpDelay,
	})
	if err != nil {
		println(err.Error())
	} else {
		addDisplay(&displays, lcdDisplay, panel, display.ScrollPage)
	}

	// 128x64 SSD1306 on the same bus, 21x6 characters, one row at a time.
	dev := ssd1306.NewI2C(machine.I2C0)
	dev.Configure(ssd1306.Config{
		Address: 0x3C,
		Width:   128,
		Height:  64,
	})
	addDisplay(&displays, oledDisplay, oled.New(dev, oled.Config{}), display.ScrollRow)

	displays.Refresh()
	for {
		displays.Loop()
		time.Sleep(100 * time.Microsecond)
	}
}

// addDisplay registers a display on slot n and fills it with board info.
func addDisplay(displays *display.Registry, n int, dev display.Device, mode display.ScrollMode) {
	cfg := display.DefaultConfig()
	cfg.Mode = mode
	d, err := display.New(dev, cfg)
	if err != nil {
		println("display", n, err.Error())
		return
	}
	if err := d.Begin(); err != nil {
		println("display", n, err.Error())
		return
	}
	displays.Add(n, d)

	cols, rows := d.Size()
	buf := make([]byte, 0, display.MaxCharacterCols)
	d.Print(0, []byte("Hello from TinyGo"))
	d.Print(1, append(append(buf[:0], "Display #"...), byte('0'+n)))
	d.Print(2, append(strconv.AppendInt(append(buf[:0], "Size "...), int64(cols), 10), 'x', byte('0'+rows)))
	d.Print(3, append(buf[:0], "Mode "+mode.String()...))
	d.Print(4, []byte("CPU "+strconv.FormatUint(uint64(machine.CPUFrequency()/1000000), 10)+"MHz"))
	d.Print(6, []byte("Row 6 after a gap"))
	d.Print(7, []byte("Last row"))
}
