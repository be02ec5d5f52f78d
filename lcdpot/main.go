package main

import (
	"machine"
	"strconv"
	"time"

	"github.com/harveysanders/picoscroll/display"
	"github.com/harveysanders/picoscroll/display/charlcd"
)

const (
	max16Bit uint16  = 65535
	sysV     float32 = 3.3

	sampleInterval = 250 * time.Millisecond
)

// Logical rows. More than the LCD can show at once; the display scrolls
// through them one row per cycle.
const (
	rowVoltage = iota
	rowPercent
	rowRaw
	rowMin
	rowMax
	rowAvg
	rowSamples
)

func main() {
	debugLED := machine.GP21
	debugLED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	machine.InitADC()
	sensor := machine.ADC{Pin: machine.ADC0}
	sensor.Configure(machine.ADCConfig{})

	// Setup LCD display
	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA: machine.GP4,
		SCL: machine.GP5,
	})
	if err != nil {
		for {
			println("could not configure I2C", err)
			time.Sleep(time.Second)
		}
	}

	panel, err := charlcd.Probe(machine.I2C0, charlcd.Config{
		Width:   16,
		Height:  2,
		OpDelay: charlcd.DefaultOpDelay,
	})
	if err != nil {
		for {
			println(err.Error())
			time.Sleep(time.Second)
		}
	}

	cfg := display.DefaultConfig()
	cfg.ScrollTime = 2 * time.Second
	d, err := display.New(panel, cfg)
	if err != nil {
		for {
			println(err.Error())
			time.Sleep(time.Second)
		}
	}
	d.Begin()
	d.Print(rowVoltage, []byte("Reading pot..."))
	d.Refresh()

	// We need a preallocated buffer so the heap isn't exhausted
	// by many calls to fmt functions.
	printBuf := make([]byte, 0, display.MaxCharacterCols)
	const floatNoExp = 'f'

	var (
		minVal, maxVal uint16 = max16Bit, 0
		sum            uint64
		samples        uint64
		lastSample     time.Time
	)
	for {
		// Cheap when there is nothing to do; one LCD operation otherwise.
		d.Loop()
		if time.Since(lastSample) < sampleInterval {
			continue
		}
		lastSample = time.Now()

		val := sensor.Get()
		percentage := float32(val) / float32(max16Bit)
		minVal = min(minVal, val)
		maxVal = max(maxVal, val)
		sum += uint64(val)
		samples++

		// reslice the buffer to zero-length so append continues to work
		printBuf = printBuf[:0]
		printBuf = append(printBuf, "V: "...)
		printBuf = strconv.AppendFloat(printBuf, float64(percentage*sysV), floatNoExp, 2, 32)
		d.Print(rowVoltage, printBuf)

		printBuf = append(printBuf[:0], "Pct: "...)
		printBuf = strconv.AppendFloat(printBuf, float64(percentage*100), floatNoExp, 1, 32)
		printBuf = append(printBuf, '%')
		d.Print(rowPercent, printBuf)

		d.Print(rowRaw, appendUint(printBuf[:0], "16-bit: ", uint64(val)))
		d.Print(rowMin, appendUint(printBuf[:0], "Min: ", uint64(minVal)))
		d.Print(rowMax, appendUint(printBuf[:0], "Max: ", uint64(maxVal)))
		d.Print(rowAvg, appendUint(printBuf[:0], "Avg: ", sum/samples))
		d.Print(rowSamples, appendUint(printBuf[:0], "Samples: ", samples))

		debugLED.Set(!debugLED.Get())
	}
}

func appendUint(dst []byte, label string, v uint64) []byte {
	dst = append(dst, label...)
	return strconv.AppendUint(dst, v, 10)
}
