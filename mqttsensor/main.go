package main

import (
	"log/slog"
	"machine"
	"runtime"
	"strconv"
	"time"

	"github.com/harveysanders/picoscroll/display"
	"github.com/harveysanders/picoscroll/display/charlcd"
	"github.com/harveysanders/picoscroll/mqttsensor/cyw43439"
	"github.com/harveysanders/picoscroll/mqttsensor/lcd"
	"github.com/harveysanders/picoscroll/mqttsensor/mqtt"
	"github.com/harveysanders/picoscroll/mqttsensor/weather"
	"tinygo.org/x/drivers/dht"
)

const (
	max16Bit uint16  = 65535 // Max ADC value. The Pico has an onboard 16-bit ADC.
	sysV     float32 = 3.3   // Logic level in volts. Pico runs at 3.3VDC.

	sampleInterval = 2 * time.Second
)

// Set via -ldflags "-X main.serverAddrStr=..."
var serverAddrStr = "10.0.0.9:1883"

func main() {
	start := time.Now()
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA: machine.GP4,
		SCL: machine.GP5,
	})
	if err != nil {
		printErrForever(logger, "configure I2C", slog.Any("reason", err))
	}
	panel, err := charlcd.Probe(machine.I2C0, charlcd.Config{
		Width:   16,
		Height:  2,
		OpDelay: charlcd.DefaultOpDelay,
	})
	if err != nil {
		printErrForever(logger, "configure LCD", slog.Any("reason", err))
	}
	disp, err := display.New(panel, display.Config{
		ScrollTime: display.DefaultScrollTime,
		Mode:       display.ScrollRow,
		Logger:     logger,
	})
	if err != nil {
		printErrForever(logger, "create display", slog.Any("reason", err))
	}
	disp.Begin()
	disp.Print(lcd.RowWiFi, []byte("Booting..."))
	disp.Refresh()

	// Row updates from the network goroutines. The main loop is the only
	// writer of the display rows.
	rowUpdates := make(chan lcd.Message, 16)
	rows := lcd.NewHandler(disp, rowUpdates, logger)

	// Buffered channel of 10 readings. We may need to adjust depending
	// on the sensor read frequency and network availability
	sensorReadings := make(chan mqtt.SensorReading, 10)
	go startNetwork(logger, rowUpdates, sensorReadings)

	debugLED := machine.GP21
	debugLED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	machine.InitADC()
	sensor := machine.ADC{Pin: machine.ADC0}
	sensor.Configure(machine.ADCConfig{})

	dht11 := weather.New(machine.GP15, dht.C)

	// Preallocated so the heap isn't exhausted by formatting.
	printBuf := make([]byte, 0, display.MaxCharacterCols)
	const floatNoExp = 'f'

	var lastSample time.Time
	for {
		rows.Drain()
		disp.Loop()
		// TinyGo schedules cooperatively; let the network goroutines run.
		runtime.Gosched()

		if time.Since(lastSample) < sampleInterval {
			continue
		}
		lastSample = time.Now()
		debugLED.Set(!debugLED.Get())

		val := sensor.Get()
		voltage := float32(val) / float32(max16Bit) * sysV
		printBuf = printBuf[:0]
		printBuf = append(printBuf, "V: "...)
		printBuf = strconv.AppendFloat(printBuf, float64(voltage), floatNoExp, 2, 32)
		printBuf = append(printBuf, " ("...)
		printBuf = strconv.AppendUint(printBuf, uint64(val), 10)
		printBuf = append(printBuf, ')')
		disp.Print(lcd.RowVoltage, printBuf)

		reading, err := dht11.Read()
		if err != nil {
			logger.Error("dht11:read", slog.Any("reason", err))
		}
		disp.Print(lcd.RowTemperature, reading.AppendTemperature(printBuf[:0], dht.C))
		disp.Print(lcd.RowHumidity, reading.AppendHumidity(printBuf[:0]))

		printBuf = printBuf[:0]
		printBuf = append(printBuf, "Up "...)
		printBuf = strconv.AppendInt(printBuf, int64(time.Since(start)/time.Second), 10)
		printBuf = append(printBuf, 's')
		disp.Print(lcd.RowUptime, printBuf)

		select {
		case sensorReadings <- mqtt.SensorReading{
			Voltage:     voltage,
			RawUInt16:   val,
			Temperature: reading.Temperature,
			Humidity:    reading.Humidity,
			SinceBootNS: time.Since(start),
		}:
		default:
			// Offline or broker slow; drop the reading.
		}
	}
}

// startNetwork joins WiFi, gets an address and runs the MQTT client. It
// reports progress on the display and never returns.
func startNetwork(logger *slog.Logger, rowUpdates chan<- lcd.Message, readings <-chan mqtt.SensorReading) {
	stack, err := cyw43439.Connect(cyw43439.SSID(), cyw43439.Password(), cyw43439.StackConfig{
		Hostname:    "tinygo-mqtt",
		MaxTCPPorts: 1,
		Logger:      logger,
		Status:      rowUpdates,
	})
	if err != nil {
		printErrForever(logger, "wifi connect", slog.Any("reason", err))
	}
	go stack.Poll()

	if _, err := stack.SetupWithDHCP(cyw43439.DHCPConfig{}); err != nil {
		printErrForever(logger, "dhcp", slog.Any("reason", err))
	}

	c := mqtt.Client{
		ID:                "tinygo-mqtt",
		Logger:            logger,
		Timeout:           5 * time.Second,
		TCPBufSize:        2030, // MTU - ethhdr - iphdr - tcphdr
		HeartbeatInterval: 30 * time.Second,
	}
	err = c.ConnectAndPublish(stack, serverAddrStr, readings, rowUpdates)
	if err != nil {
		// Print error in a loop in case the serial monitor is not
		// ready before the inital messages
		printErrForever(logger, "connect to MQTT broker", slog.Any("reason", err))
	}
}

// printErrForever prints an error to serial @ 1hz. It blocks forever.
func printErrForever(logger *slog.Logger, msg string, args ...any) {
	for {
		logger.Error(msg, args...)
		time.Sleep(time.Second)
	}
}
