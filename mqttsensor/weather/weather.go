// Package weather provides temperature and humidity sensing using the DHT11
// sensor, and formats readings for the status display.
package weather

import (
	"machine"
	"strconv"
	"time"

	"tinygo.org/x/drivers/dht"
)

// minReadInterval is the DHT11's minimum time between samples.
const minReadInterval = 2 * time.Second

// Reading is one temperature and humidity measurement.
type Reading struct {
	Temperature float32
	Humidity    float32
	Cached      bool // returned from the cache rather than the sensor
}

// Sensor wraps a DHT11 with throttling and caching so it can be polled
// from the main loop as often as convenient.
type Sensor struct {
	dev       dht.Device
	tempScale dht.TemperatureScale
	now       func() time.Time

	cache    Reading
	lastRead time.Time
	valid    bool
}

func New(pin machine.Pin, scale dht.TemperatureScale) *Sensor {
	return &Sensor{
		dev:       dht.New(pin, dht.DHT11),
		tempScale: scale,
		now:       time.Now,
	}
}

// Due reports whether Read would query the sensor rather than the cache.
func (s *Sensor) Due() bool {
	return !s.valid || s.now().Sub(s.lastRead) >= minReadInterval
}

// Read returns the latest measurement. The sensor is only queried when
// minReadInterval has passed since the last successful read. On error the
// cached reading, if any, is returned alongside the error.
func (s *Sensor) Read() (Reading, error) {
	if !s.Due() {
		r := s.cache
		r.Cached = true
		return r, nil
	}

	if err := s.dev.ReadMeasurements(); err != nil {
		return s.stale(), err
	}
	temp, err := s.dev.TemperatureFloat(s.tempScale)
	if err != nil {
		return s.stale(), err
	}
	hum, err := s.dev.HumidityFloat()
	if err != nil {
		return s.stale(), err
	}

	s.cache = Reading{Temperature: temp, Humidity: hum}
	s.lastRead = s.now()
	s.valid = true
	return s.cache, nil
}

func (s *Sensor) stale() Reading {
	if !s.valid {
		return Reading{}
	}
	r := s.cache
	r.Cached = true
	return r
}

// AppendTemperature appends a display row such as "Temp: 21.5C" to dst.
func (r Reading) AppendTemperature(dst []byte, scale dht.TemperatureScale) []byte {
	dst = append(dst, "Temp: "...)
	dst = strconv.AppendFloat(dst, float64(r.Temperature), 'f', 1, 32)
	if scale == dht.F {
		return append(dst, 'F')
	}
	return append(dst, 'C')
}

// AppendHumidity appends a display row such as "Humidity: 40%" to dst.
func (r Reading) AppendHumidity(dst []byte) []byte {
	dst = append(dst, "Humidity: "...)
	dst = strconv.AppendFloat(dst, float64(r.Humidity), 'f', 0, 32)
	return append(dst, '%')
}
