package main

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/harveysanders/picoscroll/display"
	"gopkg.in/yaml.v3"
)

// Config is the simulator configuration. It can be loaded from a YAML
// file and overridden by flags.
type Config struct {
	Cols       int           `yaml:"cols"`
	Rows       int           `yaml:"rows"`
	Mode       string        `yaml:"mode"`
	ScrollTime time.Duration `yaml:"scroll_time"`
	// OpDelay is the emulated bus time per device operation.
	OpDelay time.Duration `yaml:"op_delay"`
	// Tick is the main loop period.
	Tick time.Duration `yaml:"tick"`
	// ClockRow is a logical row updated every second with the uptime.
	// Negative disables it.
	ClockRow int      `yaml:"clock_row"`
	Lines    []string `yaml:"lines"`
}

func defaultConfig() Config {
	return Config{
		Cols:       16,
		Rows:       2,
		Mode:       display.ScrollRow.String(),
		ScrollTime: display.DefaultScrollTime,
		OpDelay:    time.Millisecond,
		Tick:       time.Millisecond,
		ClockRow:   -1,
	}
}

// loadConfig decodes YAML from r over cfg. Unknown keys are rejected.
func loadConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("config: " + err.Error())
	}
	return nil
}

func (c Config) validate() error {
	if c.Cols < 1 || c.Cols > display.MaxScreenCols {
		return errors.New("config: cols must be 1-" + strconv.Itoa(display.MaxScreenCols))
	}
	if c.Rows < 1 || c.Rows > display.MaxScreenRows {
		return errors.New("config: rows must be 1-" + strconv.Itoa(display.MaxScreenRows))
	}
	if _, err := display.ParseScrollMode(c.Mode); err != nil {
		return errors.New("config: " + err.Error())
	}
	if c.ScrollTime < 0 || c.OpDelay < 0 {
		return errors.New("config: durations must not be negative")
	}
	if c.Tick <= 0 {
		return errors.New("config: tick must be positive")
	}
	if c.ClockRow >= display.MaxCharacterRows {
		return errors.New("config: clock_row must be below " + strconv.Itoa(display.MaxCharacterRows))
	}
	if len(c.Lines) > display.MaxCharacterRows {
		return errors.New("config: at most " + strconv.Itoa(display.MaxCharacterRows) + " lines")
	}
	return nil
}
