package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		check   func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{
			name:  "empty keeps defaults",
			input: "",
			check: func(t *testing.T, cfg Config) {
				if cfg.Cols != 16 || cfg.Rows != 2 || cfg.Mode != "row" || cfg.ClockRow != -1 {
					t.Errorf("cfg = %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "full file",
			input: `
cols: 20
rows: 4
mode: page
scroll_time: 1500ms
op_delay: 2ms
tick: 5ms
clock_row: 7
lines:
  - "DCC-EX"
  - "Free RAM 1234"
`,
			check: func(t *testing.T, cfg Config) {
				if cfg.Cols != 20 || cfg.Rows != 4 || cfg.Mode != "page" {
					t.Errorf("geometry/mode = %dx%d %s", cfg.Cols, cfg.Rows, cfg.Mode)
				}
				if cfg.ScrollTime != 1500*time.Millisecond || cfg.OpDelay != 2*time.Millisecond || cfg.Tick != 5*time.Millisecond {
					t.Errorf("durations = %v %v %v", cfg.ScrollTime, cfg.OpDelay, cfg.Tick)
				}
				if cfg.ClockRow != 7 {
					t.Errorf("ClockRow = %d, want 7", cfg.ClockRow)
				}
				if !slices.Equal(cfg.Lines, []string{"DCC-EX", "Free RAM 1234"}) {
					t.Errorf("Lines = %q", cfg.Lines)
				}
			},
		},
		{
			name:    "unknown key",
			input:   "colums: 20\n",
			wantErr: true,
		},
		{
			name:    "bad duration",
			input:   "scroll_time: soon\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			err := loadConfig(strings.NewReader(tt.input), &cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero cols", func(c *Config) { c.Cols = 0 }, false},
		{"too many rows", func(c *Config) { c.Rows = 9 }, false},
		{"bad mode", func(c *Config) { c.Mode = "sideways" }, false},
		{"numeric mode", func(c *Config) { c.Mode = "1" }, true},
		{"zero tick", func(c *Config) { c.Tick = 0 }, false},
		{"negative op delay", func(c *Config) { c.OpDelay = -time.Millisecond }, false},
		{"clock row out of range", func(c *Config) { c.ClockRow = 8 }, false},
		{"too many lines", func(c *Config) { c.Lines = make([]string, 9) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			if err := cfg.validate(); (err == nil) != tt.ok {
				t.Errorf("validate() error = %v, want ok %v", err, tt.ok)
			}
		})
	}
}

func TestParseArgsPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	content := "cols: 20\nrows: 4\nmode: page\nlines: [a, b]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, _, err := parseArgs([]string{"--config", path, "--mode", "continuous", "one", "two", "three"})
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}
	cfg := opts.config
	if cfg.Cols != 20 || cfg.Rows != 4 {
		t.Errorf("size = %dx%d, want 20x4 from file", cfg.Cols, cfg.Rows)
	}
	if cfg.Mode != "continuous" {
		t.Errorf("Mode = %q, want flag value", cfg.Mode)
	}
	if !slices.Equal(cfg.Lines, []string{"one", "two", "three"}) {
		t.Errorf("Lines = %q, want positional args", cfg.Lines)
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := [][]string{
		{"--rows", "0"},
		{"--mode", "diagonal"},
		{"--config", "/does/not/exist.yaml"},
		{"--no-such-flag"},
	}
	for _, args := range tests {
		if _, _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%q) error = nil, want error", args)
		}
	}
}
