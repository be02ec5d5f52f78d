// Command lcdsim runs the scrolling display renderer against an emulated
// character LCD in the terminal.
//
// Each positional argument becomes one logical row. With more rows than
// the emulated panel has lines, the renderer scrolls through them exactly
// as it does on hardware, one device operation per loop tick.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/harveysanders/picoscroll/display"
	"github.com/harveysanders/picoscroll/display/sim"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	config      Config
	logFile     string
	debug       bool
	showHelp    bool
	showVersion bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, fs, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if opts.showHelp {
		fmt.Fprintln(os.Stdout, "Usage: lcdsim [flags] [row text...]")
		fs.SetOutput(os.Stdout)
		fs.PrintDefaults()
		return 0
	}
	if opts.showVersion {
		fmt.Printf("lcdsim version %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	logger, closeLog, err := newLogger(opts.logFile, opts.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		return 1
	}
	defer closeLog()

	if err := simulate(opts.config, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseArgs builds the configuration from defaults, an optional YAML
// file and flags, in that order of precedence.
func parseArgs(args []string) (options, *pflag.FlagSet, error) {
	var (
		opts       options
		configPath string
		mode       string
		cols, rows int
		scrollTime time.Duration
		opDelay    time.Duration
		tick       time.Duration
		clockRow   int
	)
	def := defaultConfig()

	fs := pflag.NewFlagSet("lcdsim", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	fs.StringVarP(&mode, "mode", "m", def.Mode, "Scroll mode: continuous, page or row")
	fs.IntVar(&cols, "cols", def.Cols, "Panel width in characters")
	fs.IntVar(&rows, "rows", def.Rows, "Panel height in lines")
	fs.DurationVarP(&scrollTime, "scroll-time", "s", def.ScrollTime, "Minimum time between screen cycles")
	fs.DurationVar(&opDelay, "op-delay", def.OpDelay, "Emulated bus time per device operation")
	fs.DurationVar(&tick, "tick", def.Tick, "Main loop period")
	fs.IntVar(&clockRow, "clock-row", def.ClockRow, "Logical row showing the uptime (-1 disables)")
	fs.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	fs.BoolVar(&opts.debug, "debug", false, "Log cycle events")
	fs.BoolVarP(&opts.showHelp, "help", "h", false, "Show help message")
	fs.BoolVarP(&opts.showVersion, "version", "v", false, "Show version information")
	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}

	cfg := def
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return opts, fs, err
		}
		defer f.Close()
		if err := loadConfig(f, &cfg); err != nil {
			return opts, fs, err
		}
	}

	if fs.Changed("mode") {
		cfg.Mode = mode
	}
	if fs.Changed("cols") {
		cfg.Cols = cols
	}
	if fs.Changed("rows") {
		cfg.Rows = rows
	}
	if fs.Changed("scroll-time") {
		cfg.ScrollTime = scrollTime
	}
	if fs.Changed("op-delay") {
		cfg.OpDelay = opDelay
	}
	if fs.Changed("tick") {
		cfg.Tick = tick
	}
	if fs.Changed("clock-row") {
		cfg.ClockRow = clockRow
	}
	if fs.NArg() > 0 {
		cfg.Lines = fs.Args()
	}

	if err := cfg.validate(); err != nil {
		return opts, fs, err
	}
	opts.config = cfg
	return opts, fs, nil
}

func newLogger(path string, debug bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if path == "" {
		// The terminal belongs to tcell.
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

func simulate(cfg Config, logger *slog.Logger) error {
	mode, err := display.ParseScrollMode(cfg.Mode)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.New("create screen: " + err.Error())
	}
	if err := screen.Init(); err != nil {
		return errors.New("init screen: " + err.Error())
	}
	defer screen.Fini()
	screen.HideCursor()

	panel := sim.New(screen, sim.Config{
		Cols:  cfg.Cols,
		Rows:  cfg.Rows,
		X:     1,
		Y:     1,
		Pacer: display.Pacer{Delay: cfg.OpDelay},
	})
	d, err := display.New(panel, display.Config{
		ScrollTime: cfg.ScrollTime,
		Mode:       mode,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	if err := d.Begin(); err != nil {
		return err
	}
	for i, line := range cfg.Lines {
		if err := d.Print(i, []byte(line)); err != nil {
			logger.Warn("row truncated", slog.Int("row", i), slog.String("text", line))
		}
	}
	drawStatus(screen, 1, cfg.Rows+3, "mode: "+mode.String()+"  q/Esc to quit")

	start := time.Now()
	printBuf := make([]byte, 0, display.MaxCharacterCols)
	updateClock := func() {
		if cfg.ClockRow < 0 {
			return
		}
		printBuf = printBuf[:0]
		printBuf = append(printBuf, "Up "...)
		printBuf = strconv.AppendInt(printBuf, int64(time.Since(start)/time.Second), 10)
		printBuf = append(printBuf, 's')
		d.Print(cfg.ClockRow, printBuf)
	}
	updateClock()
	d.Refresh()
	logger.Info("lcdsim:started",
		slog.Int("cols", cfg.Cols), slog.Int("rows", cfg.Rows),
		slog.String("mode", mode.String()), slog.Int("lines", len(cfg.Lines)))

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()
	clock := time.NewTicker(time.Second)
	defer clock.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-clock.C:
			updateClock()
		case <-ticker.C:
			d.Loop()
		}
	}
}

func drawStatus(screen tcell.Screen, x, y int, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, tcell.StyleDefault)
	}
	screen.Show()
}
