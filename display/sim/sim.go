// Package sim emulates a character LCD in a terminal using tcell, so that
// display code can be exercised on a workstation.
//
// The emulated panel is drawn inside a bezel at a fixed offset. Each
// operation is shown immediately, and the device reports busy for a
// configurable time afterwards to mimic a slow bus.
package sim

import (
	"github.com/gdamore/tcell/v2"
	"github.com/harveysanders/picoscroll/display"
)

// Config configures the emulated panel.
type Config struct {
	Cols, Rows int
	// X and Y are the terminal coordinates of the bezel's top left corner.
	X, Y int
	// Pacer controls the emulated bus speed.
	Pacer display.Pacer
}

var (
	panelStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
	bezelStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Screen is a display.Device drawing on a tcell.Screen.
type Screen struct {
	screen tcell.Screen
	cols   int
	rows   int
	x0, y0 int // top left character cell of the panel
	row    int
	col    int
	pacer  display.Pacer
}

// New returns an emulated panel on screen. The screen must already be
// initialized.
func New(screen tcell.Screen, cfg Config) *Screen {
	return &Screen{
		screen: screen,
		cols:   cfg.Cols,
		rows:   cfg.Rows,
		x0:     cfg.X + 1,
		y0:     cfg.Y + 1,
		pacer:  cfg.Pacer,
	}
}

func (s *Screen) Size() (cols, rows int) { return s.cols, s.rows }

// Begin draws the bezel and a blank panel.
func (s *Screen) Begin() error {
	left, top := s.x0-1, s.y0-1
	right, bottom := s.x0+s.cols, s.y0+s.rows
	for x := left + 1; x < right; x++ {
		s.screen.SetContent(x, top, tcell.RuneHLine, nil, bezelStyle)
		s.screen.SetContent(x, bottom, tcell.RuneHLine, nil, bezelStyle)
	}
	for y := top + 1; y < bottom; y++ {
		s.screen.SetContent(left, y, tcell.RuneVLine, nil, bezelStyle)
		s.screen.SetContent(right, y, tcell.RuneVLine, nil, bezelStyle)
	}
	s.screen.SetContent(left, top, tcell.RuneULCorner, nil, bezelStyle)
	s.screen.SetContent(right, top, tcell.RuneURCorner, nil, bezelStyle)
	s.screen.SetContent(left, bottom, tcell.RuneLLCorner, nil, bezelStyle)
	s.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, bezelStyle)
	return s.Clear()
}

func (s *Screen) Clear() error {
	for y := 0; y < s.rows; y++ {
		for x := 0; x < s.cols; x++ {
			s.screen.SetContent(s.x0+x, s.y0+y, ' ', nil, panelStyle)
		}
	}
	s.row, s.col = 0, 0
	s.screen.Show()
	s.pacer.Mark()
	return nil
}

func (s *Screen) Busy() bool { return s.pacer.Busy() }

func (s *Screen) SetRow(slot int) error {
	if slot < 0 || slot >= s.rows {
		return display.ErrOutOfRange
	}
	s.row, s.col = slot, 0
	s.pacer.Mark()
	return nil
}

func (s *Screen) WriteChar(c byte) error {
	if s.col < s.cols {
		s.screen.SetContent(s.x0+s.col, s.y0+s.row, rune(c), nil, panelStyle)
		s.screen.Show()
	}
	s.col++
	s.pacer.Mark()
	return nil
}

// Line returns the characters currently shown on panel line slot.
func (s *Screen) Line(slot int) string {
	b := make([]rune, 0, s.cols)
	for x := 0; x < s.cols; x++ {
		r, _, _, _ := s.screen.GetContent(s.x0+x, s.y0+slot)
		b = append(b, r)
	}
	return string(b)
}
