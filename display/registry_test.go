package display_test

import (
	"testing"
	"time"

	"github.com/harveysanders/picoscroll/display"
	"github.com/harveysanders/picoscroll/display/displaytest"
)

func TestRegistry(t *testing.T) {
	var reg display.Registry
	lcd, lcdDev, _ := newTestDisplay(t, 16, 2, display.ScrollPage)
	oled, oledDev, _ := newTestDisplay(t, 21, 6, display.ScrollRow)

	if err := reg.Add(0, lcd); err != nil {
		t.Fatalf("Add(0) error = %v", err)
	}
	if err := reg.Add(2, oled); err != nil {
		t.Fatalf("Add(2) error = %v", err)
	}
	if err := reg.Add(display.MaxDisplays, lcd); err == nil {
		t.Error("Add(MaxDisplays) error = nil, want error")
	}
	if reg.Get(0) != lcd || reg.Get(2) != oled {
		t.Error("Get() returned the wrong display")
	}
	if reg.Get(1) != nil || reg.Get(-1) != nil {
		t.Error("Get() of empty slot should be nil")
	}

	reg.Get(0).Print(0, []byte("lcd"))
	reg.Get(2).Print(0, []byte("oled"))

	reg.Loop()
	if len(lcdDev.Ops()) != 1 || len(oledDev.Ops()) != 1 {
		t.Errorf("Loop() ops = %d, %d, want 1 each", len(lcdDev.Ops()), len(oledDev.Ops()))
	}

	reg.Refresh()
	if got := lcdDev.Line(0); got != "lcd" {
		t.Errorf("lcd Line(0) = %q", got)
	}
	if got := oledDev.Line(0); got != "oled" {
		t.Errorf("oled Line(0) = %q", got)
	}
}

func TestPacer(t *testing.T) {
	clock := displaytest.NewClock()
	p := display.Pacer{Delay: 2 * time.Millisecond, Now: clock.Now}

	if p.Busy() {
		t.Fatal("Busy() before any operation = true")
	}
	p.Mark()
	if !p.Busy() {
		t.Fatal("Busy() right after Mark = false")
	}
	clock.Advance(time.Millisecond)
	if !p.Busy() {
		t.Fatal("Busy() before delay = false")
	}
	clock.Advance(time.Millisecond)
	if p.Busy() {
		t.Fatal("Busy() after delay = true")
	}

	var unpaced display.Pacer
	unpaced.Mark()
	if unpaced.Busy() {
		t.Error("zero Delay reported busy")
	}
}
