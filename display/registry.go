package display

import (
	"errors"
	"strconv"
)

// MaxDisplays is the number of displays a Registry can hold.
const MaxDisplays = 4

// Registry holds displays by number so that firmware with more than one
// screen can service them all from a single loop.
type Registry struct {
	displays [MaxDisplays]*Display
}

// Add registers d as display number n, replacing any previous one.
func (r *Registry) Add(n int, d *Display) error {
	if n < 0 || n >= MaxDisplays {
		return errors.New("display: registry slot " + strconv.Itoa(n) + " out of range")
	}
	r.displays[n] = d
	return nil
}

// Get returns display number n, or nil if none is registered.
func (r *Registry) Get(n int) *Display {
	if n < 0 || n >= MaxDisplays {
		return nil
	}
	return r.displays[n]
}

// Loop calls Loop on every registered display.
func (r *Registry) Loop() {
	for _, d := range r.displays {
		if d != nil {
			d.Loop()
		}
	}
}

// Refresh calls Refresh on every registered display.
func (r *Registry) Refresh() {
	for _, d := range r.displays {
		if d != nil {
			d.Refresh()
		}
	}
}
