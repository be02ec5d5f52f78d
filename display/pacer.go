package display

import "time"

// Pacer spaces out device operations. A Device whose bus transfers block
// (I2C on TinyGo) uses a Pacer to report itself busy for Delay after
// each operation, so that a Display spreads its work across loop
// iterations instead of saturating the bus.
type Pacer struct {
	// Delay is the minimum time between operations. Zero disables pacing.
	Delay time.Duration
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	last time.Time
}

// Busy reports whether Delay has not yet elapsed since the last Mark.
func (p *Pacer) Busy() bool {
	if p.Delay <= 0 || p.last.IsZero() {
		return false
	}
	return p.now().Sub(p.last) < p.Delay
}

// Mark records that an operation was just issued.
func (p *Pacer) Mark() {
	if p.Delay > 0 {
		p.last = p.now()
	}
}

func (p *Pacer) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}
