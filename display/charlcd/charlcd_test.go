package charlcd

import (
	"errors"
	"testing"
)

// fakeBus acknowledges writes only to the addresses in present.
type fakeBus struct {
	present map[uint16]bool
	tried   []uint16
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	b.tried = append(b.tried, addr)
	if !b.present[addr] {
		return errors.New("nack")
	}
	return nil
}

func (b *fakeBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{r}, buf)
}

func (b *fakeBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}

func TestFormatAddrs(t *testing.T) {
	tests := []struct {
		addrs []uint8
		want  string
	}{
		{nil, ""},
		{[]uint8{0x27}, "0x27"},
		{CommonAddrs, "0x27, 0x3f"},
	}
	for _, tt := range tests {
		if got := formatAddrs(tt.addrs); got != tt.want {
			t.Errorf("formatAddrs(%v) = %q, want %q", tt.addrs, got, tt.want)
		}
	}
}

func TestProbeNotFound(t *testing.T) {
	bus := &fakeBus{}
	_, err := Probe(bus, Config{Width: 16, Height: 2})
	if err == nil {
		t.Fatal("Probe() error = nil, want error")
	}
	if want := "charlcd: LCD not found on addresses: 0x27, 0x3f"; err.Error() != want {
		t.Errorf("Probe() error = %q, want %q", err, want)
	}
	if len(bus.tried) != 2 || bus.tried[0] != 0x27 || bus.tried[1] != 0x3F {
		t.Errorf("tried = %v, want [0x27 0x3f]", bus.tried)
	}
}

func TestProbeZeroGeometry(t *testing.T) {
	if _, err := Probe(&fakeBus{}, Config{}); err == nil {
		t.Error("Probe() error = nil, want error")
	}
}
