// Package cyw43439 brings up WiFi on a Raspberry Pi Pico W and reports its
// progress on the status display.
//
// This package handles:
//   - Initializing the CYW43439 WiFi device
//   - Joining WPA2-secured or open WiFi networks
//   - DHCP configuration with fallback to a static IP
//   - Polling the network stack from a background goroutine
//
// Setup steps are mirrored to the WiFi and IP rows of the display through
// an lcd.Message channel, so the screen shows where a slow boot is stuck.
//
// Adapted from the examples in the soypat/cyw43439 repository:
// https://github.com/soypat/cyw43439/tree/main/examples/common
package cyw43439

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"runtime"
	"strconv"
	"time"

	"github.com/harveysanders/picoscroll/mqttsensor/lcd"
	"github.com/soypat/cyw43439"
	"github.com/soypat/lneto/x/xnet"
)

const mtu = cyw43439.MTU

var (
	ssid string
	pass string
)

// SSID returns the WiFi SSID set via linker flags.
func SSID() string { return ssid }

// Password returns the WiFi password set via linker flags.
func Password() string { return pass }

// StackConfig configures the WiFi device and lneto stack.
type StackConfig struct {
	// Hostname is used for DHCP requests.
	Hostname string
	// MaxTCPPorts is the number of TCP ports to open for the stack.
	MaxTCPPorts int
	// JoinAttempts bounds the WPA2 join retries. Zero retries forever.
	JoinAttempts int
	// Logger for stack operations.
	Logger *slog.Logger
	// Status receives display row updates. May be nil.
	Status chan<- lcd.Message
	// RandSeed is an optional random seed for the stack's PRNG.
	RandSeed int64
}

// DHCPConfig configures the DHCP request.
type DHCPConfig struct {
	// RequestedAddr is the preferred IP address to request via DHCP.
	// If DHCP fails and this is set, it will be used as a static IP.
	RequestedAddr netip.Addr
}

// Stack wraps the lneto StackAsync and CYW43439 device for network operations.
type Stack struct {
	s       xnet.StackAsync
	dev     *cyw43439.Device
	log     *slog.Logger
	status  chan<- lcd.Message
	sendbuf []byte
}

// Connect initializes the CYW43439, joins the network and prepares the
// stack. It blocks until joined or JoinAttempts is exhausted.
func Connect(ssid, pass string, cfg StackConfig) (*Stack, error) {
	if cfg.Hostname == "" {
		return nil, errors.New("empty hostname")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127), // Make temporary logger that does no logging.
		}))
	}
	stack := &Stack{
		log:     logger,
		status:  cfg.Status,
		sendbuf: make([]byte, mtu),
	}

	start := time.Now()
	dev := cyw43439.NewPicoWDevice()
	dev.SetLogger(logger)
	stack.dev = dev

	stack.show(lcd.RowWiFi, "WiFi init...")
	if err := dev.Init(cyw43439.DefaultWifiConfig()); err != nil {
		stack.show(lcd.RowWiFi, "WiFi init failed")
		return nil, errors.New("wifi init failed:" + err.Error())
	}
	logger.Info("cyw43439:Init", slog.Duration("duration", time.Since(start)))

	stack.show(lcd.RowWiFi, "Join "+ssid)
	var err error
	for attempt := 1; ; attempt++ {
		err = dev.JoinWPA2(ssid, pass)
		if err == nil {
			break
		}
		logger.Error("wifi join failed",
			slog.String("ssid", ssid),
			slog.Int("attempt", attempt),
			slog.String("err", err.Error()),
		)
		if cfg.JoinAttempts > 0 && attempt >= cfg.JoinAttempts {
			stack.show(lcd.RowWiFi, "WiFi join failed")
			return nil, errors.New("wifi join:" + err.Error())
		}
		stack.show(lcd.RowWiFi, "Join retry "+strconv.Itoa(attempt))
		time.Sleep(5 * time.Second)
	}

	mac, err := dev.HardwareAddr6()
	if err != nil {
		return nil, errors.New("get hardware address:" + err.Error())
	}
	logger.Info("wifi join success!", slog.String("mac", net.HardwareAddr(mac[:]).String()))
	stack.show(lcd.RowWiFi, "WiFi "+ssid)

	maxTCP := max(cfg.MaxTCPPorts, 1)
	err = stack.s.Reset(xnet.StackConfig{
		Hostname:        cfg.Hostname,
		MaxTCPConns:     maxTCP,
		RandSeed:        time.Since(start).Nanoseconds() ^ cfg.RandSeed,
		HardwareAddress: mac,
		MTU:             mtu,
	})
	if err != nil {
		return nil, errors.New("stack reset:" + err.Error())
	}

	dev.RecvEthHandle(func(pkt []byte) error {
		return stack.s.Demux(pkt, 0)
	})
	return stack, nil
}

// SetupWithDHCP performs DHCP configuration and returns the results.
func (s *Stack) SetupWithDHCP(cfg DHCPConfig) (*xnet.DHCPResults, error) {
	if !cfg.RequestedAddr.IsValid() {
		cfg.RequestedAddr = netip.AddrFrom4([4]byte{})
	} else if !cfg.RequestedAddr.Is4() {
		return nil, errors.New("only dhcpv4 supported")
	}

	const pollTime = 50 * time.Millisecond
	rstack := s.s.StackRetrying(pollTime)

	s.log.Info("DHCP:starting")
	s.show(lcd.RowIP, "DHCP...")

	results, err := rstack.DoDHCPv4(cfg.RequestedAddr.As4(), 3*time.Second, 3)
	if err != nil {
		if cfg.RequestedAddr.IsUnspecified() {
			s.show(lcd.RowIP, "DHCP failed")
			return nil, errors.New("dhcp failed:" + err.Error())
		}
		s.log.Info("DHCP did not complete, assigning static IP", slog.String("ip", cfg.RequestedAddr.String()))
		s.s.SetIPAddr(cfg.RequestedAddr)
		s.show(lcd.RowIP, "IP "+cfg.RequestedAddr.String()+"*")
		return &xnet.DHCPResults{AssignedAddr: cfg.RequestedAddr}, nil
	}

	if err := s.s.AssimilateDHCPResults(results); err != nil {
		return nil, errors.New("assimilate dhcp:" + err.Error())
	}

	gatewayHW, err := rstack.DoResolveHardwareAddress6(results.Router, 500*time.Millisecond, 4)
	if err != nil {
		return nil, errors.New("resolve gateway:" + err.Error())
	}
	s.s.SetGateway6(gatewayHW)

	s.log.Info("DHCP complete",
		slog.String("ourIP", results.AssignedAddr.String()),
		slog.String("router", results.Router.String()),
		slog.Uint64("lease_sec", uint64(results.TLease)),
	)
	s.show(lcd.RowIP, "IP "+results.AssignedAddr.String())
	return results, nil
}

// RecvAndSend processes one incoming packet and one outgoing packet.
func (s *Stack) RecvAndSend() (send, recv int, err error) {
	gotPacket, errRecv := s.dev.PollOne()
	if gotPacket {
		recv = 1
	}
	if errRecv != nil {
		s.log.Error("RecvAndSend:PollOne", slog.String("err", errRecv.Error()))
	}

	send, err = s.s.Encapsulate(s.sendbuf, -1, 0)
	if err != nil {
		s.log.Error("RecvAndSend:Encapsulate", slog.Int("plen", send), slog.String("err", err.Error()))
		return send, recv, err
	}
	if send == 0 {
		return send, recv, errRecv
	}

	err = s.dev.SendEth(s.sendbuf[:send])
	if err != nil {
		s.log.Error("RecvAndSend:SendEth", slog.Int("plen", send), slog.String("err", err.Error()))
	}
	return send, recv, err
}

// Poll runs RecvAndSend forever, yielding between idle iterations. It
// should be started in its own goroutine.
func (s *Stack) Poll() {
	for {
		send, recv, _ := s.RecvAndSend()
		if send == 0 && recv == 0 {
			// TinyGo runs goroutines on one core; let the main loop run.
			runtime.Gosched()
		}
	}
}

// LnetoStack returns the underlying lneto StackAsync for TCP connections
// and DNS lookups.
func (s *Stack) LnetoStack() *xnet.StackAsync {
	return &s.s
}

// Addr returns the current IP address of the stack.
func (s *Stack) Addr() netip.Addr {
	return s.s.Addr()
}

func (s *Stack) show(row int, text string) {
	if s.status != nil {
		lcd.Send(s.status, row, text)
	}
}
