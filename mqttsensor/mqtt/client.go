// Package mqtt publishes sensor readings to an MQTT broker and accepts
// remote text for the status display.
//
// Messages published to display/row/<n> replace logical row n of the
// display, so a broker-side script can put arbitrary status lines on the
// device's screen.
package mqtt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"runtime"
	"strconv"
	"time"

	"github.com/harveysanders/picoscroll/display"
	"github.com/harveysanders/picoscroll/mqttsensor/cyw43439"
	"github.com/harveysanders/picoscroll/mqttsensor/lcd"
	"github.com/soypat/lneto/tcp"
	mqtt "github.com/soypat/natiu-mqtt"
)

// RowTopicPrefix is the topic prefix for remote display rows.
const RowTopicPrefix = "display/row/"

var (
	pubFlags, _ = mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	pubVar      = mqtt.VariablesPublish{
		TopicName:        []byte("sensors/pico"),
		PacketIdentifier: 0xc0fe,
	}
	subVar = mqtt.VariablesSubscribe{
		PacketIdentifier: 0xd15,
		TopicFilters: []mqtt.SubscribeRequest{
			{TopicFilter: []byte(RowTopicPrefix + "+"), QoS: mqtt.QoS0},
		},
	}
)

type SensorReading struct {
	Voltage     float32
	RawUInt16   uint16        // Raw ADC value
	Temperature float32       // Temperature from DHT11
	Humidity    float32       // Relative humidity percentage from DHT11
	SinceBootNS time.Duration // Nanoseconds since boot.
}

type Client struct {
	ID                string
	Timeout           time.Duration
	TCPBufSize        int
	Logger            *slog.Logger
	HeartbeatInterval time.Duration
	Username          string // MQTT broker username (optional)
	Password          string // MQTT broker password (optional, requires Username)

	rowBuf [display.MaxCharacterCols]byte
}

// ConnectAndPublish connects to the MQTT broker, publishes sensor readings
// and forwards remote row text to the display. Connection progress is
// shown on the MQTT rows. It only returns on a configuration error.
func (c *Client) ConnectAndPublish(
	stack *cyw43439.Stack,
	addr string,
	readings <-chan SensorReading,
	status chan<- lcd.Message,
) error {
	const pollTime = 5 * time.Millisecond

	c.Logger.Info("MQTT address: " + addr)

	mqttHost, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.New("parsing host:port from " + addr + ": " + err.Error())
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return errors.New("parsing port from " + addr + ": " + err.Error())
	}

	lnetoStack := stack.LnetoStack()
	rstack := lnetoStack.StackRetrying(pollTime)

	var mqttAddr netip.Addr
	if parsedAddr, err := netip.ParseAddr(mqttHost); err == nil {
		mqttAddr = parsedAddr
	} else {
		c.Logger.Info("dns:resolving " + mqttHost)
		lcd.Send(status, lcd.RowMQTTDetail, "DNS "+mqttHost)
		addrs, err := rstack.DoLookupIP(mqttHost, 5*time.Second, 3)
		if err != nil {
			return errors.New("dns lookup for " + mqttHost + ": " + err.Error())
		}
		if len(addrs) == 0 {
			return errors.New("dns lookup for " + mqttHost + ": no addresses returned")
		}
		mqttAddr = addrs[0]
	}
	c.Logger.Info("resolved IP: " + mqttAddr.String())

	cfg := mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 4096)},
		OnPub: func(pubHead mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
			return c.onRow(varPub.TopicName, r, status)
		},
	}
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(c.ID))
	if c.Username != "" {
		varconn.Username = []byte(c.Username)
		if c.Password != "" {
			varconn.Password = []byte(c.Password)
		}
	}

	mqttClient := mqtt.NewClient(cfg)

	var conn tcp.Conn
	err = conn.Configure(tcp.ConnConfig{
		RxBuf:             make([]byte, c.TCPBufSize),
		TxBuf:             make([]byte, c.TCPBufSize),
		TxPacketQueueSize: 3,
	})
	if err != nil {
		return errors.New("tcp configure:" + err.Error())
	}

	closeConn := func(reason string) {
		c.Logger.Error("tcpconn:closing", slog.String("reason", reason))
		conn.Close()
		for i := 0; i < 50 && !conn.State().IsClosed(); i++ {
			time.Sleep(100 * time.Millisecond)
		}
		conn.Abort()
	}

	serverAddr := netip.AddrPortFrom(mqttAddr, uint16(port))

	heartbeat := time.NewTicker(c.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		localPort := uint16(lnetoStack.Prand32()>>17) + 1024
		c.Logger.Info("socket:dialing", slog.Uint64("localPort", uint64(localPort)))
		lcd.Send(status, lcd.RowMQTT, "MQTT connecting")
		lcd.Send(status, lcd.RowMQTTDetail, addr)

		err = rstack.DoDialTCP(&conn, localPort, serverAddr, 10*time.Second, 3)
		if err != nil {
			c.Logger.Error("socket:dial-failed", slog.String("err", err.Error()))
			lcd.Send(status, lcd.RowMQTTDetail, "TCP dial failed")
			closeConn("dial failed: " + err.Error())
			time.Sleep(2 * time.Second)
			continue
		}
		c.Logger.Info("tcp:connected", slog.String("state", conn.State().String()))

		lcd.Send(status, lcd.RowMQTTDetail, "Authenticating")
		conn.SetDeadline(time.Now().Add(c.Timeout))
		err = mqttClient.StartConnect(&conn, &varconn)
		if err != nil {
			c.Logger.Error("mqtt:start-connect-failed", slog.String("reason", err.Error()))
			lcd.Send(status, lcd.RowMQTTDetail, err.Error())
			closeConn("connect failed")
			continue
		}
		retries := 50
		for retries > 0 && !mqttClient.IsConnected() {
			time.Sleep(100 * time.Millisecond)
			if err := mqttClient.HandleNext(); err != nil {
				c.Logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
			}
			retries--
		}
		if !mqttClient.IsConnected() {
			c.Logger.Error("mqtt:connect-failed", slog.Any("reason", mqttClient.Err()))
			lcd.Send(status, lcd.RowMQTTDetail, "Timed out")
			closeConn("connect timed out")
			continue
		}

		if err := mqttClient.StartSubscribe(subVar); err != nil {
			// Publishing still works without remote rows.
			c.Logger.Error("mqtt:subscribe-failed", slog.String("reason", err.Error()))
		}
		lcd.Send(status, lcd.RowMQTT, "MQTT connected")
		lcd.Send(status, lcd.RowMQTTDetail, "Publishing")

		published := 0
		for mqttClient.IsConnected() {
			select {
			case reading := <-readings:
				payload, err := json.Marshal(reading)
				if err != nil {
					c.Logger.Error("mqtt:marshal-failed", slog.Any("reason", err))
					continue
				}
				conn.SetDeadline(time.Now().Add(c.Timeout))
				pubVar.PacketIdentifier = uint16(lnetoStack.Prand32())
				if err := mqttClient.PublishPayload(pubFlags, pubVar, payload); err != nil {
					c.Logger.Error("mqtt:publish-failed", slog.Any("reason", err))
					continue
				}
				published++
				c.Logger.Info("published message",
					slog.Uint64("packetID", uint64(pubVar.PacketIdentifier)),
				)
				lcd.Send(status, lcd.RowMQTTDetail, "Sent "+strconv.Itoa(published))
				if err := mqttClient.HandleNext(); err != nil {
					c.Logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
				}
			case <-heartbeat.C:
				// Keeps the connection alive and picks up remote row text.
				if err := mqttClient.HandleNext(); err != nil {
					c.Logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
				}
			default:
				// TinyGo runs on a single core; let the display loop run.
				// https://tinygo.org/docs/guides/tips-n-tricks/
				runtime.Gosched()
			}
		}

		c.Logger.Error("mqtt:disconnected", slog.Any("reason", mqttClient.Err()))
		lcd.Send(status, lcd.RowMQTT, "MQTT disconnected")
		lcd.Send(status, lcd.RowMQTTDetail, "Reconnecting...")
		closeConn("disconnected")
		runtime.Gosched()
	}
}

// onRow forwards a display/row/<n> publication to the display. Text
// beyond the row capacity is discarded.
func (c *Client) onRow(topic []byte, r io.Reader, status chan<- lcd.Message) error {
	row, ok := lcd.RowFromTopic(RowTopicPrefix, topic)
	if !ok {
		c.Logger.Info("received message", slog.String("topic", string(topic)))
		_, err := io.Copy(io.Discard, r)
		return err
	}
	n, err := io.ReadFull(r, c.rowBuf[:])
	if err == nil {
		_, err = io.Copy(io.Discard, r)
	} else if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		return err
	}
	c.Logger.Info("remote row", slog.Int("row", row), slog.Int("len", n))
	lcd.Send(status, row, string(c.rowBuf[:n]))
	return nil
}
