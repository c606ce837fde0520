// Package plant reads live telemetry from the site's hybrid inverter plant
// controller over Modbus TCP. Only the running-info input registers are
// read; the dashboard never writes to the plant.
package plant

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

const (
	// Address is the Modbus unit id of the plant controller
	Address = 247

	runningInfoStart = 30000
	runningInfoCount = 52
	essInfoStart     = 30083
	essInfoCount     = 5
)

// RegisterReader is the subset of modbus.Client used by the reader
type RegisterReader interface {
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

// Reading is a decoded snapshot of the plant running information
type Reading struct {
	PhotovoltaicPower float64   `json:"photovoltaicPower"` // kW
	PlantActivePower  float64   `json:"plantActivePower"`  // kW
	GridPower         float64   `json:"gridPower"`         // kW, >0 import
	ESSSOC            float64   `json:"essSoc"`            // %
	ESSPower          float64   `json:"essPower"`          // kW, <0 discharging
	ESSCapacity       float64   `json:"essCapacity,omitempty"`
	RunningState      uint16    `json:"runningState"`
	OnGrid            bool      `json:"onGrid"`
	ReadAt            time.Time `json:"readAt"`
}

// ESSStatus describes the battery power direction
func (r Reading) ESSStatus() string {
	switch {
	case r.ESSPower < -0.01:
		return "discharging"
	case r.ESSPower > 0.01:
		return "charging"
	}
	return "idle"
}

// Read decodes the running info block. The ESS capacity block is optional
// and its failure is ignored.
func Read(r RegisterReader, now time.Time) (*Reading, error) {
	data, err := r.ReadInputRegisters(runningInfoStart, runningInfoCount)
	if err != nil {
		return nil, fmt.Errorf("failed to read plant running info: %w", err)
	}
	if len(data) < runningInfoCount*2 {
		return nil, fmt.Errorf("short plant running info: got %d bytes, want %d", len(data), runningInfoCount*2)
	}

	reading := &Reading{
		GridPower:         kilo(s32(data[10:14])),
		ESSSOC:            float64(binary.BigEndian.Uint16(data[28:30])) / 10.0,
		PlantActivePower:  kilo(s32(data[62:66])),
		PhotovoltaicPower: kilo(s32(data[70:74])),
		ESSPower:          kilo(s32(data[74:78])),
		RunningState:      binary.BigEndian.Uint16(data[102:104]),
		OnGrid:            binary.BigEndian.Uint16(data[18:20]) == 0,
		ReadAt:            now,
	}

	if ess, err := r.ReadInputRegisters(essInfoStart, essInfoCount); err == nil && len(ess) >= 4 {
		reading.ESSCapacity = float64(binary.BigEndian.Uint32(ess[0:4])) / 100.0
	}

	return reading, nil
}

func s32(b []byte) int32 {
	return int32(binary.BigEndian.Uint32(b))
}

func kilo(v int32) float64 {
	return float64(v) / 1000.0
}

// Client is a Modbus TCP connection to the plant controller
type Client struct {
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// Dial connects to address (host:port) with the given timeout
func Dial(address string, timeout time.Duration) (*Client, error) {
	handler := modbus.NewTCPClientHandler(address)
	handler.SlaveId = Address
	handler.Timeout = timeout

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to plant at %s: %w", address, err)
	}

	return &Client{
		handler: handler,
		client:  modbus.NewClient(handler),
	}, nil
}

// Read reads the current plant state
func (c *Client) Read() (*Reading, error) {
	return Read(c.client, time.Now())
}

// Close closes the Modbus connection
func (c *Client) Close() error {
	return c.handler.Close()
}

// ReadOnce dials, reads and closes
func ReadOnce(address string, timeout time.Duration) (*Reading, error) {
	c, err := Dial(address, timeout)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Read()
}
