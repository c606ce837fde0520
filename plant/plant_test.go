package plant

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

type fakeRegisters struct {
	blocks map[uint16][]byte
	err    map[uint16]error
	calls  []uint16
}

func (f *fakeRegisters) ReadInputRegisters(address, quantity uint16) ([]byte, error) {
	f.calls = append(f.calls, address)
	if err := f.err[address]; err != nil {
		return nil, err
	}
	return f.blocks[address], nil
}

func runningInfo() []byte {
	data := make([]byte, runningInfoCount*2)
	putS32 := func(off int, v int32) { binary.BigEndian.PutUint32(data[off:], uint32(v)) }

	putS32(10, -1500)
	binary.BigEndian.PutUint16(data[18:], 0)
	binary.BigEndian.PutUint16(data[28:], 765)
	putS32(62, 4200)
	putS32(70, 6250)
	putS32(74, -800)
	binary.BigEndian.PutUint16(data[102:], 1)
	return data
}

func TestRead(t *testing.T) {
	ess := make([]byte, essInfoCount*2)
	binary.BigEndian.PutUint32(ess, 1000)

	regs := &fakeRegisters{blocks: map[uint16][]byte{
		runningInfoStart: runningInfo(),
		essInfoStart:     ess,
	}}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	r, err := Read(regs, now)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"grid power", r.GridPower, -1.5},
		{"ess soc", r.ESSSOC, 76.5},
		{"plant power", r.PlantActivePower, 4.2},
		{"pv power", r.PhotovoltaicPower, 6.25},
		{"ess power", r.ESSPower, -0.8},
		{"ess capacity", r.ESSCapacity, 10},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
	if r.RunningState != 1 || !r.OnGrid {
		t.Errorf("Unexpected state: running=%d onGrid=%v", r.RunningState, r.OnGrid)
	}
	if !r.ReadAt.Equal(now) {
		t.Errorf("Expected read time %v, got %v", now, r.ReadAt)
	}
	if r.ESSStatus() != "discharging" {
		t.Errorf("Expected discharging, got %s", r.ESSStatus())
	}
}

func TestReadOptionalESSBlock(t *testing.T) {
	regs := &fakeRegisters{
		blocks: map[uint16][]byte{runningInfoStart: runningInfo()},
		err:    map[uint16]error{essInfoStart: errors.New("illegal address")},
	}

	r, err := Read(regs, time.Now())
	if err != nil {
		t.Fatalf("ESS block failure should not fail the read: %v", err)
	}
	if r.ESSCapacity != 0 {
		t.Errorf("Expected zero capacity, got %v", r.ESSCapacity)
	}
	if len(regs.calls) != 2 {
		t.Errorf("Expected 2 register reads, got %d", len(regs.calls))
	}
}

func TestReadErrors(t *testing.T) {
	regs := &fakeRegisters{err: map[uint16]error{runningInfoStart: errors.New("timeout")}}
	if _, err := Read(regs, time.Now()); err == nil {
		t.Error("Expected error when running info read fails")
	}

	regs = &fakeRegisters{blocks: map[uint16][]byte{runningInfoStart: make([]byte, 10)}}
	if _, err := Read(regs, time.Now()); err == nil {
		t.Error("Expected error for a short block")
	}
}

func TestESSStatus(t *testing.T) {
	tests := []struct {
		power float64
		want  string
	}{
		{-2, "discharging"},
		{0.005, "idle"},
		{3, "charging"},
	}
	for _, tt := range tests {
		if got := (Reading{ESSPower: tt.power}).ESSStatus(); got != tt.want {
			t.Errorf("ESSStatus(%v) = %s, want %s", tt.power, got, tt.want)
		}
	}
}

func TestDialUnreachable(t *testing.T) {
	if _, err := ReadOnce("127.0.0.1:1", 200*time.Millisecond); err == nil {
		t.Error("Expected error dialing a closed port")
	}
}
