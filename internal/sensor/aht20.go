package sensor

import (
	"context"
	"time"
)

// Bus is a minimal I2C transaction interface. Implementations carry
// their own transfer timeouts; calls return within bounded time.
type Bus interface {
	Write(addr byte, buf []byte) error
	Read(addr byte, buf []byte) error
}

// AHT20 measurement frame: trigger command, conversion wait, 6-byte read.
var triggerMeasurement = []byte{0xAC, 0x33, 0x00}

const conversionDelay = 80 * time.Millisecond

// AHT20 reads an AHT20/AHT22 temperature and humidity sensor over I2C.
type AHT20 struct {
	bus    Bus
	addr   byte
	policy FailurePolicy
}

// NewAHT20 returns a reader for the sensor at addr on bus.
func NewAHT20(bus Bus, addr byte, policy FailurePolicy) *AHT20 {
	return &AHT20{bus: bus, addr: addr, policy: policy}
}

// Read performs one measurement transaction. A failed transaction
// yields the sentinel measurement with Valid=false; it never returns
// an error because a failed reading is not a health-affecting event.
func (s *AHT20) Read(ctx context.Context) Measurement {
	if err := s.bus.Write(s.addr, triggerMeasurement); err != nil {
		return Failed()
	}
	select {
	case <-time.After(conversionDelay):
	case <-ctx.Done():
		return Failed()
	}
	var buf [6]byte
	if err := s.bus.Read(s.addr, buf[:]); err != nil {
		return Failed()
	}
	m := Decode(buf)
	m.Valid = !s.policy.Failed(m)
	return m
}

// Decode converts a raw 6-byte AHT20 frame to engineering units.
// Humidity is the upper 20 bits after the status byte, temperature the
// lower 20; both are fixed-point fractions of 2^20.
func Decode(buf [6]byte) Measurement {
	rawH := uint32(buf[1])<<12 | uint32(buf[2])<<4 | uint32(buf[3])>>4
	rawT := (uint32(buf[3])&0x0F)<<16 | uint32(buf[4])<<8 | uint32(buf[5])
	return Measurement{
		Humidity:    float64(rawH) * 100.0 / 1048576.0,
		Temperature: float64(rawT)*200.0/1048576.0 - 50.0,
	}
}
