// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"fmt"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
)

// SimBus is a software stand-in for an I2C bus with one MPU-6050 on it.
// Register writes are recorded and can be read back; the axis registers
// follow a smooth synthetic attitude (a gentle roll/pitch sway plus a slow
// constant yaw rate) so the whole pipeline can run with nothing attached.
type SimBus struct {
	mu    sync.Mutex
	start time.Time
	regs  map[byte]byte
}

// NewSimBus returns a simulated bus answering at the default address.
func NewSimBus() *SimBus {
	return &SimBus{
		start: time.Now(),
		regs:  map[byte]byte{regWhoAmI: DefaultAddr},
	}
}

func (s *SimBus) String() string {
	return "simbus"
}

// SetSpeed implements i2c.Bus.
func (s *SimBus) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx implements i2c.Bus. Supported shapes are the two this driver issues:
// a two-byte register write and a register-select write followed by a read.
func (s *SimBus) Tx(addr uint16, w, r []byte) error {
	if addr != DefaultAddr && addr != DefaultAddr+1 {
		return fmt.Errorf("simbus: no device at 0x%02X", addr)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case len(w) == 2 && len(r) == 0:
		s.regs[w[0]] = w[1]
		return nil
	case len(w) == 1 && len(r) > 0:
		snap := s.attitudeCounts()
		for i := range r {
			r[i] = s.regByte(snap, w[0]+byte(i))
		}
		return nil
	}
	return fmt.Errorf("simbus: unsupported transaction (w=%d r=%d bytes)", len(w), len(r))
}

// simCounts is one consistent six-axis snapshot in sensor counts.
type simCounts struct {
	ax, ay, az int16
	gx, gy, gz int16
}

// attitudeCounts samples the synthetic trajectory: roll swaying ±12° with a
// 9 s period, pitch ±8° with a 13 s period, yaw creeping at 3 °/s. Gravity
// is decomposed into the body frame at ±2 g scale, rates at ±250 °/s scale.
func (s *SimBus) attitudeCounts() simCounts {
	t := time.Since(s.start).Seconds()
	const d2r = math.Pi / 180

	roll := 12 * math.Sin(2*math.Pi*t/9)
	pitch := 8 * math.Sin(2*math.Pi*t/13)
	rollRate := 12 * (2 * math.Pi / 9) * math.Cos(2*math.Pi*t/9)
	pitchRate := 8 * (2 * math.Pi / 13) * math.Cos(2*math.Pi*t/13)

	sr, cr := math.Sin(roll*d2r), math.Cos(roll*d2r)
	sp, cp := math.Sin(pitch*d2r), math.Cos(pitch*d2r)

	return simCounts{
		ax: accelCounts(-sp),
		ay: accelCounts(sr * cp),
		az: accelCounts(cr * cp),
		gx: gyroCounts(rollRate),
		gy: gyroCounts(pitchRate),
		gz: gyroCounts(3),
	}
}

func (s *SimBus) regByte(c simCounts, reg byte) byte {
	switch reg {
	case regAccelXoutH:
		return byte(uint16(c.ax) >> 8)
	case regAccelXoutH + 1:
		return byte(uint16(c.ax))
	case regAccelYoutH:
		return byte(uint16(c.ay) >> 8)
	case regAccelYoutH + 1:
		return byte(uint16(c.ay))
	case regAccelZoutH:
		return byte(uint16(c.az) >> 8)
	case regAccelZoutH + 1:
		return byte(uint16(c.az))
	case regGyroXoutH:
		return byte(uint16(c.gx) >> 8)
	case regGyroXoutH + 1:
		return byte(uint16(c.gx))
	case regGyroYoutH:
		return byte(uint16(c.gy) >> 8)
	case regGyroYoutH + 1:
		return byte(uint16(c.gy))
	case regGyroZoutH:
		return byte(uint16(c.gz) >> 8)
	case regGyroZoutH + 1:
		return byte(uint16(c.gz))
	}
	return s.regs[reg]
}

func accelCounts(g float64) int16 {
	return clampCounts(g * 32768.0 / 2.0)
}

func gyroCounts(dps float64) int16 {
	return clampCounts(dps * 32768.0 / 250.0)
}

func clampCounts(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
