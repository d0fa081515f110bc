package mpu6050

import (
	"strings"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

// configOps is the exact write sequence New must issue: wake, low-pass,
// gyro range, accel range.
func configOps(addr uint16, lpf, gyroBits, accelBits byte) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: addr, W: []byte{0x6B, 0x00}},
		{Addr: addr, W: []byte{0x1A, lpf}},
		{Addr: addr, W: []byte{0x1B, gyroBits}},
		{Addr: addr, W: []byte{0x1C, accelBits}},
	}
}

func TestNewConfigSequence(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops:       configOps(0x68, 0x06, 0x00, 0x00),
		DontPanic: true,
	}

	if _, err := New(bus, DefaultOpts); err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("config sequence incomplete or out of order: %v", err)
	}
}

func TestNewRangeBits(t *testing.T) {
	// FS_SEL fields live in bits 4:3 of each config register.
	bus := &i2ctest.Playback{
		Ops:       configOps(0x69, 0x02, 0x18, 0x10),
		DontPanic: true,
	}

	opts := Opts{
		Addr:          0x69,
		AccelRange:    AccelRange8G,
		GyroRange:     GyroRange2000DPS,
		LowPassFilter: 0x02,
	}
	if _, err := New(bus, opts); err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("range bits wrong: %v", err)
	}
}

func TestRangeScales(t *testing.T) {
	if got := AccelRange2G.FullScaleG(); got != 2 {
		t.Errorf("AccelRange2G full scale = %v, want 2", got)
	}
	if got := AccelRange16G.FullScaleG(); got != 16 {
		t.Errorf("AccelRange16G full scale = %v, want 16", got)
	}
	if got := GyroRange250DPS.FullScaleDPS(); got != 250 {
		t.Errorf("GyroRange250DPS full scale = %v, want 250", got)
	}
	if got := GyroRange2000DPS.FullScaleDPS(); got != 2000 {
		t.Errorf("GyroRange2000DPS full scale = %v, want 2000", got)
	}
}

func TestReadRawOrderAndCombining(t *testing.T) {
	ops := configOps(0x68, 0x06, 0x00, 0x00)
	// One register-select write plus a two-byte read per axis, accel X..Z
	// then gyro X..Z. Values cover sign handling at both ends.
	ops = append(ops,
		i2ctest.IO{Addr: 0x68, W: []byte{0x3B}, R: []byte{0x00, 0x00}}, // 0
		i2ctest.IO{Addr: 0x68, W: []byte{0x3D}, R: []byte{0xFF, 0xFF}}, // -1
		i2ctest.IO{Addr: 0x68, W: []byte{0x3F}, R: []byte{0x40, 0x00}}, // 16384
		i2ctest.IO{Addr: 0x68, W: []byte{0x43}, R: []byte{0x80, 0x00}}, // -32768
		i2ctest.IO{Addr: 0x68, W: []byte{0x45}, R: []byte{0x7F, 0xFF}}, // 32767
		i2ctest.IO{Addr: 0x68, W: []byte{0x47}, R: []byte{0x00, 0x01}}, // 1
	)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}

	d, err := New(bus, DefaultOpts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := d.ReadRaw()
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("axis reads incomplete or out of order: %v", err)
	}

	if s.Source != "mpu6050" {
		t.Errorf("Source = %q, want mpu6050", s.Source)
	}
	if s.Ax != 0 || s.Ay != -1 || s.Az != 16384 {
		t.Errorf("accel = %d,%d,%d, want 0,-1,16384", s.Ax, s.Ay, s.Az)
	}
	if s.Gx != -32768 || s.Gy != 32767 || s.Gz != 1 {
		t.Errorf("gyro = %d,%d,%d, want -32768,32767,1", s.Gx, s.Gy, s.Gz)
	}
}

func TestReadRawErrorNamesAxis(t *testing.T) {
	// No axis ops queued: the first axis read must fail and say which.
	bus := &i2ctest.Playback{
		Ops:       configOps(0x68, 0x06, 0x00, 0x00),
		DontPanic: true,
	}
	d, err := New(bus, DefaultOpts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.ReadRaw(); err == nil {
		t.Fatal("ReadRaw succeeded with no bus data")
	} else if !strings.Contains(err.Error(), "accel X") {
		t.Errorf("error %q does not name the failing axis", err)
	}
}

func TestID(t *testing.T) {
	ops := append(configOps(0x68, 0x06, 0x00, 0x00),
		i2ctest.IO{Addr: 0x68, W: []byte{0x75}, R: []byte{0x68}},
	)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}

	d, err := New(bus, DefaultOpts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := d.ID()
	if err != nil {
		t.Fatalf("ID: %v", err)
	}
	if id != 0x68 {
		t.Errorf("ID = 0x%02X, want 0x68", id)
	}
}

func TestRegisterAccess(t *testing.T) {
	ops := append(configOps(0x68, 0x06, 0x00, 0x00),
		i2ctest.IO{Addr: 0x68, W: []byte{0x1B, 0x08}},
		i2ctest.IO{Addr: 0x68, W: []byte{0x1B}, R: []byte{0x08}},
	)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}

	d, err := New(bus, DefaultOpts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.WriteRegister(0x1B, 0x08); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	v, err := d.ReadRegister(0x1B)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if v != 0x08 {
		t.Errorf("ReadRegister = 0x%02X, want 0x08", v)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestHalt(t *testing.T) {
	ops := append(configOps(0x68, 0x06, 0x00, 0x00),
		i2ctest.IO{Addr: 0x68, W: []byte{0x6B, 0x40}},
	)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}

	d, err := New(bus, DefaultOpts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Halt(); err != nil {
		t.Fatalf("Halt: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}
