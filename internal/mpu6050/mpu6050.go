// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/attitude_tracker/internal/imu"
)

// I2C register map for the MPU-6050 (the registers this driver touches).
const (
	regSmplrtDiv   = 0x19
	regConfig      = 0x1A // EXT_SYNC_SET + DLPF_CFG
	regGyroConfig  = 0x1B // self test + FS_SEL
	regAccelConfig = 0x1C // self test + AFS_SEL
	regAccelXoutH  = 0x3B
	regAccelYoutH  = 0x3D
	regAccelZoutH  = 0x3F
	regTempOutH    = 0x41
	regGyroXoutH   = 0x43
	regGyroYoutH   = 0x45
	regGyroZoutH   = 0x47
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75
)

// DefaultAddr is the I2C address with AD0 pulled low; 0x69 with AD0 high.
const DefaultAddr = 0x68

// PWR_MGMT_1 sleep bit.
const pwrSleep = 0x40

// AccelRange selects the accelerometer full-scale range (AFS_SEL).
type AccelRange byte

const (
	AccelRange2G AccelRange = iota
	AccelRange4G
	AccelRange8G
	AccelRange16G
)

// FullScaleG returns the range in g: 2, 4, 8 or 16.
func (r AccelRange) FullScaleG() float64 {
	return float64(int(2) << r)
}

// fsBits returns the AFS_SEL field, bits 4:3 of ACCEL_CONFIG.
func (r AccelRange) fsBits() byte {
	return byte(r) << 3
}

// GyroRange selects the gyroscope full-scale range (FS_SEL).
type GyroRange byte

const (
	GyroRange250DPS GyroRange = iota
	GyroRange500DPS
	GyroRange1000DPS
	GyroRange2000DPS
)

// FullScaleDPS returns the range in degrees/second: 250 .. 2000.
func (r GyroRange) FullScaleDPS() float64 {
	return float64(int(250) << r)
}

// fsBits returns the FS_SEL field, bits 4:3 of GYRO_CONFIG.
func (r GyroRange) fsBits() byte {
	return byte(r) << 3
}

// Opts holds initialization options.
//
// The register bits and the physical full scale both derive from the same
// range constant, so the configured range and the conversion scale cannot
// disagree.
//
// LowPassFilter is the DLPF_CFG code (0..7); 6 is the heaviest filtering
// the part offers (~5 Hz bandwidth at the 1 kHz internal rate).
type Opts struct {
	Addr          uint16
	AccelRange    AccelRange
	GyroRange     GyroRange
	LowPassFilter byte
}

// DefaultOpts matches the deployed unit: ±2 g, ±250 °/s, heavy low-pass.
var DefaultOpts = Opts{
	Addr:          DefaultAddr,
	AccelRange:    AccelRange2G,
	GyroRange:     GyroRange250DPS,
	LowPassFilter: 0x06,
}

// Dev represents an MPU-6050 behind an I2C bus.
//
// Axis data is read one register pair at a time, high byte first. There is
// no burst mode, no FIFO and no interrupt handling here.
type Dev struct {
	dev  i2c.Dev
	opts Opts
}

// New wakes the sensor and configures it: power management, low-pass
// filter, gyro range, accel range, one register write each, in that order.
// Writes are not read back; a failed write surfaces later as implausible
// physical values.
func New(bus i2c.Bus, opts Opts) (*Dev, error) {
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddr
	}

	d := &Dev{
		dev:  i2c.Dev{Addr: addr, Bus: bus},
		opts: opts,
	}

	// Leave sleep mode, internal 8 MHz oscillator.
	if err := d.writeReg(regPwrMgmt1, 0x00); err != nil {
		return nil, fmt.Errorf("mpu6050: wake: %w", err)
	}
	// External sync disabled, DLPF_CFG in bits 2:0.
	if err := d.writeReg(regConfig, opts.LowPassFilter&0x07); err != nil {
		return nil, fmt.Errorf("mpu6050: low-pass filter: %w", err)
	}
	if err := d.writeReg(regGyroConfig, opts.GyroRange.fsBits()); err != nil {
		return nil, fmt.Errorf("mpu6050: gyro range: %w", err)
	}
	if err := d.writeReg(regAccelConfig, opts.AccelRange.fsBits()); err != nil {
		return nil, fmt.Errorf("mpu6050: accel range: %w", err)
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("MPU6050{%s}", &d.dev)
}

// Halt puts the sensor back into sleep mode.
func (d *Dev) Halt() error {
	if err := d.writeReg(regPwrMgmt1, pwrSleep); err != nil {
		return fmt.Errorf("mpu6050: halt: %w", err)
	}
	return nil
}

// ID reads WHO_AM_I. A live part answers 0x68 regardless of the AD0 pin.
func (d *Dev) ID() (byte, error) {
	return d.ReadRegister(regWhoAmI)
}

// ReadRaw takes one six-axis snapshot in fixed order: accel X, Y, Z, then
// gyro X, Y, Z. Nothing else is interleaved between the six reads. The
// first axis error aborts the snapshot.
func (d *Dev) ReadRaw() (imu.RawSample, error) {
	s := imu.RawSample{Source: "mpu6050"}
	var err error

	if s.Ax, err = d.readAxis(regAccelXoutH); err != nil {
		return imu.RawSample{}, fmt.Errorf("mpu6050: accel X: %w", err)
	}
	if s.Ay, err = d.readAxis(regAccelYoutH); err != nil {
		return imu.RawSample{}, fmt.Errorf("mpu6050: accel Y: %w", err)
	}
	if s.Az, err = d.readAxis(regAccelZoutH); err != nil {
		return imu.RawSample{}, fmt.Errorf("mpu6050: accel Z: %w", err)
	}
	if s.Gx, err = d.readAxis(regGyroXoutH); err != nil {
		return imu.RawSample{}, fmt.Errorf("mpu6050: gyro X: %w", err)
	}
	if s.Gy, err = d.readAxis(regGyroYoutH); err != nil {
		return imu.RawSample{}, fmt.Errorf("mpu6050: gyro Y: %w", err)
	}
	if s.Gz, err = d.readAxis(regGyroZoutH); err != nil {
		return imu.RawSample{}, fmt.Errorf("mpu6050: gyro Z: %w", err)
	}
	return s, nil
}

// ReadRegister reads a single register. Used by the register debug console.
func (d *Dev) ReadRegister(addr byte) (byte, error) {
	var buf [1]byte
	if err := d.dev.Tx([]byte{addr}, buf[:]); err != nil {
		return 0, fmt.Errorf("mpu6050: read reg 0x%02X: %w", addr, err)
	}
	return buf[0], nil
}

// WriteRegister writes a single register. Used by the register debug
// console; normal operation only writes through New and Halt.
func (d *Dev) WriteRegister(addr, value byte) error {
	if err := d.writeReg(addr, value); err != nil {
		return fmt.Errorf("mpu6050: write reg 0x%02X: %w", addr, err)
	}
	return nil
}

// readAxis selects the high-byte register, then reads the two-byte pair in
// the same transaction (write, repeated start, read). The pair combines
// big-endian into a two's-complement count.
func (d *Dev) readAxis(reg byte) (int16, error) {
	var buf [2]byte
	if err := d.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return int16(buf[0])<<8 | int16(buf[1]), nil
}

func (d *Dev) writeReg(addr byte, val byte) error {
	return d.dev.Tx([]byte{addr, val}, nil)
}
