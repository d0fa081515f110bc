// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/attitude_tracker/internal/config"
	"github.com/relabs-tech/attitude_tracker/internal/imu"
	"github.com/relabs-tech/attitude_tracker/internal/mpu6050"
)

// IMUManager owns the shared MPU6050 handle for tools that need direct
// register access alongside plain sampling. All methods are safe for
// concurrent use; the device is opened lazily on first access.
type IMUManager struct {
	mu  sync.Mutex
	bus i2c.BusCloser
	dev *mpu6050.Dev
}

// Package-level unexported variables for singleton pattern:
//   - imuManager: unexported so other packages go through GetIMUManager().
//   - imuManagerOnce: ensures the manager is created exactly once.
var (
	imuManager     *IMUManager
	imuManagerOnce sync.Once
)

// GetIMUManager returns the process-wide IMU manager, creating it on
// first use. The underlying device is not opened until a method needs it.
func GetIMUManager() *IMUManager {
	imuManagerOnce.Do(func() {
		imuManager = &IMUManager{}
	})
	return imuManager
}

// Init opens the configured I2C bus and configures the sensor. Calling it
// again while the device is up is a no-op.
func (m *IMUManager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked()
}

func (m *IMUManager) initLocked() error {
	if m.dev != nil {
		return nil
	}

	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("imu manager: periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.IMUI2CBus)
	if err != nil {
		return fmt.Errorf("imu manager: I2C open (%q): %w", cfg.IMUI2CBus, err)
	}

	dev, err := mpu6050.New(bus, mpu6050.Opts{
		Addr:          cfg.IMUI2CAddr,
		AccelRange:    mpu6050.AccelRange(cfg.IMUAccelRange),
		GyroRange:     mpu6050.GyroRange(cfg.IMUGyroRange),
		LowPassFilter: cfg.IMUDLPFConfig,
	})
	if err != nil {
		bus.Close()
		return fmt.Errorf("imu manager: device init: %w", err)
	}

	if id, err := dev.ID(); err != nil {
		log.Printf("imu manager: WARNING: failed to read WHO_AM_I: %v", err)
	} else {
		log.Printf("imu manager: MPU6050 ready on %s, WHO_AM_I = 0x%02X", bus, id)
	}

	m.bus = bus
	m.dev = dev
	return nil
}

// IsAvailable reports whether the device has been opened successfully.
func (m *IMUManager) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dev != nil
}

// ReadRaw reads one six-axis snapshot from the sensor.
func (m *IMUManager) ReadRaw() (imu.RawSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.initLocked(); err != nil {
		return imu.RawSample{}, err
	}
	return m.dev.ReadRaw()
}

// ReadRegister reads a single register over the shared handle.
func (m *IMUManager) ReadRegister(addr byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.initLocked(); err != nil {
		return 0, err
	}
	return m.dev.ReadRegister(addr)
}

// WriteRegister writes a single register over the shared handle. Range
// gating is the caller's job; the manager does raw access only.
func (m *IMUManager) WriteRegister(addr, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.initLocked(); err != nil {
		return err
	}
	return m.dev.WriteRegister(addr, value)
}

// ReadAllRegisters reads every register named in the device map and
// returns address to value.
func (m *IMUManager) ReadAllRegisters() (map[byte]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.initLocked(); err != nil {
		return nil, err
	}

	values := make(map[byte]byte)
	for _, info := range mpu6050.RegisterMap() {
		var addr byte
		if _, err := fmt.Sscanf(info.Address, "0x%X", &addr); err != nil {
			return nil, fmt.Errorf("imu manager: bad map address %q: %w", info.Address, err)
		}
		value, err := m.dev.ReadRegister(addr)
		if err != nil {
			return nil, fmt.Errorf("imu manager: read %s (%s): %w", info.Name, info.Address, err)
		}
		values[addr] = value
	}
	return values, nil
}

// GetRegisterMap returns the register metadata for the device.
func (m *IMUManager) GetRegisterMap() []mpu6050.RegisterInfo {
	return mpu6050.RegisterMap()
}

// Reinitialize re-runs the sensor configuration sequence, recovering from
// a register write that left the device in a bad state.
func (m *IMUManager) Reinitialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bus == nil {
		return m.initLocked()
	}

	cfg := config.Get()
	dev, err := mpu6050.New(m.bus, mpu6050.Opts{
		Addr:          cfg.IMUI2CAddr,
		AccelRange:    mpu6050.AccelRange(cfg.IMUAccelRange),
		GyroRange:     mpu6050.GyroRange(cfg.IMUGyroRange),
		LowPassFilter: cfg.IMUDLPFConfig,
	})
	if err != nil {
		return fmt.Errorf("imu manager: reinit: %w", err)
	}
	m.dev = dev
	log.Printf("imu manager: MPU6050 reinitialized")
	return nil
}

// Close puts the sensor to sleep and releases the bus.
func (m *IMUManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dev != nil {
		if err := m.dev.Halt(); err != nil {
			log.Printf("imu manager: halt: %v", err)
		}
		m.dev = nil
	}
	if m.bus != nil {
		err := m.bus.Close()
		m.bus = nil
		return err
	}
	return nil
}
