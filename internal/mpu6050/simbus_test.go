package mpu6050

import (
	"testing"
)

func TestSimBusServesDriver(t *testing.T) {
	d, err := New(NewSimBus(), DefaultOpts)
	if err != nil {
		t.Fatalf("New over sim bus: %v", err)
	}

	s, err := d.ReadRaw()
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if s.Source != "mpu6050" {
		t.Errorf("Source = %q", s.Source)
	}

	// The synthetic attitude stays within ±12° roll / ±8° pitch, so the
	// gravity vector stays mostly on Z.
	if s.Az < 15000 {
		t.Errorf("Az = %d, want near +1 g (>15000 counts)", s.Az)
	}
	if s.Ay > 4000 || s.Ay < -4000 {
		t.Errorf("Ay = %d, out of sway envelope", s.Ay)
	}
	if s.Ax > 3000 || s.Ax < -3000 {
		t.Errorf("Ax = %d, out of sway envelope", s.Ax)
	}
	// Constant 3 °/s yaw creep is ~393 counts at ±250 °/s.
	if s.Gz < 380 || s.Gz > 400 {
		t.Errorf("Gz = %d, want ~393", s.Gz)
	}
}

func TestSimBusConfigReadback(t *testing.T) {
	d, err := New(NewSimBus(), DefaultOpts)
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

	lpf, err := d.ReadRegister(0x1A)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if lpf != 0x06 {
		t.Errorf("CONFIG readback = 0x%02X, want 0x06", lpf)
	}
}

func TestSimBusWrongAddress(t *testing.T) {
	if _, err := New(NewSimBus(), Opts{Addr: 0x10}); err == nil {
		t.Fatal("New succeeded at an address with no device")
	}
}
