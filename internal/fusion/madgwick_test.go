package fusion

import (
	"math"
	"testing"
)

func TestMadgwickLevelRest(t *testing.T) {
	m := NewMadgwick(25)

	// Level and still: gravity straight down the Z axis. The identity
	// attitude already matches, so nothing should move.
	for i := 0; i < 100; i++ {
		m.Update(0, 0, 0, 0, 0, 1)
	}

	if r := m.Roll(); math.Abs(r) > 0.01 {
		t.Errorf("Roll = %v, want ~0", r)
	}
	if p := m.Pitch(); math.Abs(p) > 0.01 {
		t.Errorf("Pitch = %v, want ~0", p)
	}
	if h := m.Heading(); math.Abs(h) > 0.01 {
		t.Errorf("Heading = %v, want ~0", h)
	}
}

func TestMadgwickRollConvergence(t *testing.T) {
	m := NewMadgwick(25)

	// Static 30° roll: gravity reads (0, sin30, cos30) in the body frame.
	ay := float32(math.Sin(30 * degToRad))
	az := float32(math.Cos(30 * degToRad))
	for i := 0; i < 2500; i++ {
		m.Update(0, 0, 0, 0, ay, az)
	}

	if r := m.Roll(); math.Abs(r-30) > 1.0 {
		t.Errorf("Roll = %v, want ~30", r)
	}
	if p := m.Pitch(); math.Abs(p) > 1.0 {
		t.Errorf("Pitch = %v, want ~0", p)
	}
}

func TestMadgwickGyroIntegration(t *testing.T) {
	m := NewMadgwick(25)

	// One second of +90 °/s about Z with no accel correction available.
	for i := 0; i < 25; i++ {
		m.Update(0, 0, 90, 0, 0, 0)
	}

	if h := m.Heading(); math.Abs(h-90) > 0.5 {
		t.Errorf("Heading = %v, want ~90", h)
	}
}

func TestMadgwickZeroAccelNoNaN(t *testing.T) {
	m := NewMadgwick(25)

	for i := 0; i < 50; i++ {
		m.Update(10, -5, 3, 0, 0, 0)
	}

	for name, v := range map[string]float64{
		"roll":    m.Roll(),
		"pitch":   m.Pitch(),
		"heading": m.Heading(),
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v after zero-accel updates", name, v)
		}
	}
}

func TestMadgwickQuaternionStaysNormalized(t *testing.T) {
	m := NewMadgwick(25)

	for i := 0; i < 1000; i++ {
		m.Update(12, -7, 4, 0.1, -0.2, 0.95)
	}

	w, x, y, z := m.Quaternion()
	norm := math.Sqrt(w*w + x*x + y*y + z*z)
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("quaternion norm = %v, want 1", norm)
	}
}
