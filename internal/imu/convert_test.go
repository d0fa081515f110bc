package imu

import (
	"math"
	"testing"
)

func TestAccelGFixedPoints(t *testing.T) {
	cases := []struct {
		raw  int16
		want float64
	}{
		{0, 0},
		{8192, 0.5},
		{16384, 1.0},
		{-16384, -1.0},
		{32767, 1.99993896484375}, // one count short of +2 g
		{-32768, -2.0},
	}
	for _, c := range cases {
		got := float64(AccelG(c.raw, 2.0))
		if math.Abs(got-c.want) > 1e-6 {
			t.Errorf("AccelG(%d, 2.0) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestGyroDPSFixedPoints(t *testing.T) {
	cases := []struct {
		raw  int16
		want float64
	}{
		{0, 0},
		{16384, 125.0},
		{-16384, -125.0},
		{32767, 249.99237060546875},
		{-32768, -250.0},
	}
	for _, c := range cases {
		got := float64(GyroDPS(c.raw, 250.0))
		if math.Abs(got-c.want) > 1e-4 {
			t.Errorf("GyroDPS(%d, 250.0) = %v, want %v", c.raw, got, c.want)
		}
	}
}

// Negative full scale maps exactly, positive full scale maps one count
// short. Both ends must come out of float32 untouched.
func TestConversionFullScaleExact(t *testing.T) {
	if got := AccelG(-32768, 2.0); got != -2.0 {
		t.Errorf("AccelG(-32768) = %v, want exactly -2.0", got)
	}
	if got := AccelG(16384, 2.0); got != 1.0 {
		t.Errorf("AccelG(16384) = %v, want exactly 1.0", got)
	}
	if got := GyroDPS(-32768, 250.0); got != -250.0 {
		t.Errorf("GyroDPS(-32768) = %v, want exactly -250.0", got)
	}
}

func TestConversionMonotonic(t *testing.T) {
	raws := []int16{-32768, -16384, -1000, -1, 0, 1, 1000, 16384, 32767}
	prevA := float32(math.Inf(-1))
	prevG := float32(math.Inf(-1))
	for _, raw := range raws {
		a := AccelG(raw, 2.0)
		g := GyroDPS(raw, 250.0)
		if a < prevA {
			t.Errorf("AccelG not monotonic at raw=%d: %v < %v", raw, a, prevA)
		}
		if g < prevG {
			t.Errorf("GyroDPS not monotonic at raw=%d: %v < %v", raw, g, prevG)
		}
		prevA, prevG = a, g
	}
}

func TestConvertSample(t *testing.T) {
	raw := RawSample{
		Source: "mpu6050",
		Ax:     0, Ay: 0, Az: 16384,
		Gx: -32768, Gy: 16384, Gz: 0,
	}
	s := Convert(raw, 2.0, 250.0)

	if s.Source != "mpu6050" {
		t.Errorf("Source = %q, want mpu6050", s.Source)
	}
	if s.Ax != 0 || s.Ay != 0 {
		t.Errorf("level sample: ax=%v ay=%v, want 0", s.Ax, s.Ay)
	}
	if s.Az != 1.0 {
		t.Errorf("Az = %v, want 1.0 g", s.Az)
	}
	if s.Gx != -250.0 {
		t.Errorf("Gx = %v, want -250.0", s.Gx)
	}
	if s.Gy != 125.0 {
		t.Errorf("Gy = %v, want 125.0", s.Gy)
	}
	if s.Gz != 0 {
		t.Errorf("Gz = %v, want 0", s.Gz)
	}
}
