package orientation

import (
	"math"
	"testing"
)

func TestTiltEstimateLevel(t *testing.T) {
	e := TiltEstimate(0, 0, 1)
	if e.Roll != 0 || e.Pitch != 0 || e.Heading != 0 {
		t.Fatalf("level tilt = %+v, want zeros", e)
	}
}

func TestTiltEstimateRoll45(t *testing.T) {
	// Gravity split evenly between y and z is a 45° roll.
	e := TiltEstimate(0, math.Sqrt2/2, math.Sqrt2/2)
	if math.Abs(e.Roll-45) > 1e-9 {
		t.Errorf("Roll = %v, want 45", e.Roll)
	}
	if math.Abs(e.Pitch) > 1e-9 {
		t.Errorf("Pitch = %v, want 0", e.Pitch)
	}
}

func TestTiltEstimatePitch45(t *testing.T) {
	e := TiltEstimate(-math.Sqrt2/2, 0, math.Sqrt2/2)
	if math.Abs(e.Pitch-45) > 1e-9 {
		t.Errorf("Pitch = %v, want 45", e.Pitch)
	}
	if math.Abs(e.Roll) > 1e-9 {
		t.Errorf("Roll = %v, want 0", e.Roll)
	}
}

func TestTiltEstimateUnitInvariance(t *testing.T) {
	// Raw counts and g values give the same angles.
	a := TiltEstimate(0.1, 0.2, 0.95)
	b := TiltEstimate(0.1*16384, 0.2*16384, 0.95*16384)
	if math.Abs(a.Roll-b.Roll) > 1e-9 || math.Abs(a.Pitch-b.Pitch) > 1e-9 {
		t.Fatalf("scaled input changed angles: %+v vs %+v", a, b)
	}
}

func TestMockSourceRanges(t *testing.T) {
	src := NewMockSource()
	e, err := src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if e.Roll < -12 || e.Roll > 12 {
		t.Errorf("Roll = %v, want within ±12", e.Roll)
	}
	if e.Pitch < -8 || e.Pitch > 8 {
		t.Errorf("Pitch = %v, want within ±8", e.Pitch)
	}
	if e.Heading < -180 || e.Heading > 180 {
		t.Errorf("Heading = %v, want within (-180, 180]", e.Heading)
	}
}
