package orientation

import (
	"math"
)

// Estimate is the canonical representation of orientation for the app:
// degrees, heading in (-180, 180].
type Estimate struct {
	Roll    float64 `json:"roll"`
	Pitch   float64 `json:"pitch"`
	Heading float64 `json:"heading"`
}

// Source is anything that can provide orientation estimates over time:
// mock source, a fused tracker, maybe a replay source from file.
type Source interface {
	Next() (Estimate, error)
}

// TiltEstimate computes roll and pitch from accelerometer data alone, in
// any consistent unit. Heading is 0; gravity carries no yaw information.
//
// Uses the simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func TiltEstimate(ax, ay, az float64) Estimate {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Estimate{
		Roll:    rollRad * 180.0 / math.Pi,
		Pitch:   pitchRad * 180.0 / math.Pi,
		Heading: 0,
	}
}
