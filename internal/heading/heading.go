package heading

// Reference represents a single GPS course-over-ground report suitable for
// JSON and MQTT. It is the external cross-check for the fused heading,
// which drifts without a magnetometer.
type Reference struct {
	Time       string  `json:"time"`        // e.g. "12:34:56"
	CourseDeg  float64 `json:"course_deg"`  // course over ground, 0..360
	SpeedKnots float64 `json:"speed_knots"` // speed over ground
	Validity   string  `json:"validity"`    // "A" (valid) / "V" (void), etc.
}
