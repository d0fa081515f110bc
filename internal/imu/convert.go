package imu

// AccelG converts a raw accelerometer count to g for the given full-scale
// range. The divisor is 32768 for both polarities: -fullScaleG maps exactly
// to -32768, +32767 lands one count short of +fullScaleG.
func AccelG(raw int16, fullScaleG float64) float32 {
	return float32(float64(raw) * fullScaleG / 32768.0)
}

// GyroDPS converts a raw gyro count to degrees/second for the given
// full-scale range. Same mapping as AccelG.
func GyroDPS(raw int16, fullScaleDPS float64) float32 {
	return float32(float64(raw) * fullScaleDPS / 32768.0)
}

// Convert scales one raw sample with the configured full-scale ranges.
func Convert(r RawSample, fullScaleG, fullScaleDPS float64) Sample {
	return Sample{
		Source: r.Source,
		Ax:     AccelG(r.Ax, fullScaleG),
		Ay:     AccelG(r.Ay, fullScaleG),
		Az:     AccelG(r.Az, fullScaleG),
		Gx:     GyroDPS(r.Gx, fullScaleDPS),
		Gy:     GyroDPS(r.Gy, fullScaleDPS),
		Gz:     GyroDPS(r.Gz, fullScaleDPS),
	}
}
