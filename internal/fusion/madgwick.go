// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fusion

import "math"

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Madgwick is the gradient-descent orientation filter, IMU variant
// (gyro + accel, no magnetometer). Heading is gyro-integrated yaw and
// drifts slowly; roll and pitch are held by the gravity correction.
//
// The integration step is fixed at construction: build the filter for the
// same rate the sample loop actually runs at.
type Madgwick struct {
	beta          float64 // accel correction gain
	invSampleFreq float64 // seconds per update

	q0, q1, q2, q3 float64

	roll, pitch, yaw float64
	anglesComputed   bool
}

// NewMadgwick returns a filter integrating at sampleHz, starting from the
// identity attitude with the stock gain of 0.1.
func NewMadgwick(sampleHz float64) *Madgwick {
	return &Madgwick{
		beta:          0.1,
		invSampleFreq: 1.0 / sampleHz,
		q0:            1.0,
	}
}

// SetBeta tunes the accelerometer correction gain: higher converges faster
// and follows accelerometer noise more.
func (m *Madgwick) SetBeta(beta float64) {
	m.beta = beta
}

// Update feeds one sample: gyro in degrees/second, accel in g.
func (m *Madgwick) Update(gx, gy, gz, ax, ay, az float32) {
	grx := float64(gx) * degToRad
	gry := float64(gy) * degToRad
	grz := float64(gz) * degToRad

	q0, q1, q2, q3 := m.q0, m.q1, m.q2, m.q3

	// Quaternion rate of change from the gyro.
	qDot1 := 0.5 * (-q1*grx - q2*gry - q3*grz)
	qDot2 := 0.5 * (q0*grx + q2*grz - q3*gry)
	qDot3 := 0.5 * (q0*gry - q1*grz + q3*grx)
	qDot4 := 0.5 * (q0*grz + q1*gry - q2*grx)

	// Gravity correction. An all-zero accel vector cannot be normalized
	// and contributes nothing.
	fax, fay, faz := float64(ax), float64(ay), float64(az)
	if fax != 0 || fay != 0 || faz != 0 {
		norm := math.Sqrt(fax*fax + fay*fay + faz*faz)
		fax /= norm
		fay /= norm
		faz /= norm

		q0q0 := q0 * q0
		q1q1 := q1 * q1
		q2q2 := q2 * q2
		q3q3 := q3 * q3

		// Gradient descent corrective step.
		s0 := 4.0*q0*q2q2 + 2.0*q2*fax + 4.0*q0*q1q1 - 2.0*q1*fay
		s1 := 4.0*q1*q3q3 - 2.0*q3*fax + 4.0*q0q0*q1 - 2.0*q0*fay -
			4.0*q1 + 8.0*q1*q1q1 + 8.0*q1*q2q2 + 4.0*q1*faz
		s2 := 4.0*q0q0*q2 + 2.0*q0*fax + 4.0*q2*q3q3 - 2.0*q3*fay -
			4.0*q2 + 8.0*q2*q1q1 + 8.0*q2*q2q2 + 4.0*q2*faz
		s3 := 4.0*q1q1*q3 - 2.0*q1*fax + 4.0*q2q2*q3 - 2.0*q2*fay

		// A zero step means measured and predicted gravity already
		// align; there is nothing to correct.
		stepNorm := math.Sqrt(s0*s0 + s1*s1 + s2*s2 + s3*s3)
		if stepNorm > 0 {
			qDot1 -= m.beta * s0 / stepNorm
			qDot2 -= m.beta * s1 / stepNorm
			qDot3 -= m.beta * s2 / stepNorm
			qDot4 -= m.beta * s3 / stepNorm
		}
	}

	// Integrate and renormalize.
	q0 += qDot1 * m.invSampleFreq
	q1 += qDot2 * m.invSampleFreq
	q2 += qDot3 * m.invSampleFreq
	q3 += qDot4 * m.invSampleFreq

	norm := math.Sqrt(q0*q0 + q1*q1 + q2*q2 + q3*q3)
	m.q0 = q0 / norm
	m.q1 = q1 / norm
	m.q2 = q2 / norm
	m.q3 = q3 / norm
	m.anglesComputed = false
}

// Roll returns the roll angle in degrees.
func (m *Madgwick) Roll() float64 {
	m.computeAngles()
	return m.roll
}

// Pitch returns the pitch angle in degrees.
func (m *Madgwick) Pitch() float64 {
	m.computeAngles()
	return m.pitch
}

// Heading returns the yaw angle in degrees, (-180, 180].
func (m *Madgwick) Heading() float64 {
	m.computeAngles()
	return m.yaw
}

// Quaternion returns the current attitude quaternion (w, x, y, z).
func (m *Madgwick) Quaternion() (float64, float64, float64, float64) {
	return m.q0, m.q1, m.q2, m.q3
}

func (m *Madgwick) computeAngles() {
	if m.anglesComputed {
		return
	}
	m.roll = math.Atan2(m.q0*m.q1+m.q2*m.q3, 0.5-m.q1*m.q1-m.q2*m.q2) * radToDeg
	m.pitch = math.Asin(-2.0*(m.q1*m.q3-m.q0*m.q2)) * radToDeg
	m.yaw = math.Atan2(m.q1*m.q2+m.q0*m.q3, 0.5-m.q2*m.q2-m.q3*m.q3) * radToDeg
	m.anglesComputed = true
}
