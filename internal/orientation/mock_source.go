// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package orientation

import (
	"math"
	"time"
)

type mockSource struct {
	epoch time.Time
}

// NewMockSource returns a source that sweeps through a slow
// figure of repeating roll and pitch angles. Useful for driving
// consumers without hardware attached.
func NewMockSource() Source {
	return &mockSource{epoch: time.Now()}
}

func (m *mockSource) Next() (Estimate, error) {
	t := time.Since(m.epoch).Seconds()

	est := Estimate{
		Roll:  12 * math.Sin(2*math.Pi*t/9),
		Pitch: 8 * math.Sin(2*math.Pi*t/13),
	}
	// Heading creeps at 3 deg/s and wraps into (-180, 180].
	est.Heading = math.Mod(3*t+180, 360) - 180
	return est, nil
}
