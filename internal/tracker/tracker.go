// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tracker

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/attitude_tracker/internal/fusion"
	"github.com/relabs-tech/attitude_tracker/internal/imu"
	"github.com/relabs-tech/attitude_tracker/internal/mpu6050"
	"github.com/relabs-tech/attitude_tracker/internal/orientation"
)

// Opts configures a Tracker. Filter overrides the fusion filter; leaving
// it nil gets a Madgwick filter built for SampleRateHz.
type Opts struct {
	Addr          uint16
	SampleRateHz  int
	AccelRange    mpu6050.AccelRange
	GyroRange     mpu6050.GyroRange
	LowPassFilter byte
	Filter        fusion.Filter
}

// DefaultOpts matches the deployed unit: 25 Hz, ±2 g, ±250 °/s, 5 Hz DLPF.
var DefaultOpts = Opts{
	Addr:          mpu6050.DefaultAddr,
	SampleRateHz:  25,
	AccelRange:    mpu6050.AccelRange2G,
	GyroRange:     mpu6050.GyroRange250DPS,
	LowPassFilter: 0x06,
}

// Tick carries the samples of one executed tick. The tracker hands them to
// the caller and keeps no reference.
type Tick struct {
	Raw    imu.RawSample
	Sample imu.Sample
}

// Tracker owns the sensor, the pacing gate and the fusion filter, and runs
// the per-tick pipeline: snapshot, convert, fuse. A single goroutine
// drives it; nothing here locks.
type Tracker struct {
	dev    *mpu6050.Dev
	filter fusion.Filter
	sched  *Scheduler

	fullScaleG   float64
	fullScaleDPS float64
}

// New configures the sensor, builds the filter and anchors the pacing
// phase, in that order, so the first interval starts only once the
// hardware is up.
func New(bus i2c.Bus, opts Opts) (*Tracker, error) {
	rate := opts.SampleRateHz
	if rate <= 0 {
		rate = DefaultOpts.SampleRateHz
	}

	dev, err := mpu6050.New(bus, mpu6050.Opts{
		Addr:          opts.Addr,
		AccelRange:    opts.AccelRange,
		GyroRange:     opts.GyroRange,
		LowPassFilter: opts.LowPassFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("tracker: sensor init: %w", err)
	}

	filter := opts.Filter
	if filter == nil {
		filter = fusion.NewMadgwick(float64(rate))
	}

	return &Tracker{
		dev:          dev,
		filter:       filter,
		sched:        NewScheduler(rate),
		fullScaleG:   opts.AccelRange.FullScaleG(),
		fullScaleDPS: opts.GyroRange.FullScaleDPS(),
	}, nil
}

// Poll runs one gate check. Off-tick calls return (nil, nil) and touch
// nothing, the bus included. A due tick reads the six-axis snapshot,
// converts it and feeds the filter. A read error consumes the tick, the
// phase having already advanced, but leaves the filter untouched; the next
// due tick proceeds normally.
func (t *Tracker) Poll() (*Tick, error) {
	if !t.sched.Tick() {
		return nil, nil
	}

	raw, err := t.dev.ReadRaw()
	if err != nil {
		return nil, fmt.Errorf("tracker: tick read: %w", err)
	}

	sample := imu.Convert(raw, t.fullScaleG, t.fullScaleDPS)
	t.filter.Update(sample.Gx, sample.Gy, sample.Gz, sample.Ax, sample.Ay, sample.Az)

	return &Tick{Raw: raw, Sample: sample}, nil
}

// SampleIntervalMicros returns the pacing interval in microseconds.
func (t *Tracker) SampleIntervalMicros() int64 {
	return t.sched.IntervalMicros()
}

// Halt puts the sensor back to sleep.
func (t *Tracker) Halt() error {
	return t.dev.Halt()
}

// Roll returns the current roll in degrees. Readouts never block and never
// touch the bus; between ticks they repeat the last fused value.
func (t *Tracker) Roll() float64 { return t.filter.Roll() }

// Pitch returns the current pitch in degrees.
func (t *Tracker) Pitch() float64 { return t.filter.Pitch() }

// Heading returns the current heading in degrees, in (-180, 180].
func (t *Tracker) Heading() float64 { return t.filter.Heading() }

// Estimate returns the three readouts as one value.
func (t *Tracker) Estimate() orientation.Estimate {
	return orientation.Estimate{
		Roll:    t.filter.Roll(),
		Pitch:   t.filter.Pitch(),
		Heading: t.filter.Heading(),
	}
}
