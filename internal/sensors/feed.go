// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"time"

	"github.com/pkg/errors"

	"github.com/relabs-tech/tiltframe/internal/imu"
	"github.com/relabs-tech/tiltframe/internal/motion"
	"github.com/relabs-tech/tiltframe/internal/orientation"
)

// firstInterval is assumed for the first sample, before there is a
// previous tick to measure against.
const firstInterval = 100 * time.Millisecond

// Enricher adds fields from other sensors to an orientation sample, e.g.
// compass heading.
type Enricher interface {
	Apply(s *orientation.Sample)
}

// IMUFeed turns raw IMU counts into paired orientation and motion samples.
// It implements platform.Feed.
type IMUFeed struct {
	src      imu.IMURawSource
	scale    imu.Scale
	tracker  orientation.TiltTracker
	enricher Enricher
	now      func() time.Time
	last     time.Time
}

// NewIMUFeed creates a feed over src. enricher may be nil.
func NewIMUFeed(src imu.IMURawSource, scale imu.Scale, enricher Enricher) *IMUFeed {
	return &IMUFeed{
		src:      src,
		scale:    scale,
		enricher: enricher,
		now:      time.Now,
	}
}

// Next reads one raw sample and converts it.
func (f *IMUFeed) Next() (orientation.Sample, motion.Sample, error) {
	raw, err := f.src.NextRaw()
	if err != nil {
		return orientation.Sample{}, motion.Sample{}, errors.Wrap(err, "reading IMU")
	}

	t := f.now()
	dt := firstInterval
	if !f.last.IsZero() {
		dt = t.Sub(f.last)
	}
	f.last = t

	ax, ay, az := raw.AccelG(f.scale)
	_, _, gz := raw.GyroDegS(f.scale)

	o := f.tracker.Update(ax, ay, az, gz, dt.Seconds())
	if f.enricher != nil {
		f.enricher.Apply(&o)
	}

	m := raw.Motion(f.scale, float64(dt)/float64(time.Millisecond))
	return o, m, nil
}
