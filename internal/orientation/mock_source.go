// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"
)

// mockHeadingOffset is how far the mock compass sits from the mock alpha.
const mockHeadingOffset = 40.0

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock orientation source that
// generates smooth changing values, including compass fields.
func NewMockSource() Source {
	return newMockSource(time.Now)
}

func newMockSource(now func() time.Time) *mockSource {
	return &mockSource{start: now(), now: now}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := m.now().Sub(m.start).Seconds()
	alpha := math.Mod(elapsed*30, 360)

	return Sample{
		Alpha:           Float(alpha),
		Beta:            Float(15 * math.Cos(elapsed*0.7)),
		Gamma:           Float(20 * math.Sin(elapsed)),
		Absolute:        Bool(false),
		CompassAccuracy: Float(10),
		CompassHeading:  Float(math.Mod(alpha+mockHeadingOffset, 360)),
	}, nil
}
