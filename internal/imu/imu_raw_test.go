package imu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleFromRanges(t *testing.T) {
	tests := []struct {
		accel, gyro byte
		want        Scale
	}{
		{0, 0, Scale{16384, 131}},
		{1, 1, Scale{8192, 65.5}},
		{2, 2, Scale{4096, 32.75}},
		{3, 3, Scale{2048, 16.375}},
		{9, 7, Scale{2048, 16.375}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScaleFromRanges(tt.accel, tt.gyro))
	}
}

func TestIMURaw_Motion(t *testing.T) {
	s := ScaleFromRanges(0, 0)
	raw := IMURaw{Source: "mock", Ax: 0, Ay: -8192, Az: 16384, Gx: 131, Gy: -262, Gz: 655}

	m := raw.Motion(s, 10)

	assert.Nil(t, m.Acceleration)
	require.NotNil(t, m.AccelerationIncludingGravity)
	assert.InDelta(t, 0, m.AccelerationIncludingGravity.X, 1e-12)
	assert.InDelta(t, -StandardGravity/2, m.AccelerationIncludingGravity.Y, 1e-12)
	assert.InDelta(t, StandardGravity, m.AccelerationIncludingGravity.Z, 1e-12)

	require.NotNil(t, m.RotationRate)
	assert.InDelta(t, 5, m.RotationRate.Alpha, 1e-12)
	assert.InDelta(t, 1, m.RotationRate.Beta, 1e-12)
	assert.InDelta(t, -2, m.RotationRate.Gamma, 1e-12)
	assert.Equal(t, 10.0, *m.Interval)
}
