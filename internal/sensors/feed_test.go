package sensors

import (
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/tiltframe/internal/imu"
	"github.com/relabs-tech/tiltframe/internal/orientation"
)

type scriptedRaw struct {
	samples []imu.IMURaw
	err     error
}

func (s *scriptedRaw) NextRaw() (imu.IMURaw, error) {
	if s.err != nil {
		return imu.IMURaw{}, s.err
	}
	r := s.samples[0]
	s.samples = s.samples[1:]
	return r, nil
}

type headingEnricher struct{ heading float64 }

func (e headingEnricher) Apply(s *orientation.Sample) {
	s.CompassHeading = orientation.Float(e.heading)
	s.CompassAccuracy = orientation.Float(0)
}

func fixedClock(times ...time.Time) func() time.Time {
	return func() time.Time {
		t := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return t
	}
}

func TestIMUFeed(t *testing.T) {
	scale := imu.ScaleFromRanges(0, 0)
	level := imu.IMURaw{Az: 16384, Gz: 1310} // 1g, 10°/s around Z
	tilted := imu.IMURaw{Ay: 11585, Az: 11585, Gz: 1310}

	src := &scriptedRaw{samples: []imu.IMURaw{level, tilted}}
	f := NewIMUFeed(src, scale, headingEnricher{heading: 123})

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.now = fixedClock(t0, t0.Add(500*time.Millisecond))

	o, m, err := f.Next()
	require.NoError(t, err)
	assert.InDelta(t, 1, *o.Alpha, 1e-9) // 10°/s over the assumed 100ms
	assert.InDelta(t, 0, *o.Beta, 1e-9)
	assert.Equal(t, 123.0, *o.CompassHeading)
	assert.InDelta(t, 100, *m.Interval, 1e-9)
	assert.InDelta(t, imu.StandardGravity, m.AccelerationIncludingGravity.Z, 1e-9)

	o, m, err = f.Next()
	require.NoError(t, err)
	assert.InDelta(t, 6, *o.Alpha, 1e-9)
	assert.InDelta(t, 45, *o.Beta, 1e-9)
	assert.InDelta(t, 500, *m.Interval, 1e-9)
	assert.InDelta(t, 10, m.RotationRate.Alpha, 1e-9)
}

func TestIMUFeed_Error(t *testing.T) {
	f := NewIMUFeed(&scriptedRaw{err: errors.New("spi timeout")}, imu.ScaleFromRanges(0, 0), nil)
	_, _, err := f.Next()
	assert.EqualError(t, err, "reading IMU: spi timeout")
}

func TestMockRawSource(t *testing.T) {
	scale := imu.ScaleFromRanges(0, 0)
	src := NewMockRawSource(scale)
	src.now = func() time.Time { return src.start }

	raw, err := src.NextRaw()
	require.NoError(t, err)
	assert.Equal(t, "mock", raw.Source)
	assert.Equal(t, int16(0), raw.Ay)
	assert.Equal(t, int16(16384), raw.Az)

	gx, gy, gz := raw.GyroDegS(scale)
	assert.Zero(t, gx)
	assert.Zero(t, gy)
	assert.InDelta(t, 15, gz, 1e-9)

	f := NewIMUFeed(src, scale, nil)
	o, _, err := f.Next()
	require.NoError(t, err)
	assert.InDelta(t, 0, *o.Gamma, 1e-9)
}

func TestSourceFeed(t *testing.T) {
	f := NewSourceFeed(orientation.NewMockSource())

	for i := 0; i < 3; i++ {
		o, m, err := f.Next()
		require.NoError(t, err)
		require.NotNil(t, o.Alpha)
		require.NotNil(t, o.CompassHeading)

		g := m.AccelerationIncludingGravity
		require.NotNil(t, g)
		assert.InDelta(t, imu.StandardGravity, math.Sqrt(g.X*g.X+g.Y*g.Y+g.Z*g.Z), 1e-6)
	}
}
