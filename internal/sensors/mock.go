package sensors

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/relabs-tech/tiltframe/internal/imu"
	"github.com/relabs-tech/tiltframe/internal/motion"
	"github.com/relabs-tech/tiltframe/internal/orientation"
	"github.com/relabs-tech/tiltframe/internal/rotation"
)

// MockRawSource generates counts for a device rocking slowly around X and
// turning at a constant rate around Z.
type MockRawSource struct {
	scale imu.Scale
	start time.Time
	now   func() time.Time
}

// NewMockRawSource creates a mock IMU reporting at the given scale.
func NewMockRawSource(scale imu.Scale) *MockRawSource {
	return &MockRawSource{scale: scale, start: time.Now(), now: time.Now}
}

// NextRaw implements imu.IMURawSource.
func (m *MockRawSource) NextRaw() (imu.IMURaw, error) {
	elapsed := m.now().Sub(m.start).Seconds()
	tilt := 20 * rotation.DegToRad * math.Sin(0.5*elapsed)

	counts := func(v, lsb float64) int16 {
		return int16(math.Round(v * lsb))
	}

	return imu.IMURaw{
		Source: "mock",
		Ay:     counts(math.Sin(tilt), m.scale.AccelLSBPerG),
		Az:     counts(math.Cos(tilt), m.scale.AccelLSBPerG),
		Gz:     counts(15, m.scale.GyroLSBPerDegS),
	}, nil
}

// SourceFeed pairs an orientation source with the gravity vector implied
// by its angles. It implements platform.Feed.
type SourceFeed struct {
	src orientation.Source
}

// NewSourceFeed wraps src, typically orientation.NewMockSource().
func NewSourceFeed(src orientation.Source) *SourceFeed {
	return &SourceFeed{src: src}
}

// Next reads one orientation sample and derives its motion sample.
func (f *SourceFeed) Next() (orientation.Sample, motion.Sample, error) {
	o, err := f.src.Next()
	if err != nil {
		return orientation.Sample{}, motion.Sample{}, errors.Wrap(err, "reading orientation source")
	}

	// World Z expressed in device coordinates is the last matrix row.
	m := rotation.MatrixFromEuler(o.Angles())
	g := &motion.Vector{
		X: m[6] * imu.StandardGravity,
		Y: m[7] * imu.StandardGravity,
		Z: m[8] * imu.StandardGravity,
	}

	return o, motion.Sample{AccelerationIncludingGravity: g}, nil
}
