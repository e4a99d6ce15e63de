package imu

import (
	"github.com/relabs-tech/tiltframe/internal/motion"
)

// StandardGravity in m/s².
const StandardGravity = 9.80665

// IMURaw represents a single raw IMU sample in sensor counts.
type IMURaw struct {
	Source string `json:"source"` // "mpu9250" or "mock"

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

type IMURawSource interface {
	NextRaw() (IMURaw, error)
}

// Scale converts counts to physical units.
type Scale struct {
	AccelLSBPerG   float64
	GyroLSBPerDegS float64
}

// ScaleFromRanges builds the MPU-9250 scale for the configured range codes.
// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g.
// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s.
// Codes above 3 are clamped.
func ScaleFromRanges(accelRange, gyroRange byte) Scale {
	accelRange = min(accelRange, 3)
	gyroRange = min(gyroRange, 3)
	return Scale{
		AccelLSBPerG:   16384 / float64(int(1)<<accelRange),
		GyroLSBPerDegS: 131 / float64(int(1)<<gyroRange),
	}
}

// AccelG returns the acceleration in g.
func (r IMURaw) AccelG(s Scale) (x, y, z float64) {
	return float64(r.Ax) / s.AccelLSBPerG,
		float64(r.Ay) / s.AccelLSBPerG,
		float64(r.Az) / s.AccelLSBPerG
}

// GyroDegS returns the rotation rate in degrees per second.
func (r IMURaw) GyroDegS(s Scale) (x, y, z float64) {
	return float64(r.Gx) / s.GyroLSBPerDegS,
		float64(r.Gy) / s.GyroLSBPerDegS,
		float64(r.Gz) / s.GyroLSBPerDegS
}

// Motion converts the sample into a motion sample. intervalMs is the time
// since the previous sample.
//
// Acceleration without gravity needs sensor fusion and is left nil.
func (r IMURaw) Motion(s Scale, intervalMs float64) motion.Sample {
	ax, ay, az := r.AccelG(s)
	gx, gy, gz := r.GyroDegS(s)

	return motion.Sample{
		AccelerationIncludingGravity: &motion.Vector{
			X: ax * StandardGravity,
			Y: ay * StandardGravity,
			Z: az * StandardGravity,
		},
		RotationRate: &motion.RotationRate{Alpha: gz, Beta: gx, Gamma: gy},
		Interval:     &intervalMs,
	}
}
