// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/tiltframe/internal/config"
	"github.com/relabs-tech/tiltframe/internal/imu"
)

var (
	accelRangeG   = []int{2, 4, 8, 16}
	gyroRangeDegS = []int{250, 500, 1000, 2000}
)

type imuSource struct {
	dev *mpu9250.MPU9250
}

// NewMPU9250Source initializes an MPU-9250 over SPI with the configured
// ranges and runs the driver's bias calibration.
func NewMPU9250Source(cfg config.IMUConfig) (imu.IMURawSource, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "IMU: periph host init")
	}

	cs := gpioreg.ByName(cfg.CSPin)
	if cs == nil {
		return nil, errors.Errorf("IMU: CS pin %q not found", cfg.CSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.SPIDevice, cs)
	if err != nil {
		return nil, errors.Wrapf(err, "IMU: SPI transport (%s)", cfg.SPIDevice)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, errors.Wrap(err, "IMU: device creation")
	}

	if err := dev.Init(); err != nil {
		return nil, errors.Wrap(err, "IMU: initialization")
	}

	logger := log.WithField("spi", cfg.SPIDevice)

	if err := dev.SetAccelRange(cfg.AccelRange); err != nil {
		return nil, errors.Wrap(err, "IMU: set accel range")
	}
	logger.Infof("accelerometer range set to %d (±%dg)", cfg.AccelRange, accelRangeG[cfg.AccelRange])

	if err := dev.SetGyroRange(cfg.GyroRange); err != nil {
		return nil, errors.Wrap(err, "IMU: set gyro range")
	}
	logger.Infof("gyroscope range set to %d (±%d°/s)", cfg.GyroRange, gyroRangeDegS[cfg.GyroRange])

	if err := dev.Calibrate(); err != nil {
		logger.WithError(err).Warn("IMU calibration failed")
	} else {
		logger.Info("IMU calibration complete")
	}

	return &imuSource{dev: dev}, nil
}

// NextRaw reads accelerometer and gyroscope counts.
func (s *imuSource) NextRaw() (imu.IMURaw, error) {
	raw := imu.IMURaw{Source: "mpu9250"}

	reads := []struct {
		name string
		dst  *int16
		read func() (int16, error)
	}{
		{"accel X", &raw.Ax, s.dev.GetAccelerationX},
		{"accel Y", &raw.Ay, s.dev.GetAccelerationY},
		{"accel Z", &raw.Az, s.dev.GetAccelerationZ},
		{"gyro X", &raw.Gx, s.dev.GetRotationX},
		{"gyro Y", &raw.Gy, s.dev.GetRotationY},
		{"gyro Z", &raw.Gz, s.dev.GetRotationZ},
	}
	for _, r := range reads {
		v, err := r.read()
		if err != nil {
			return imu.IMURaw{}, errors.Wrapf(err, "IMU %s", r.name)
		}
		*r.dst = v
	}

	return raw, nil
}
