package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/tiltframe/internal/orientation"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiltframe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)

	mode, err := cfg.CalibrationMode()
	require.NoError(t, err)
	assert.Equal(t, orientation.ModeGame, mode)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, `
mqtt:
  broker: tcp://pi.local:1883
calibration:
  mode: world
screen:
  orientation: 270
imu:
  use_mock: false
  spi_device: /dev/spidev0.1
  cs_pin: GPIO7
  accel_range: 2
  gyro_range: 1
  sample_interval: 20ms
compass:
  enable: true
  serial_port: /dev/ttyUSB0
  baud_rate: 4800
display:
  content: quaternion
log:
  level: debug
  json: true
`))
	require.NoError(t, err)

	assert.Equal(t, "tcp://pi.local:1883", cfg.MQTT.Broker)
	assert.Equal(t, "tiltframe", cfg.MQTT.ClientIDPrefix)
	assert.Equal(t, 270.0, cfg.Screen.Orientation)
	assert.Equal(t, byte(2), cfg.IMU.AccelRange)
	assert.Equal(t, 20*time.Millisecond, cfg.IMU.SampleInterval)
	assert.Equal(t, uint(4800), cfg.Compass.BaudRate)
	assert.Equal(t, 2*time.Second, cfg.Compass.MaxAge)
	assert.Equal(t, "quaternion", cfg.Display.Content)

	mode, err := cfg.CalibrationMode()
	require.NoError(t, err)
	assert.Equal(t, orientation.ModeWorld, mode)
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"broker", "mqtt:\n  broker: ''\n", "mqtt.broker is required"},
		{"mode", "calibration:\n  mode: compass\n", `calibration.mode: unknown calibration mode "compass"`},
		{"screen", "screen:\n  orientation: 45\n", "screen.orientation must be 0, 90, 180, 270 or -90, got 45"},
		{"accel", "imu:\n  accel_range: 4\n", "imu.accel_range must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got 4"},
		{"interval", "imu:\n  sample_interval: 0s\n", "imu.sample_interval must be positive"},
		{"spi", "imu:\n  use_mock: false\n  spi_device: ''\n", "imu.spi_device and imu.cs_pin are required unless imu.use_mock or imu.use_mock_raw is set"},
		{"compass", "compass:\n  enable: true\n  serial_port: ''\n", "compass.serial_port and compass.baud_rate are required when compass.enable is true"},
		{"display", "display:\n  content: gps\n", `display.content must be euler or quaternion, got "gps"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.yaml))
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestLoad_MockRawNeedsNoSPI(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "imu:\n  use_mock: false\n  use_mock_raw: true\n  spi_device: ''\n"))
	require.NoError(t, err)
	assert.True(t, cfg.IMU.UseMockRaw)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeTempConfig(t, "mqtt: [\n"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestApplyLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	require.NoError(t, LogConfig{Level: "debug", JSON: true}.ApplyLogging())
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	assert.Error(t, LogConfig{Level: "chatty"}.ApplyLogging())
}
