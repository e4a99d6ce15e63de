package config

import (
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/tiltframe/internal/orientation"
)

// Config holds all application configuration values.
type Config struct {
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Topics      TopicsConfig      `yaml:"topics"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Screen      ScreenConfig      `yaml:"screen"`
	IMU         IMUConfig         `yaml:"imu"`
	Compass     CompassConfig     `yaml:"compass"`
	Web         WebConfig         `yaml:"web"`
	Display     DisplayConfig     `yaml:"display"`
	Log         LogConfig         `yaml:"log"`

	// Timing
	ConsoleLogInterval time.Duration `yaml:"console_log_interval"`
}

type MQTTConfig struct {
	Broker            string `yaml:"broker"`
	ClientIDPrefix    string `yaml:"client_id_prefix"`
	DisconnectQuiesce uint   `yaml:"disconnect_quiesce_ms"`
}

type TopicsConfig struct {
	Orientation string `yaml:"orientation"`
	Motion      string `yaml:"motion"`
	Compass     string `yaml:"compass"`
	Screen      string `yaml:"screen"`
}

type CalibrationConfig struct {
	// Mode is "game", "world" or "unmanaged".
	Mode string `yaml:"mode"`
}

type ScreenConfig struct {
	// Degrees: 0, 90, 180, 270 or -90.
	Orientation float64 `yaml:"orientation"`
}

type IMUConfig struct {
	UseMock bool `yaml:"use_mock"`
	// UseMockRaw runs the IMU feed and tilt tracker on synthetic counts.
	// It takes precedence over UseMock.
	UseMockRaw bool   `yaml:"use_mock_raw"`
	SPIDevice  string `yaml:"spi_device"`
	CSPin      string `yaml:"cs_pin"`

	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	AccelRange byte `yaml:"accel_range"`
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	GyroRange byte `yaml:"gyro_range"`

	SampleInterval time.Duration `yaml:"sample_interval"`
}

type CompassConfig struct {
	Enable     bool          `yaml:"enable"`
	SerialPort string        `yaml:"serial_port"`
	BaudRate   uint          `yaml:"baud_rate"`
	MaxAge     time.Duration `yaml:"max_age"`
}

type WebConfig struct {
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

type DisplayConfig struct {
	I2CBus         string        `yaml:"i2c_bus"`
	UpdateInterval time.Duration `yaml:"update_interval"`
	// Content is "euler" or "quaternion".
	Content string `yaml:"content"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Package-level singleton: InitGlobal sets it once, Get reads it.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a configuration with every optional field filled in.
func Default() Config {
	return Config{
		MQTT: MQTTConfig{
			Broker:            "tcp://localhost:1883",
			ClientIDPrefix:    "tiltframe",
			DisconnectQuiesce: 250,
		},
		Topics: TopicsConfig{
			Orientation: "tiltframe/orientation",
			Motion:      "tiltframe/motion",
			Compass:     "tiltframe/compass",
			Screen:      "tiltframe/screen",
		},
		Calibration: CalibrationConfig{Mode: "game"},
		IMU: IMUConfig{
			UseMock:        true,
			SPIDevice:      "/dev/spidev0.0",
			CSPin:          "GPIO8",
			SampleInterval: 100 * time.Millisecond,
		},
		Compass: CompassConfig{
			SerialPort: "/dev/serial0",
			BaudRate:   9600,
			MaxAge:     2 * time.Second,
		},
		Web:                WebConfig{Port: 8080, StaticDir: "web"},
		Display:            DisplayConfig{I2CBus: "", UpdateInterval: 500 * time.Millisecond, Content: "euler"},
		Log:                LogConfig{Level: "info"},
		ConsoleLogInterval: time.Second,
	}
}

// Load reads the YAML configuration file. Missing fields keep their
// defaults.
func Load(configPath string) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks ranges and required fields.
func (c *Config) validate() error {
	if c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required")
	}
	if _, err := c.CalibrationMode(); err != nil {
		return errors.Wrap(err, "calibration.mode")
	}
	switch c.Screen.Orientation {
	case 0, 90, 180, 270, -90:
	default:
		return errors.Errorf("screen.orientation must be 0, 90, 180, 270 or -90, got %v", c.Screen.Orientation)
	}
	if c.IMU.AccelRange > 3 {
		return errors.Errorf("imu.accel_range must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", c.IMU.AccelRange)
	}
	if c.IMU.GyroRange > 3 {
		return errors.Errorf("imu.gyro_range must be 0-3 (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s), got %d", c.IMU.GyroRange)
	}
	if c.IMU.SampleInterval <= 0 {
		return errors.New("imu.sample_interval must be positive")
	}
	if !c.IMU.UseMock && !c.IMU.UseMockRaw && (c.IMU.SPIDevice == "" || c.IMU.CSPin == "") {
		return errors.New("imu.spi_device and imu.cs_pin are required unless imu.use_mock or imu.use_mock_raw is set")
	}
	if c.Compass.Enable && (c.Compass.SerialPort == "" || c.Compass.BaudRate == 0) {
		return errors.New("compass.serial_port and compass.baud_rate are required when compass.enable is true")
	}
	switch c.Display.Content {
	case "euler", "quaternion":
	default:
		return errors.Errorf("display.content must be euler or quaternion, got %q", c.Display.Content)
	}
	if c.ConsoleLogInterval <= 0 {
		return errors.New("console_log_interval must be positive")
	}
	return nil
}

// CalibrationMode parses Calibration.Mode.
func (c *Config) CalibrationMode() (orientation.Mode, error) {
	return orientation.ParseMode(c.Calibration.Mode)
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads; later calls are no-ops.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
