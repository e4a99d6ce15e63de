package app

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/tiltframe/internal/compass"
	"github.com/relabs-tech/tiltframe/internal/config"
	"github.com/relabs-tech/tiltframe/internal/fulltilt"
	"github.com/relabs-tech/tiltframe/internal/imu"
	"github.com/relabs-tech/tiltframe/internal/motion"
	"github.com/relabs-tech/tiltframe/internal/orientation"
	"github.com/relabs-tech/tiltframe/internal/platform"
	"github.com/relabs-tech/tiltframe/internal/sensors"
)

// producer publishes a snapshot for every sample delivered to the adapters.
type producer struct {
	orientation *orientation.DeviceOrientation
	motion      *motion.DeviceMotion
	pub         Publisher
	topics      config.TopicsConfig
}

func newProducer(o *orientation.DeviceOrientation, m *motion.DeviceMotion, pub Publisher, topics config.TopicsConfig) *producer {
	return &producer{orientation: o, motion: m, pub: pub, topics: topics}
}

func (p *producer) start() {
	p.orientation.Listen(func(orientation.Sample) {
		if err := p.pub.Publish(p.topics.Orientation, p.orientation.Snapshot()); err != nil {
			log.WithError(err).Warn("orientation publish failed")
		}
	})
	p.motion.Listen(func(motion.Sample) {
		if err := p.pub.Publish(p.topics.Motion, p.motion.Snapshot()); err != nil {
			log.WithError(err).Warn("motion publish failed")
		}
	})
}

func (p *producer) stop() {
	p.orientation.Stop()
	p.motion.Stop()
}

// newFeed picks the raw mock, the orientation mock or the MPU-9250 feed.
func newFeed(cfg config.IMUConfig, tracker *compass.Tracker) (platform.Feed, error) {
	scale := imu.ScaleFromRanges(cfg.AccelRange, cfg.GyroRange)

	if cfg.UseMockRaw {
		log.Info("using mock raw IMU counts")
		return sensors.NewIMUFeed(sensors.NewMockRawSource(scale), scale, tracker), nil
	}

	if cfg.UseMock {
		log.Info("using mock orientation source")
		src := orientation.NewMockSource()
		return sensors.NewSourceFeed(src), nil
	}

	src, err := sensors.NewMPU9250Source(cfg)
	if err != nil {
		return nil, err
	}
	log.WithField("spi", cfg.SPIDevice).Info("using MPU-9250 for orientation")
	return sensors.NewIMUFeed(src, scale, tracker), nil
}

// RunProducer reads the IMU, runs calibration and screen compensation, and
// publishes orientation and motion snapshots to MQTT until ctx is done.
func RunProducer(ctx context.Context) error {
	log.Info("starting tiltframe producer")

	cfg := config.Get()
	mode, err := cfg.CalibrationMode()
	if err != nil {
		return err
	}

	client, err := connectMQTT(cfg.MQTT, "producer")
	if err != nil {
		return err
	}
	defer client.Disconnect(cfg.MQTT.DisconnectQuiesce)

	tracker := compass.NewTracker(cfg.Compass.MaxAge)
	feed, err := newFeed(cfg.IMU, tracker)
	if err != nil {
		return err
	}

	hub := platform.NewHub()
	hub.SetScreenOrientation(cfg.Screen.Orientation)

	if err := subscribeJSON(client, cfg.Topics.Compass, func(r compass.Reading) {
		tracker.Update(r)
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.Topics.Screen, func(deg float64) {
		hub.SetScreenOrientation(deg)
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- hub.Run(ctx, feed, cfg.IMU.SampleInterval)
	}()

	o, err := fulltilt.GetDeviceOrientation(ctx, hub, orientation.Options{Mode: mode})
	if err != nil {
		return err
	}
	m, err := fulltilt.GetDeviceMotion(ctx, hub)
	if err != nil {
		o.Stop()
		return err
	}

	p := newProducer(o, m, mqttPublisher{client: client}, cfg.Topics)
	p.start()
	defer p.stop()

	log.WithField("mode", mode).Info("publishing orientation and motion")

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
