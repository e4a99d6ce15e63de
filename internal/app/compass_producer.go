package app

import (
	"context"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/tiltframe/internal/compass"
	"github.com/relabs-tech/tiltframe/internal/config"
)

// handleCompassLine parses one NMEA line and publishes the reading.
// Sentences without a heading are ignored.
func handleCompassLine(line string, tracker *compass.Tracker, pub Publisher, topic string) {
	r, err := compass.ParseSentence(line)
	if errors.Is(err, compass.ErrUnsupported) {
		return
	}
	if err != nil {
		// noisy receivers or partial sentences
		log.WithError(err).Debug("NMEA parse error")
		return
	}

	r = tracker.Update(r)
	if err := pub.Publish(topic, r); err != nil {
		log.WithError(err).Warn("compass publish failed")
	}
}

// RunCompassProducer reads heading sentences from the serial port and
// publishes them to MQTT until ctx is done or the port fails.
func RunCompassProducer(ctx context.Context) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTT, "compass")
	if err != nil {
		return err
	}
	defer client.Disconnect(cfg.MQTT.DisconnectQuiesce)

	serialOpts := serial.OpenOptions{
		PortName:              cfg.Compass.SerialPort,
		BaudRate:              cfg.Compass.BaudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return errors.Wrapf(err, "open serial port %s", serialOpts.PortName)
	}
	defer port.Close()
	log.WithFields(log.Fields{"port": serialOpts.PortName, "baud": serialOpts.BaudRate}).Info("compass serial port opened")

	// Closing the port unblocks the pending read.
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	tracker := compass.NewTracker(cfg.Compass.MaxAge)
	pub := mqttPublisher{client: client}

	err = compass.ReadLines(ctx, port, func(line string) {
		handleCompassLine(line, tracker, pub, cfg.Topics.Compass)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
