package app

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/tiltframe/internal/config"
	"github.com/relabs-tech/tiltframe/internal/orientation"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// renderLines draws up to four lines of 7x13 text on a blank frame.
func renderLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, lineHeight*(i+1))
		drawer.DrawString(line)
	}
	return img
}

// renderSnapshot shows the screen-adjusted orientation, as Euler angles or
// as a quaternion.
func renderSnapshot(snap *orientation.Snapshot, content string) *image1bit.VerticalLSB {
	if snap == nil {
		return renderLines("", "Orientation", "Waiting...")
	}

	status := snap.Calibration.State.String()
	if snap.Absolute {
		status += " abs"
	}

	if content == "quaternion" {
		q := snap.ScreenAdjusted.Quaternion
		return renderLines(
			fmt.Sprintf("x:%7.4f y:%7.4f", q.X, q.Y),
			fmt.Sprintf("z:%7.4f w:%7.4f", q.Z, q.W),
			"",
			status,
		)
	}

	e := snap.ScreenAdjusted.Euler
	return renderLines(
		fmt.Sprintf("A: %6.1f", e.Alpha),
		fmt.Sprintf("B: %6.1f", e.Beta),
		fmt.Sprintf("G: %6.1f", e.Gamma),
		status,
	)
}

// RunDisplay shows the latest orientation snapshot on an SSD1306 OLED.
func RunDisplay(ctx context.Context) error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize periph")
	}

	bus, err := i2creg.Open(cfg.Display.I2CBus)
	if err != nil {
		return errors.Wrap(err, "failed to open I2C bus")
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return errors.Wrap(err, "failed to initialize display")
	}
	defer dev.Halt()

	if err := dev.Draw(dev.Bounds(), renderLines("", "  tiltframe", "  starting"), image.Point{}); err != nil {
		log.WithError(err).Warn("display: error showing splash")
	}

	var (
		mu   sync.RWMutex
		last *orientation.Snapshot
	)

	client, err := connectMQTT(cfg.MQTT, "display")
	if err != nil {
		return err
	}
	defer client.Disconnect(cfg.MQTT.DisconnectQuiesce)

	if err := subscribeJSON(client, cfg.Topics.Orientation, func(s orientation.Snapshot) {
		mu.Lock()
		last = &s
		mu.Unlock()
	}); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Display.UpdateInterval)
	defer ticker.Stop()

	log.Info("display: starting update loop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		mu.RLock()
		snap := last
		mu.RUnlock()

		if err := dev.Draw(dev.Bounds(), renderSnapshot(snap, cfg.Display.Content), image.Point{}); err != nil {
			log.WithError(err).Warn("display: error updating display")
		}
	}
}
