package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/tiltframe/internal/compass"
	"github.com/relabs-tech/tiltframe/internal/config"
	"github.com/relabs-tech/tiltframe/internal/motion"
	"github.com/relabs-tech/tiltframe/internal/orientation"
)

// throttle drops lines that arrive less than interval after the last
// printed one. The clock is injectable for tests.
type throttle struct {
	interval time.Duration
	now      func() time.Time
	print    func(string)

	mu   sync.Mutex
	last time.Time
}

func newThrottle(interval time.Duration, print func(string)) *throttle {
	return &throttle{interval: interval, now: time.Now, print: print}
}

func (t *throttle) Println(line string) {
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		t.mu.Unlock()
		return
	}
	t.last = now
	t.mu.Unlock()

	t.print(line)
}

func printLine(s string) { fmt.Println(s) }

// RunConsoleMQTT prints orientation and motion messages, at most one of each
// per console_log_interval, and every compass message until ctx is done.
func RunConsoleMQTT(ctx context.Context) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTT, "console")
	if err != nil {
		return err
	}
	defer client.Disconnect(cfg.MQTT.DisconnectQuiesce)

	orient := newThrottle(cfg.ConsoleLogInterval, printLine)
	mot := newThrottle(cfg.ConsoleLogInterval, printLine)

	if err := subscribeJSON(client, cfg.Topics.Orientation, func(s orientation.Snapshot) {
		orient.Println(formatOrientation(s))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.Topics.Motion, func(s motion.Snapshot) {
		mot.Println(formatMotion(s))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.Topics.Compass, func(r compass.Reading) {
		printLine(formatCompass(r))
	}); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("console: shutting down")
	return nil
}
