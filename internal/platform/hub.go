// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package platform provides the host side of the orientation and motion
// adapters: the current screen rotation and ordered observer lists for raw
// samples.
package platform

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/tiltframe/internal/motion"
	"github.com/relabs-tech/tiltframe/internal/orientation"
	"github.com/relabs-tech/tiltframe/internal/rotation"
)

// Feed produces paired orientation and motion samples, one per tick.
type Feed interface {
	Next() (orientation.Sample, motion.Sample, error)
}

type entry[F any] struct {
	id int
	fn F
}

// Hub implements orientation.Platform and motion.Platform. Observers are
// called synchronously in registration order, outside the hub lock, so an
// observer may cancel itself or register others.
type Hub struct {
	mu          sync.Mutex
	angle       float64
	nextID      int
	screen      []entry[func()]
	orientation []entry[func(orientation.Sample)]
	motion      []entry[func(motion.Sample)]
}

var (
	_ orientation.Platform = (*Hub)(nil)
	_ motion.Platform      = (*Hub)(nil)
)

// NewHub creates a hub with the screen at 0°.
func NewHub() *Hub {
	return &Hub{}
}

// ScreenAngle returns the current screen rotation in radians.
func (h *Hub) ScreenAngle() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.angle
}

// ScreenAngleFromDegrees maps a screen orientation in degrees to the
// canonical radian constants. 270 maps to ScreenRotation270 so it lands in
// the same compensation case as -90. Other values are converted as is.
func ScreenAngleFromDegrees(deg float64) float64 {
	switch deg {
	case 0:
		return rotation.ScreenRotation0
	case 90:
		return rotation.ScreenRotation90
	case 180:
		return rotation.ScreenRotation180
	case 270:
		return rotation.ScreenRotation270
	case -90:
		return rotation.ScreenRotationMinus90
	default:
		return deg * rotation.DegToRad
	}
}

// SetScreenOrientation sets the screen rotation in degrees and notifies the
// screen change observers.
func (h *Hub) SetScreenOrientation(deg float64) {
	h.mu.Lock()
	h.angle = ScreenAngleFromDegrees(deg)
	observers := snapshot(h.screen)
	h.mu.Unlock()

	log.WithField("degrees", deg).Debug("screen orientation changed")

	for _, fn := range observers {
		fn()
	}
}

// OnScreenChange registers fn for screen rotation changes.
func (h *Hub) OnScreenChange(fn func()) (cancel func()) {
	return register(h, &h.screen, fn)
}

// OnOrientation registers fn for raw orientation samples.
func (h *Hub) OnOrientation(fn func(orientation.Sample)) (cancel func()) {
	return register(h, &h.orientation, fn)
}

// OnMotion registers fn for raw motion samples.
func (h *Hub) OnMotion(fn func(motion.Sample)) (cancel func()) {
	return register(h, &h.motion, fn)
}

// PublishOrientation delivers s to every orientation observer.
func (h *Hub) PublishOrientation(s orientation.Sample) {
	h.mu.Lock()
	observers := snapshot(h.orientation)
	h.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
}

// PublishMotion delivers s to every motion observer.
func (h *Hub) PublishMotion(s motion.Sample) {
	h.mu.Lock()
	observers := snapshot(h.motion)
	h.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
}

// Run reads feed every interval and publishes both samples until ctx is
// done. Read errors are logged and the tick is skipped.
func (h *Hub) Run(ctx context.Context, feed Feed, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		o, m, err := feed.Next()
		if err != nil {
			log.WithError(err).Warn("error reading sample feed")
			continue
		}

		h.PublishOrientation(o)
		h.PublishMotion(m)
	}
}

func register[F any](h *Hub, list *[]entry[F], fn F) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	*list = append(*list, entry[F]{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, e := range *list {
				if e.id == id {
					*list = append((*list)[:i:i], (*list)[i+1:]...)
					return
				}
			}
		})
	}
}

// snapshot copies the observer funcs; callers hold h.mu.
func snapshot[F any](list []entry[F]) []F {
	out := make([]F, len(list))
	for i, e := range list {
		out[i] = e.fn
	}
	return out
}
