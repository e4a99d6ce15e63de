// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"sync"

	"github.com/relabs-tech/tiltframe/internal/rotation"
)

// Callback receives every raw sample delivered to a started adapter.
type Callback func(Sample)

// Options configures a DeviceOrientation.
type Options struct {
	Mode Mode
}

// Frame is one orientation in all three representations.
type Frame struct {
	Euler      rotation.Euler      `json:"euler"`
	Quaternion rotation.Quaternion `json:"quaternion"`
	Matrix     rotation.Matrix     `json:"matrix"`
}

// Snapshot is a consistent view of the adapter, suitable for publishing.
type Snapshot struct {
	Raw            Sample      `json:"raw"`
	Absolute       bool        `json:"absolute"`
	ScreenAngle    float64     `json:"screen_angle"`
	Calibration    Calibration `json:"calibration"`
	FixedFrame     Frame       `json:"fixed_frame"`
	ScreenAdjusted Frame       `json:"screen_adjusted"`
}

// DeviceOrientation owns the calibration state and the latest raw sample
// for one orientation stream. Queries are pure functions of that state and
// never fail: before the first sample they report the identity rotation.
type DeviceOrientation struct {
	platform Platform

	mu          sync.RWMutex
	cal         Calibration
	data        *Sample
	screenAngle float64
	callbacks   []Callback
	active      bool

	cancelSample      func()
	cancelScreen      func()
	cancelCalibration func()
}

// NewDeviceOrientation creates a stopped adapter on top of p.
func NewDeviceOrientation(p Platform, opts Options) *DeviceOrientation {
	return &DeviceOrientation{
		platform:    p,
		cal:         Calibration{Mode: opts.Mode},
		screenAngle: p.ScreenAngle(),
	}
}

// Start registers cb (if not nil) and subscribes to the platform. Calling
// Start on an active adapter only adds the callback. Callbacks run in
// registration order.
func (d *DeviceOrientation) Start(cb Callback) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cb != nil {
		d.callbacks = append(d.callbacks, cb)
	}
	if d.active {
		return
	}
	d.active = true
	d.screenAngle = d.platform.ScreenAngle()

	// Calibration observes each sample before the adapter stores it.
	if d.cal.listening() {
		d.cancelCalibration = d.platform.OnOrientation(d.calibrate)
	}
	d.cancelScreen = d.platform.OnScreenChange(d.handleScreenChange)
	d.cancelSample = d.platform.OnOrientation(d.handleSample)
}

// Listen is an alias for Start.
func (d *DeviceOrientation) Listen(cb Callback) {
	d.Start(cb)
}

// Stop deregisters every platform subscription. Last known values stay
// queryable; a later Start resumes an unfinished calibration.
func (d *DeviceOrientation) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return
	}
	d.active = false

	for _, cancel := range []*func(){&d.cancelSample, &d.cancelScreen, &d.cancelCalibration} {
		if *cancel != nil {
			(*cancel)()
			*cancel = nil
		}
	}
}

func (d *DeviceOrientation) handleSample(s Sample) {
	d.mu.Lock()
	d.data = &s
	callbacks := make([]Callback, len(d.callbacks))
	copy(callbacks, d.callbacks)
	d.mu.Unlock()

	for _, cb := range callbacks {
		cb(s)
	}
}

func (d *DeviceOrientation) calibrate(s Sample) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cal.observe(s, d.screenAngle) || d.cancelCalibration == nil {
		return
	}
	d.cancelCalibration()
	d.cancelCalibration = nil
}

func (d *DeviceOrientation) handleScreenChange() {
	angle := d.platform.ScreenAngle()

	d.mu.Lock()
	d.screenAngle = angle
	d.mu.Unlock()
}

type view struct {
	data        *Sample
	cal         Calibration
	screenAngle float64
}

func (d *DeviceOrientation) view() view {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return view{data: d.data, cal: d.cal, screenAngle: d.screenAngle}
}

// fixedAngles applies the calibrated alpha offset to the raw angles.
func (v view) fixedAngles() rotation.Euler {
	var angles rotation.Euler
	if v.data != nil {
		angles = v.data.Angles()
	}
	if v.cal.Offset == nil {
		return angles
	}

	offset := rotation.EulerFromMatrix(
		rotation.MatrixFromEuler(*v.cal.Offset).RotateZ(-v.cal.OffsetScreen),
	)
	alpha := offset.Alpha
	if alpha < 0 {
		alpha += 360
	}
	angles.Alpha -= math.Mod(alpha, 360)

	return angles
}

func (v view) fixedFrame() Frame {
	angles := v.fixedAngles()
	m := rotation.MatrixFromEuler(angles)
	return Frame{
		Euler:      rotation.EulerFromMatrix(m),
		Quaternion: rotation.QuaternionFromEuler(angles),
		Matrix:     m,
	}
}

func (v view) screenAdjusted(fixed Frame) Frame {
	m := fixed.Matrix.RotateZ(-v.screenAngle)
	return Frame{
		Euler:      rotation.EulerFromMatrix(m),
		Quaternion: fixed.Quaternion.RotateZ(-v.screenAngle),
		Matrix:     m,
	}
}

// FixedFrameQuaternion returns the calibrated orientation as a quaternion.
func (d *DeviceOrientation) FixedFrameQuaternion() rotation.Quaternion {
	return rotation.QuaternionFromEuler(d.view().fixedAngles())
}

// FixedFrameMatrix returns the calibrated orientation as a rotation matrix.
func (d *DeviceOrientation) FixedFrameMatrix() rotation.Matrix {
	return rotation.MatrixFromEuler(d.view().fixedAngles())
}

// FixedFrameEuler returns the calibrated orientation as Euler angles.
func (d *DeviceOrientation) FixedFrameEuler() rotation.Euler {
	return rotation.EulerFromMatrix(d.FixedFrameMatrix())
}

// ScreenAdjustedQuaternion returns the fixed-frame quaternion rotated by the
// current screen rotation.
func (d *DeviceOrientation) ScreenAdjustedQuaternion() rotation.Quaternion {
	v := d.view()
	return rotation.QuaternionFromEuler(v.fixedAngles()).RotateZ(-v.screenAngle)
}

// ScreenAdjustedMatrix returns the fixed-frame matrix rotated by the current
// screen rotation.
func (d *DeviceOrientation) ScreenAdjustedMatrix() rotation.Matrix {
	v := d.view()
	return rotation.MatrixFromEuler(v.fixedAngles()).RotateZ(-v.screenAngle)
}

// ScreenAdjustedEuler returns the screen-adjusted orientation as Euler
// angles.
func (d *DeviceOrientation) ScreenAdjustedEuler() rotation.Euler {
	return rotation.EulerFromMatrix(d.ScreenAdjustedMatrix())
}

// IsAbsolute reports whether the latest sample is referenced to true north.
func (d *DeviceOrientation) IsAbsolute() bool {
	v := d.view()
	return v.data != nil && v.data.IsAbsolute()
}

// LastRawSample returns the latest raw sample, or an empty one.
func (d *DeviceOrientation) LastRawSample() Sample {
	v := d.view()
	if v.data == nil {
		return Sample{}
	}
	return *v.data
}

// HasData reports whether at least one sample has been delivered.
func (d *DeviceOrientation) HasData() bool {
	return d.view().data != nil
}

// Calibration returns a copy of the calibration state.
func (d *DeviceOrientation) Calibration() Calibration {
	return d.view().cal
}

// ScreenAngle returns the cached screen rotation in radians.
func (d *DeviceOrientation) ScreenAngle() float64 {
	return d.view().screenAngle
}

// Snapshot returns every projection computed from one consistent state.
func (d *DeviceOrientation) Snapshot() Snapshot {
	v := d.view()
	fixed := v.fixedFrame()

	snap := Snapshot{
		ScreenAngle:    v.screenAngle,
		Calibration:    v.cal,
		FixedFrame:     fixed,
		ScreenAdjusted: v.screenAdjusted(fixed),
	}
	if v.data != nil {
		snap.Raw = *v.data
		snap.Absolute = v.data.IsAbsolute()
	}
	return snap
}
