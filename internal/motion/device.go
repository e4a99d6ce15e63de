package motion

import "sync"

// Callback receives every raw sample delivered to a started adapter.
type Callback func(Sample)

// Snapshot is the latest sample with its screen-adjusted projections.
type Snapshot struct {
	Raw                          Sample       `json:"raw"`
	ScreenAngle                  float64      `json:"screen_angle"`
	Acceleration                 Vector       `json:"acceleration"`
	AccelerationIncludingGravity Vector       `json:"acceleration_including_gravity"`
	RotationRate                 RotationRate `json:"rotation_rate"`
}

// DeviceMotion keeps the latest motion sample and projects it into screen
// coordinates on demand. Missing data reads as zero vectors.
type DeviceMotion struct {
	platform Platform

	mu          sync.RWMutex
	data        *Sample
	screenAngle float64
	callbacks   []Callback
	active      bool

	cancelSample func()
	cancelScreen func()
}

// NewDeviceMotion creates a stopped adapter on top of p.
func NewDeviceMotion(p Platform) *DeviceMotion {
	return &DeviceMotion{
		platform:    p,
		screenAngle: p.ScreenAngle(),
	}
}

// Start registers cb (if not nil) and subscribes to the platform once.
func (d *DeviceMotion) Start(cb Callback) {
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

	d.cancelScreen = d.platform.OnScreenChange(d.handleScreenChange)
	d.cancelSample = d.platform.OnMotion(d.handleSample)
}

// Listen is an alias for Start.
func (d *DeviceMotion) Listen(cb Callback) {
	d.Start(cb)
}

// Stop deregisters from the platform. The last sample stays queryable.
func (d *DeviceMotion) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return
	}
	d.active = false

	d.cancelSample()
	d.cancelScreen()
	d.cancelSample, d.cancelScreen = nil, nil
}

func (d *DeviceMotion) handleSample(s Sample) {
	d.mu.Lock()
	d.data = &s
	callbacks := append([]Callback(nil), d.callbacks...)
	d.mu.Unlock()

	for _, cb := range callbacks {
		cb(s)
	}
}

func (d *DeviceMotion) handleScreenChange() {
	angle := d.platform.ScreenAngle()

	d.mu.Lock()
	d.screenAngle = angle
	d.mu.Unlock()
}

func (d *DeviceMotion) state() (*Sample, float64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data, d.screenAngle
}

func adjust(data *Sample, screenAngle float64) Snapshot {
	snap := Snapshot{ScreenAngle: screenAngle}
	if data == nil {
		return snap
	}

	snap.Raw = *data
	if data.Acceleration != nil {
		snap.Acceleration = CompensateVector(*data.Acceleration, screenAngle)
	}
	if data.AccelerationIncludingGravity != nil {
		snap.AccelerationIncludingGravity = CompensateVector(*data.AccelerationIncludingGravity, screenAngle)
	}
	if data.RotationRate != nil {
		snap.RotationRate = CompensateRotationRate(*data.RotationRate, screenAngle)
	}
	return snap
}

// ScreenAdjustedAcceleration returns the latest acceleration in screen
// coordinates.
func (d *DeviceMotion) ScreenAdjustedAcceleration() Vector {
	return adjust(d.state()).Acceleration
}

// ScreenAdjustedAccelerationIncludingGravity returns the latest acceleration
// including gravity in screen coordinates.
func (d *DeviceMotion) ScreenAdjustedAccelerationIncludingGravity() Vector {
	return adjust(d.state()).AccelerationIncludingGravity
}

// ScreenAdjustedRotationRate returns the latest rotation rate in screen
// coordinates.
func (d *DeviceMotion) ScreenAdjustedRotationRate() RotationRate {
	return adjust(d.state()).RotationRate
}

// LastRawSample returns the latest raw sample, or an empty one.
func (d *DeviceMotion) LastRawSample() Sample {
	data, _ := d.state()
	if data == nil {
		return Sample{}
	}
	return *data
}

// HasData reports whether at least one sample has been delivered.
func (d *DeviceMotion) HasData() bool {
	data, _ := d.state()
	return data != nil
}

// ScreenAngle returns the cached screen rotation in radians.
func (d *DeviceMotion) ScreenAngle() float64 {
	_, angle := d.state()
	return angle
}

// Snapshot returns the raw sample and all projections from one state.
func (d *DeviceMotion) Snapshot() Snapshot {
	return adjust(d.state())
}
