// Package compass reads true heading from an NMEA receiver and feeds it into
// orientation samples for world mode calibration.
package compass

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/pkg/errors"

	"github.com/relabs-tech/tiltframe/internal/orientation"
)

const (
	// RMCAccuracyDeg is the accuracy reported for course over ground. It is
	// inside the world mode acceptance window.
	RMCAccuracyDeg = 10.0
	// RMCMinSpeedKnots is the speed below which course over ground is noise.
	RMCMinSpeedKnots = 1.0
	// DefaultMaxAge is how long a reading stays usable.
	DefaultMaxAge = 2 * time.Second
)

// ErrUnsupported is returned for sentences that carry no heading.
var ErrUnsupported = errors.New("sentence carries no heading")

// Reading is a single heading report suitable for JSON and MQTT.
type Reading struct {
	Heading  float64   `json:"heading"`  // degrees from true north
	Accuracy float64   `json:"accuracy"` // degrees, -1 when unusable
	Source   string    `json:"source"`   // NMEA sentence type
	Time     time.Time `json:"time"`
}

// Usable reports whether the reading passes the world mode accuracy gate.
func (r Reading) Usable() bool {
	return r.Accuracy >= 0
}

// ParseSentence parses one NMEA line. HDT gives true heading with accuracy
// 0; RMC gives course over ground, usable only when the fix is valid and
// the receiver is moving.
func ParseSentence(line string) (Reading, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return Reading{}, ErrUnsupported
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return Reading{}, errors.Wrap(err, "parsing NMEA")
	}

	switch sentence.DataType() {
	case nmea.TypeHDT:
		m := sentence.(nmea.HDT)
		return Reading{Heading: m.Heading, Accuracy: 0, Source: nmea.TypeHDT}, nil

	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		r := Reading{Heading: m.Course, Accuracy: -1, Source: nmea.TypeRMC}
		if m.Validity == nmea.ValidRMC && m.Speed >= RMCMinSpeedKnots {
			r.Accuracy = RMCAccuracyDeg
		}
		return r, nil
	}

	return Reading{}, ErrUnsupported
}

// Tracker keeps the latest heading reading.
type Tracker struct {
	MaxAge time.Duration

	mu     sync.RWMutex
	latest Reading
	have   bool
	now    func() time.Time
}

// NewTracker creates a tracker; maxAge <= 0 uses DefaultMaxAge.
func NewTracker(maxAge time.Duration) *Tracker {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Tracker{MaxAge: maxAge, now: time.Now}
}

// Update stores r, stamping it with the current time.
func (t *Tracker) Update(r Reading) Reading {
	r.Time = t.now()

	t.mu.Lock()
	t.latest = r
	t.have = true
	t.mu.Unlock()

	return r
}

// Latest returns the latest reading if it is younger than MaxAge.
func (t *Tracker) Latest() (Reading, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.have || t.now().Sub(t.latest.Time) > t.MaxAge {
		return Reading{}, false
	}
	return t.latest, true
}

// Apply fills the compass fields of s from a fresh reading. Stale or
// missing readings leave s untouched.
func (t *Tracker) Apply(s *orientation.Sample) {
	r, ok := t.Latest()
	if !ok {
		return
	}
	s.CompassHeading = orientation.Float(r.Heading)
	s.CompassAccuracy = orientation.Float(r.Accuracy)
}

// ReadLines calls fn for every non-empty line of r until EOF, a read error
// or ctx is done. Cancellation is checked between lines; close r to unblock
// a pending read.
func ReadLines(ctx context.Context, r io.Reader, fn func(line string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			fn(line)
		}
	}
	return errors.Wrap(scanner.Err(), "reading NMEA stream")
}
