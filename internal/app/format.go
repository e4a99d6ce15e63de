package app

import (
	"fmt"

	"github.com/relabs-tech/tiltframe/internal/compass"
	"github.com/relabs-tech/tiltframe/internal/motion"
	"github.com/relabs-tech/tiltframe/internal/orientation"
	"github.com/relabs-tech/tiltframe/internal/rotation"
)

func formatOrientation(s orientation.Snapshot) string {
	f := s.FixedFrame.Euler
	a := s.ScreenAdjusted.Euler
	return fmt.Sprintf(
		"[ORIENT] fixed α=%6.2f β=%6.2f γ=%6.2f  screen α=%6.2f β=%6.2f γ=%6.2f  rot=%4.0f° cal=%s",
		f.Alpha, f.Beta, f.Gamma,
		a.Alpha, a.Beta, a.Gamma,
		s.ScreenAngle*rotation.RadToDeg, s.Calibration.State,
	)
}

func formatMotion(s motion.Snapshot) string {
	g := s.AccelerationIncludingGravity
	r := s.RotationRate
	return fmt.Sprintf(
		"[MOTION] g x=%6.2f y=%6.2f z=%6.2f  rate α=%7.2f β=%7.2f γ=%7.2f",
		g.X, g.Y, g.Z, r.Alpha, r.Beta, r.Gamma,
	)
}

func formatCompass(r compass.Reading) string {
	return fmt.Sprintf("[COMPASS] heading=%6.2f accuracy=%5.1f source=%s", r.Heading, r.Accuracy, r.Source)
}
