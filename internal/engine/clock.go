package engine

import "time"

// Clock supplies the timestamps used to measure query duration.
//
// SystemClock reads wall time; tests inject testutil.StepClock so TimeMS is
// reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
//
// Thread-safety: SystemClock is stateless and safe for concurrent use.
type SystemClock struct{}

// Now returns the current wall-clock time. time.Now carries a monotonic
// reading, so Sub between two calls is immune to wall-clock jumps.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// elapsedMS converts a duration to fractional milliseconds.
func elapsedMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
