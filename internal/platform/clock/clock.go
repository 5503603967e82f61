package clock

import "time"

// Clock abstracts time so duration math stays deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock keeps the monotonic reading of time.Now, so elapsed-time
// arithmetic is immune to wall-clock adjustments while the process runs.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
