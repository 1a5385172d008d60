package term

import "time"

// Clock abstracts time so the orphan sweep and activity timestamps can be
// driven by a simulated clock in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
