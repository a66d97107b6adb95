package clock

import "time"

// Clock abstracts wall-clock time so services can be tested with a
// fixed time source.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real system time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. Test helper.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
