// Package cycle implements the daily prediction cycle: date resolution,
// the per-model generation unit, and the generate/verify/retry orchestrator.
package cycle

import (
	"time"
)

// referenceTimezone anchors the prediction day. The daily cron fires at
// 05:00 Pacific, so that hour is "hour zero" for a cycle.
const (
	referenceTimezone = "America/Los_Angeles"
	boundaryHour      = 5
)

// Clock resolves the logical prediction cycle date. Before the boundary
// hour in the reference timezone the cycle date is still the previous
// calendar day. Every component that needs "today" must go through a
// Clock rather than the system date.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock creates a Clock anchored to the reference timezone.
func NewClock() (*Clock, error) {
	loc, err := time.LoadLocation(referenceTimezone)
	if err != nil {
		return nil, err
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewClockAt creates a Clock with a fixed time source, for tests.
func NewClockAt(now func() time.Time) (*Clock, error) {
	c, err := NewClock()
	if err != nil {
		return nil, err
	}
	c.now = now
	return c, nil
}

// CycleDate returns the current cycle date as "YYYY-MM-DD".
func (c *Clock) CycleDate() string {
	return c.CycleDateAt(c.now())
}

// CycleDateAt returns the cycle date for an arbitrary instant.
func (c *Clock) CycleDateAt(t time.Time) string {
	local := t.In(c.loc)
	if local.Hour() < boundaryHour {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format("2006-01-02")
}

// NextBoundary returns the next 05:00 boundary in the reference timezone.
func (c *Clock) NextBoundary() time.Time {
	local := c.now().In(c.loc)
	boundary := time.Date(local.Year(), local.Month(), local.Day(), boundaryHour, 0, 0, 0, c.loc)
	if !local.Before(boundary) {
		boundary = boundary.AddDate(0, 0, 1)
	}
	return boundary
}

// UntilNextBoundary returns the time remaining until the next cycle starts.
func (c *Clock) UntilNextBoundary() time.Duration {
	return c.NextBoundary().Sub(c.now())
}
