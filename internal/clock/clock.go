// Package clock supplies the time source used to bucket usage windows.
package clock

import "time"

// DayFormat is the layout for UTC calendar days stored in usage rows.
const DayFormat = "2006-01-02"

// Clock provides the current instant. Injected so entitlement and payment
// decisions can be tested against fixed times.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by time.Now.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time { return time.Now().UTC() }

// DayOf returns the UTC calendar day of t in DayFormat.
func DayOf(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Fixed is a settable Clock for tests.
type Fixed struct {
	Time time.Time
}

// Now returns the fixed instant.
func (f *Fixed) Now() time.Time { return f.Time }

// Advance moves the fixed instant forward by d.
func (f *Fixed) Advance(d time.Duration) { f.Time = f.Time.Add(d) }
