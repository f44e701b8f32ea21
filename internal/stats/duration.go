package stats

import (
	"fmt"
	"math"

	"jira-cycle-time/internal/jira"
)

// ParseError is returned when a timestamp does not match the Jira format.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed timestamp %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const secondsPerDay = 86400

// CalculateDuration returns the elapsed time between two offset-aware timestamps.
//
// Hours come from the exact elapsed seconds. Days are whole elapsed calendar days plus the
// fraction of the remaining whole seconds, so sub-second precision is dropped there; the two
// figures can therefore differ slightly from hours/24.
func CalculateDuration(start, end string) (hours, days float64, err error) {
	s, err := jira.ParseTime(start)
	if err != nil {
		return 0, 0, &ParseError{Value: start, Err: err}
	}
	e, err := jira.ParseTime(end)
	if err != nil {
		return 0, 0, &ParseError{Value: end, Err: err}
	}

	d := e.Sub(s)
	hours = d.Hours()

	// Split into whole days and a non-negative whole-second remainder.
	totalSeconds := math.Floor(d.Seconds())
	wholeDays := math.Floor(totalSeconds / secondsPerDay)
	remainder := totalSeconds - wholeDays*secondsPerDay
	days = wholeDays + remainder/secondsPerDay

	return Round2(hours), Round2(days), nil
}
