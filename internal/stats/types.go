package stats

import "fmt"

// Ongoing marks the end of a transition that has no observed successor.
const Ongoing = "Ongoing"

// Transition is a single observed status change annotated with its duration.
type Transition struct {
	FromState string `json:"from"`
	ToState   string `json:"to"`
	StartTime string `json:"startTime"`
	// EndTime is the StartTime of the next transition, or Ongoing for the last one.
	EndTime string `json:"endTime"`
	// DurationHours and DurationDays are nil for the Ongoing transition and for
	// transitions whose boundaries could not be parsed.
	DurationHours *float64 `json:"durationHours"`
	DurationDays  *float64 `json:"durationDays"`
}

// IsOngoing reports whether the transition represents the issue's current state.
func (t Transition) IsOngoing() bool {
	return t.EndTime == Ongoing
}

// Label returns the canonical "From: X To: Y" name used by the allow-list.
func (t Transition) Label() string {
	return TransitionLabel(t.FromState, t.ToState)
}

// TransitionLabel builds the canonical label for a state pair.
func TransitionLabel(from, to string) string {
	return fmt.Sprintf("From: %s To: %s", from, to)
}

// ParsedIssue is an issue with its fully annotated, chronological transition list.
type ParsedIssue struct {
	TicketID    string       `json:"ticketId"`
	Weight      *float64     `json:"weight"`
	Transitions []Transition `json:"transitions"`
	// Errors lists the problems that made this record partial.
	Errors []error `json:"-"`
}

// AggregationKey groups duration samples by transition label and weight.
type AggregationKey struct {
	Label  string
	Weight float64
}

// SkippedRecord describes an issue whose data was partially or wholly unusable.
type SkippedRecord struct {
	TicketID string   `json:"ticketId"`
	Reasons  []string `json:"reasons"`
}

// Summary is the result of folding parsed issues together.
type Summary struct {
	TotalIssues int `json:"totalIssues"`
	// Distribution counts estimated issues per weight.
	Distribution map[float64]int `json:"-"`
	// Buckets holds duration-hour samples per (label, weight).
	Buckets map[AggregationKey][]float64 `json:"-"`
	// Transitions is the allow-list in declaration order.
	Transitions []string        `json:"transitions"`
	Skipped     []SkippedRecord `json:"skipped,omitempty"`
}
