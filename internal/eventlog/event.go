package eventlog

// StatusField is the changelog field that marks a workflow state transition.
const StatusField = "status"

// NoState is the from-state of the creation transition, whose source value is null.
const NoState = "None"

// RawChangeEvent is one field-change entry supplied by the source system.
type RawChangeEvent struct {
	Field     string `json:"field"`
	FromValue string `json:"fromValue,omitempty"`
	ToValue   string `json:"toValue"`
	// Timestamp is the ISO-8601 creation time of the group the change belongs to.
	Timestamp string `json:"timestamp"`
}

// EventGroup is a set of changes recorded together under one timestamp.
type EventGroup struct {
	Timestamp string           `json:"timestamp"`
	Events    []RawChangeEvent `json:"events"`
}

// RawIssue is one tracked work item as delivered by the fetch collaborator.
type RawIssue struct {
	Key string `json:"key"`
	// Weight is the sizing attribute (story points). Nil means unestimated.
	Weight *float64 `json:"weight,omitempty"`
	// Groups are in source order, which is not guaranteed to be chronological.
	Groups []EventGroup `json:"groups"`
	// Problems collects mapping issues found while reading the source record.
	Problems []error `json:"-"`
}

// TransitionStub is a status change before its end boundary and duration are known.
type TransitionStub struct {
	FromState string
	ToState   string
	StartTime string
}
