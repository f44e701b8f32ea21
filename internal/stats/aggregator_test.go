package stats

import (
	"reflect"
	"testing"
)

func closed(from, to string, hours float64) Transition {
	days := Round2(hours / 24)
	return Transition{FromState: from, ToState: to, StartTime: "s", EndTime: "e", DurationHours: &hours, DurationDays: &days}
}

func ongoing(from, to string) Transition {
	return Transition{FromState: from, ToState: to, StartTime: "s", EndTime: Ongoing}
}

var analyzed = []string{
	"From: Open To: In Development",
	"From: In Development To: Code Review",
}

func TestAggregate_AveragesAcrossIssues(t *testing.T) {
	issues := []ParsedIssue{
		{TicketID: "A-1", Weight: weightPtr(3), Transitions: []Transition{closed("Open", "In Development", 1.0), ongoing("In Development", "Code Review")}},
		{TicketID: "A-2", Weight: weightPtr(3), Transitions: []Transition{closed("Open", "In Development", 3.0), ongoing("In Development", "Code Review")}},
	}

	s := Aggregate(issues, analyzed)

	key := AggregationKey{Label: "From: Open To: In Development", Weight: 3}
	if got := s.Buckets[key]; !reflect.DeepEqual(got, []float64{1.0, 3.0}) {
		t.Errorf("bucket = %v, want [1 3]", got)
	}
	if Mean(s.Buckets[key]) != 2.0 {
		t.Errorf("mean = %v, want 2", Mean(s.Buckets[key]))
	}
	if s.Distribution[3] != 2 {
		t.Errorf("distribution[3] = %d, want 2", s.Distribution[3])
	}
	if _, ok := s.Buckets[AggregationKey{Label: "From: In Development To: Code Review", Weight: 3}]; ok {
		t.Error("Ongoing transitions must not be sampled")
	}
	if s.TotalIssues != 2 {
		t.Errorf("TotalIssues = %d", s.TotalIssues)
	}
}

func TestAggregate_ExcludesUnestimatedIssues(t *testing.T) {
	issues := []ParsedIssue{
		{TicketID: "A-1", Weight: nil, Transitions: []Transition{closed("Open", "In Development", 5), ongoing("In Development", "Code Review")}},
	}

	s := Aggregate(issues, analyzed)
	if len(s.Distribution) != 0 {
		t.Errorf("distribution should be empty, got %v", s.Distribution)
	}
	if len(s.Buckets) != 0 {
		t.Errorf("buckets should be empty, got %v", s.Buckets)
	}
	if s.TotalIssues != 1 {
		t.Errorf("unestimated issues still count toward the total")
	}
}

func TestAggregate_DropsUnlistedTransitions(t *testing.T) {
	issues := []ParsedIssue{
		{TicketID: "A-1", Weight: weightPtr(5), Transitions: []Transition{
			closed("Open", "Blocked", 4),
			closed("Blocked", "Open", 2),
			closed("Open", "In Development", 6),
			ongoing("In Development", "Done"),
		}},
	}

	s := Aggregate(issues, analyzed)
	if len(s.Buckets) != 1 {
		t.Fatalf("expected only the allow-listed bucket, got %v", s.Buckets)
	}
	for k := range s.Buckets {
		if k.Label != "From: Open To: In Development" {
			t.Errorf("unexpected label %q", k.Label)
		}
	}
}

func TestAggregate_EmptyTimelineCountsInDistribution(t *testing.T) {
	s := Aggregate([]ParsedIssue{{TicketID: "A-1", Weight: weightPtr(8)}}, analyzed)
	if s.Distribution[8] != 1 {
		t.Errorf("distribution[8] = %d, want 1", s.Distribution[8])
	}
	if len(s.Buckets) != 0 {
		t.Errorf("expected no samples")
	}
}

func TestAggregate_SkipsBrokenDurationsAndReportsThem(t *testing.T) {
	broken := Transition{FromState: "Open", ToState: "In Development", StartTime: "bad", EndTime: "2024-03-20T10:00:00.000+0000"}
	issues := []ParsedIssue{
		{
			TicketID:    "A-1",
			Weight:      weightPtr(2),
			Transitions: []Transition{broken, ongoing("In Development", "Code Review")},
			Errors:      []error{&ParseError{Value: "bad"}},
		},
	}

	s := Aggregate(issues, analyzed)
	if len(s.Buckets) != 0 {
		t.Errorf("broken samples must not be aggregated: %v", s.Buckets)
	}
	if len(s.Skipped) != 1 || s.Skipped[0].TicketID != "A-1" || len(s.Skipped[0].Reasons) != 1 {
		t.Errorf("expected skipped record for A-1, got %+v", s.Skipped)
	}
}

func TestSummary_WeightOrdering(t *testing.T) {
	issues := []ParsedIssue{
		{TicketID: "A-1", Weight: weightPtr(8), Transitions: []Transition{closed("Open", "In Development", 1), ongoing("x", "y")}},
		{TicketID: "A-2", Weight: weightPtr(0.5), Transitions: []Transition{closed("Open", "In Development", 1), ongoing("x", "y")}},
		{TicketID: "A-3", Weight: weightPtr(3), Transitions: []Transition{closed("Open", "In Development", 1), ongoing("x", "y")}},
	}

	s := Aggregate(issues, analyzed)
	want := []float64{0.5, 3, 8}
	if got := s.Weights(); !reflect.DeepEqual(got, want) {
		t.Errorf("Weights() = %v, want %v", got, want)
	}
	if got := s.WeightsFor("From: Open To: In Development"); !reflect.DeepEqual(got, want) {
		t.Errorf("WeightsFor() = %v, want %v", got, want)
	}
	if got := s.WeightsFor("From: In Development To: Code Review"); len(got) != 0 {
		t.Errorf("expected no weights, got %v", got)
	}
}
