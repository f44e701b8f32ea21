package eventlog

import (
	"fmt"
	"slices"
	"time"

	"jira-cycle-time/internal/jira"
)

// FromDTO converts a Jira Issue DTO and its changelog into a RawIssue.
// An unreadable weight is recorded as a problem and leaves the issue unestimated.
func FromDTO(dto jira.IssueDTO, weightField string) RawIssue {
	issue := RawIssue{Key: dto.Key}

	weight, err := dto.Weight(weightField)
	if err != nil {
		issue.Problems = append(issue.Problems, fmt.Errorf("weight: %w", err))
	}
	issue.Weight = weight

	if dto.Changelog == nil {
		return issue
	}

	issue.Groups = make([]EventGroup, 0, len(dto.Changelog.Histories))
	for _, h := range dto.Changelog.Histories {
		group := EventGroup{Timestamp: h.Created, Events: make([]RawChangeEvent, 0, len(h.Items))}
		for _, itm := range h.Items {
			group.Events = append(group.Events, RawChangeEvent{
				Field:     itm.Field,
				FromValue: itm.FromString,
				ToValue:   itm.ToString,
				Timestamp: h.Created,
			})
		}
		issue.Groups = append(issue.Groups, group)
	}
	return issue
}

// BuildTimeline returns the chronologically ordered status transitions of an issue.
//
// Groups are stably sorted by instant, so changes sharing a timestamp keep their source order.
// Groups whose timestamp cannot be parsed sort after all parseable ones, in source order; the
// duration step reports them. Adjacent identical transitions are kept as they are. A null
// from-value becomes NoState.
func BuildTimeline(groups []EventGroup) []TransitionStub {
	type keyed struct {
		group EventGroup
		at    time.Time
		ok    bool
	}

	ordered := make([]keyed, len(groups))
	for i, g := range groups {
		at, err := jira.ParseTime(g.Timestamp)
		ordered[i] = keyed{group: g, at: at, ok: err == nil}
	}

	slices.SortStableFunc(ordered, func(a, b keyed) int {
		switch {
		case a.ok && b.ok:
			return a.at.Compare(b.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		default:
			return 0
		}
	})

	var stubs []TransitionStub
	for _, k := range ordered {
		for _, e := range k.group.Events {
			if e.Field != StatusField {
				continue
			}
			from := e.FromValue
			if from == "" {
				from = NoState
			}
			stubs = append(stubs, TransitionStub{
				FromState: from,
				ToState:   e.ToValue,
				StartTime: k.group.Timestamp,
			})
		}
	}
	return stubs
}
