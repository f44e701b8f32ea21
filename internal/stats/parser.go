package stats

import (
	"context"
	"fmt"
	"runtime"

	"jira-cycle-time/internal/eventlog"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ParseIssue reconstructs the annotated transition timeline of a single issue.
// It never fails as a whole: unparseable boundaries leave that transition without a
// duration and are recorded on ParsedIssue.Errors.
func ParseIssue(raw eventlog.RawIssue) ParsedIssue {
	parsed := ParsedIssue{
		TicketID: raw.Key,
		Weight:   raw.Weight,
		Errors:   append([]error(nil), raw.Problems...),
	}

	stubs := eventlog.BuildTimeline(raw.Groups)
	if len(stubs) == 0 {
		return parsed
	}

	parsed.Transitions = make([]Transition, len(stubs))
	for i, s := range stubs {
		parsed.Transitions[i] = Transition{
			FromState: s.FromState,
			ToState:   s.ToState,
			StartTime: s.StartTime,
		}
	}

	last := len(parsed.Transitions) - 1
	for i := 0; i < last; i++ {
		t := &parsed.Transitions[i]
		t.EndTime = parsed.Transitions[i+1].StartTime

		hours, days, err := CalculateDuration(t.StartTime, t.EndTime)
		if err != nil {
			log.Warn().Err(err).Str("issue", raw.Key).Str("transition", t.Label()).Msg("Skipping transition duration")
			parsed.Errors = append(parsed.Errors, fmt.Errorf("%s: %w", t.Label(), err))
			continue
		}
		t.DurationHours = &hours
		t.DurationDays = &days
	}
	parsed.Transitions[last].EndTime = Ongoing

	return parsed
}

// ParseIssues parses issues concurrently. Each issue is independent, and the output keeps
// the input order. A concurrency of zero or less uses GOMAXPROCS workers.
func ParseIssues(ctx context.Context, raws []eventlog.RawIssue, concurrency int) ([]ParsedIssue, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	out := make([]ParsedIssue, len(raws))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range raws {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = ParseIssue(raws[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debug().Int("issues", len(out)).Int("workers", concurrency).Msg("Parsed issues")
	return out, nil
}
