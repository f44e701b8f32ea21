// Package analysis wires fetching, parsing and aggregation into a single run.
package analysis

import (
	"context"
	"errors"
	"slices"

	"jira-cycle-time/internal/config"
	"jira-cycle-time/internal/eventlog"
	"jira-cycle-time/internal/jira"
	"jira-cycle-time/internal/stats"

	"github.com/rs/zerolog/log"
)

// ErrNoIssues is returned when a query matches nothing.
var ErrNoIssues = errors.New("no issues found")

// Result is the outcome of one analysis run.
type Result struct {
	Issues  []stats.ParsedIssue
	Summary stats.Summary
}

// Service runs analyses with a fixed configuration.
type Service struct {
	client jira.Client
	cfg    *config.AppConfig
}

// NewService creates a Service. The client may be nil when only FromIssues is used.
func NewService(client jira.Client, cfg *config.AppConfig) *Service {
	return &Service{client: client, cfg: cfg}
}

// FromJira fetches the issues matching jql and analyzes them. Empty arguments fall back to
// the configured query and allow-list.
func (s *Service) FromJira(ctx context.Context, jql string, transitions []string) (*Result, error) {
	if s.client == nil {
		return nil, errors.New("no Jira client configured")
	}
	if jql == "" {
		jql = s.cfg.JQL
	}
	if jql == "" {
		return nil, errors.New("no JQL query given")
	}

	log.Info().Str("jql", jql).Msg("Fetching Jira data")
	dtos, err := jira.FetchAll(ctx, s.client, jql, s.cfg.SearchFields(), s.cfg.PageSize)
	if err != nil {
		return nil, err
	}
	return s.FromIssues(ctx, dtos, transitions)
}

// FromIssues analyzes already retrieved issues.
func (s *Service) FromIssues(ctx context.Context, dtos []jira.IssueDTO, transitions []string) (*Result, error) {
	if len(dtos) == 0 {
		return nil, ErrNoIssues
	}
	if len(transitions) == 0 {
		transitions = s.cfg.AnalyzedTransitions
	}

	raws := make([]eventlog.RawIssue, 0, len(dtos))
	for _, dto := range dtos {
		raws = append(raws, eventlog.FromDTO(dto, s.cfg.StoryPointsField))
	}

	parsed, err := stats.ParseIssues(ctx, raws, s.cfg.ParseConcurrency)
	if err != nil {
		return nil, err
	}

	summary := stats.Aggregate(parsed, slices.Clone(transitions))
	log.Info().
		Int("issues", summary.TotalIssues).
		Int("estimated", countEstimated(summary)).
		Int("buckets", len(summary.Buckets)).
		Int("skipped", len(summary.Skipped)).
		Msg("Analysis complete")

	return &Result{Issues: parsed, Summary: summary}, nil
}

func countEstimated(s stats.Summary) int {
	n := 0
	for _, c := range s.Distribution {
		n += c
	}
	return n
}
