// Package report renders aggregated transition statistics for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"jira-cycle-time/internal/stats"
)

// WeightCount is one line of the story point distribution.
type WeightCount struct {
	Weight float64 `json:"storyPoints"`
	Count  int     `json:"count"`
}

// Row summarises the samples of one (transition, weight) bucket.
type Row struct {
	Transition  string  `json:"transition"`
	Weight      float64 `json:"storyPoints"`
	Count       int     `json:"count"`
	AvgHours    float64 `json:"avgHours"`
	AvgDays     float64 `json:"avgDays"`
	MedianHours float64 `json:"medianHours"`
}

// Document is the machine-readable form of a report.
type Document struct {
	TotalIssues  int                   `json:"totalIssues"`
	Distribution []WeightCount         `json:"distribution"`
	Transitions  []Row                 `json:"transitions"`
	Skipped      []stats.SkippedRecord `json:"skipped,omitempty"`
}

// Options toggles optional report sections.
type Options struct {
	MermaidCharts bool
}

// Distribution returns the weight distribution in ascending weight order.
func Distribution(s stats.Summary) []WeightCount {
	weights := s.Weights()
	out := make([]WeightCount, 0, len(weights))
	for _, w := range weights {
		out = append(out, WeightCount{Weight: w, Count: s.Distribution[w]})
	}
	return out
}

// Rows returns bucket statistics with transitions in allow-list order and weights ascending.
// Transitions without any samples are omitted.
//
// AvgDays is derived from the rounded AvgHours divided by 24, not from the per-sample
// calendar-day figures.
func Rows(s stats.Summary) []Row {
	var rows []Row
	seen := make(map[string]bool, len(s.Transitions))
	for _, label := range s.Transitions {
		if seen[label] {
			continue
		}
		seen[label] = true

		for _, w := range s.WeightsFor(label) {
			samples := s.Buckets[stats.AggregationKey{Label: label, Weight: w}]
			avgHours := stats.Round2(stats.Mean(samples))
			rows = append(rows, Row{
				Transition:  label,
				Weight:      w,
				Count:       len(samples),
				AvgHours:    avgHours,
				AvgDays:     stats.Round2(avgHours / 24),
				MedianHours: stats.Round2(stats.MedianContinuous(samples)),
			})
		}
	}
	return rows
}

// Render produces the text report. Identical summaries always render to identical text.
func Render(s stats.Summary, opts Options) string {
	var sb strings.Builder

	sb.WriteString("Summary Stories by Points\n")
	for _, wc := range Distribution(s) {
		fmt.Fprintf(&sb, "Story Points: %s -> %d tickets\n", formatWeight(wc.Weight), wc.Count)
	}
	sb.WriteString("\n")

	sb.WriteString("Transition Analysis:\n")
	rows := Rows(s)
	current := ""
	for i, r := range rows {
		if r.Transition != current {
			if i > 0 {
				sb.WriteString("\n")
			}
			current = r.Transition
			fmt.Fprintf(&sb, "%s:\n", r.Transition)
		}
		fmt.Fprintf(&sb, "  Story Points: %s -> Avg Duration: %s hours (%s days) -> %d tickets\n",
			formatWeight(r.Weight), formatDecimal(r.AvgHours), formatDecimal(r.AvgDays), r.Count)
	}
	if len(rows) > 0 {
		sb.WriteString("\n")
	}

	if len(s.Skipped) > 0 {
		sb.WriteString("Skipped Records:\n")
		for _, rec := range s.Skipped {
			fmt.Fprintf(&sb, "  %s: %s\n", rec.TicketID, strings.Join(rec.Reasons, "; "))
		}
		sb.WriteString("\n")
	}

	if opts.MermaidCharts {
		if charts := Charts(rows); charts != "" {
			sb.WriteString(charts)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// Details produces the raw issue count artifact.
func Details(s stats.Summary) string {
	return fmt.Sprintf("Total Issues: %d\n", s.TotalIssues)
}

// NewDocument builds the machine-readable report. Slices are never nil.
func NewDocument(s stats.Summary) Document {
	doc := Document{
		TotalIssues:  s.TotalIssues,
		Distribution: Distribution(s),
		Transitions:  Rows(s),
		Skipped:      s.Skipped,
	}
	if doc.Transitions == nil {
		doc.Transitions = []Row{}
	}
	return doc
}

// JSON renders the report as an indented JSON document.
func JSON(s stats.Summary) ([]byte, error) {
	return json.MarshalIndent(NewDocument(s), "", "  ")
}

// formatWeight prints integral weights without a fraction ("3", "0.5").
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// formatDecimal prints the shortest form but always keeps one fractional digit ("2.0", "0.08").
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
