package report

import (
	"fmt"
	"math"
	"strings"
)

// Charts creates one Mermaid xychart-beta per transition with the average hours by story points.
func Charts(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}

	var charts []string
	start := 0
	for i := 1; i <= len(rows); i++ {
		if i < len(rows) && rows[i].Transition == rows[start].Transition {
			continue
		}
		charts = append(charts, transitionChart(rows[start:i]))
		start = i
	}
	return strings.Join(charts, "\n")
}

func transitionChart(rows []Row) string {
	var labels []string
	var values []string
	maxVal := 0.0

	for _, r := range rows {
		labels = append(labels, fmt.Sprintf("\"%s\"", formatWeight(r.Weight)))
		values = append(values, fmt.Sprintf("%.2f", r.AvgHours))
		if r.AvgHours > maxVal {
			maxVal = r.AvgHours
		}
	}

	title := strings.ReplaceAll(rows[0].Transition, "\"", "'")

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s\"\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis \"Story Points\" [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Avg Duration (Hours)\" 0 --> %d\n", int(math.Ceil(math.Max(1, maxVal*1.2)))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```\n")
	return sb.String()
}
