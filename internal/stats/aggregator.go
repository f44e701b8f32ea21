package stats

import "slices"

// Aggregate folds parsed issues into the weight distribution and the per-(transition, weight)
// duration samples.
//
// Unestimated issues contribute to neither structure. Only closed transitions whose label is
// in analyzed are sampled; other labels are dropped silently.
func Aggregate(issues []ParsedIssue, analyzed []string) Summary {
	allowed := make(map[string]bool, len(analyzed))
	for _, label := range analyzed {
		allowed[label] = true
	}

	summary := Summary{
		TotalIssues:  len(issues),
		Distribution: make(map[float64]int),
		Buckets:      make(map[AggregationKey][]float64),
		Transitions:  slices.Clone(analyzed),
	}

	for _, issue := range issues {
		if len(issue.Errors) > 0 {
			rec := SkippedRecord{TicketID: issue.TicketID}
			for _, err := range issue.Errors {
				rec.Reasons = append(rec.Reasons, err.Error())
			}
			summary.Skipped = append(summary.Skipped, rec)
		}

		if issue.Weight == nil {
			continue
		}
		weight := *issue.Weight
		summary.Distribution[weight]++

		for _, t := range issue.Transitions {
			if t.DurationHours == nil {
				continue
			}
			label := t.Label()
			if !allowed[label] {
				continue
			}
			key := AggregationKey{Label: label, Weight: weight}
			summary.Buckets[key] = append(summary.Buckets[key], *t.DurationHours)
		}
	}

	return summary
}

// Weights returns the distinct weights of the distribution in ascending order.
func (s Summary) Weights() []float64 {
	weights := make([]float64, 0, len(s.Distribution))
	for w := range s.Distribution {
		weights = append(weights, w)
	}
	slices.Sort(weights)
	return weights
}

// WeightsFor returns, in ascending order, the weights that have samples for label.
func (s Summary) WeightsFor(label string) []float64 {
	var weights []float64
	for k := range s.Buckets {
		if k.Label == label {
			weights = append(weights, k.Weight)
		}
	}
	slices.Sort(weights)
	return weights
}
