package jira

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SearchResponse is the top-level container for Jira search results.
type SearchResponse struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	Issues     []IssueDTO `json:"issues"`
}

// IssueDTO represents a single issue in the Jira search response.
// Fields are kept raw because the story point field is a per-instance custom field.
type IssueDTO struct {
	Key       string                     `json:"key"`
	Fields    map[string]json.RawMessage `json:"fields"`
	Changelog *ChangelogDTO              `json:"changelog,omitempty"`
}

// ChangelogDTO contains historical transitions.
type ChangelogDTO struct {
	Histories []HistoryDTO `json:"histories"`
}

// HistoryDTO is a single entry in the changelog.
type HistoryDTO struct {
	Created string    `json:"created"`
	Items   []ItemDTO `json:"items"`
}

// ItemDTO is a single field change within a history entry.
type ItemDTO struct {
	Field      string `json:"field"`
	FromString string `json:"fromString"`
	ToString   string `json:"toString"`
	From       string `json:"from"` // ID
	To         string `json:"to"`   // ID
}

// Weight decodes the numeric sizing field (story points) of the issue.
// A missing field or JSON null yields nil, which means "unestimated".
func (i IssueDTO) Weight(field string) (*float64, error) {
	raw, ok := i.Fields[field]
	if !ok {
		return nil, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	notNumeric := fmt.Errorf("field %s is not numeric: %s", field, string(raw))

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if !finite(n) {
			return nil, notNumeric
		}
		return &n, nil
	}

	// Some instances serialise number custom fields as strings.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil && finite(n) {
			return &n, nil
		}
	}
	return nil, notNumeric
}

// finite rejects the NaN and Inf values ParseFloat accepts.
func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

var timeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z07:00",
}

// ParseTime is a helper for the strict Jira time format.
// Fractional seconds and a numeric offset are both required.
func ParseTime(s string) (time.Time, error) {
	if len(s) < 21 || s[19] != '.' {
		return time.Time{}, fmt.Errorf("missing fractional seconds in %q", s)
	}
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
