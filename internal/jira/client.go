package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrUnauthorized is returned when Jira rejects the configured credentials.
	ErrUnauthorized = errors.New("jira authentication failed")
	// ErrRateLimited is returned when Jira answers 429.
	ErrRateLimited = errors.New("jira rate limit exceeded")
)

// Client is the interface for interacting with Jira.
type Client interface {
	SearchIssuesWithHistory(ctx context.Context, jql string, fields []string, startAt, maxResults int) (*SearchResponse, error)
}

// Config holds the authentication and connection settings for Jira.
type Config struct {
	BaseURL string

	// Cloud basic auth
	Email    string
	APIToken string

	// Personal Access Token, preferred over basic auth when set
	Token string

	// Performance Settings
	RequestDelay time.Duration
	Timeout      time.Duration
}

// NewClient creates a new Jira client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewCloudClient(cfg)
}

// FetchAll pages through a JQL search until every matching issue has been retrieved.
func FetchAll(ctx context.Context, c Client, jql string, fields []string, pageSize int) ([]IssueDTO, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	var issues []IssueDTO
	startAt := 0
	for {
		page, err := c.SearchIssuesWithHistory(ctx, jql, fields, startAt, pageSize)
		if err != nil {
			return nil, fmt.Errorf("search page at %d: %w", startAt, err)
		}
		issues = append(issues, page.Issues...)
		log.Debug().Int("startAt", startAt).Int("page", len(page.Issues)).Int("total", page.Total).Msg("Fetched Jira page")

		if len(page.Issues) == 0 {
			break
		}
		startAt += len(page.Issues)
		if startAt >= page.Total {
			break
		}
	}
	return issues, nil
}

// LoadSearchFile reads a saved search response (as returned by the search endpoint with an
// expanded changelog) from disk.
func LoadSearchFile(path string) ([]IssueDTO, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read search file: %w", err)
	}

	var resp SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search file %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("count", len(resp.Issues)).Msg("Loaded issues from file")
	return resp.Issues, nil
}
