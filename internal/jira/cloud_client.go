package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type cloudClient struct {
	cfg         Config
	httpClient  *http.Client
	lastRequest time.Time
	throttleMu  sync.Mutex

	// Session Cache
	cache      map[string]*cacheEntry
	cacheMutex sync.Mutex
}

type cacheEntry struct {
	Value       *SearchResponse
	Expiration  time.Time
	AccessCount int
	OriginalTTL time.Duration
}

const searchCacheTTL = 10 * time.Minute

// NewCloudClient returns a Client for the Jira Cloud REST API v3.
func NewCloudClient(cfg Config) Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &cloudClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache: make(map[string]*cacheEntry),
	}
}

func (c *cloudClient) getFromCache(key string) (*SearchResponse, bool) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		log.Debug().Str("key", key).Msg("Cache miss")
		return nil, false
	}

	if time.Now().After(entry.Expiration) {
		delete(c.cache, key)
		return nil, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")

	// Sliding window extension
	if entry.AccessCount < 6 {
		entry.Expiration = time.Now().Add(entry.OriginalTTL)
		entry.AccessCount++
	}

	return entry.Value, true
}

func (c *cloudClient) addToCache(key string, value *SearchResponse, ttl time.Duration) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cache[key] = &cacheEntry{
		Value:       value,
		Expiration:  time.Now().Add(ttl),
		OriginalTTL: ttl,
		AccessCount: 1,
	}
}

func (c *cloudClient) throttle(ctx context.Context) error {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if c.cfg.RequestDelay > 0 && elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling Jira request")
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *cloudClient) authenticateRequest(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		return
	}
	if c.cfg.Email != "" && c.cfg.APIToken != "" {
		req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	}
}

func (c *cloudClient) SearchIssuesWithHistory(ctx context.Context, jql string, fields []string, startAt, maxResults int) (*SearchResponse, error) {
	cacheKey := fmt.Sprintf("search:%s:%s:%d:%d", jql, strings.Join(fields, ","), startAt, maxResults)
	if val, ok := c.getFromCache(cacheKey); ok {
		return val, nil
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}
	params.Set("expand", "changelog")

	searchURL := fmt.Sprintf("%s/rest/api/3/search?%s", strings.TrimRight(c.cfg.BaseURL, "/"), params.Encode())
	log.Info().Int("startAt", startAt).Msg("Requesting issues from Jira")
	log.Debug().Str("url", searchURL).Str("jql", jql).Msg("Jira search details")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w (%d): check JIRA_EMAIL/JIRA_API_TOKEN", ErrUnauthorized, resp.StatusCode)
		case http.StatusTooManyRequests:
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				return nil, fmt.Errorf("%w: retry after %s seconds", ErrRateLimited, retryAfter)
			}
			return nil, ErrRateLimited
		default:
			return nil, fmt.Errorf("jira API returned status %d", resp.StatusCode)
		}
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Jira response: %w", err)
	}

	c.addToCache(cacheKey, &result, searchCacheTTL)
	return &result, nil
}
