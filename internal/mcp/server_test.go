package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jira-cycle-time/internal/config"
	"jira-cycle-time/internal/jira"
)

type stubClient struct {
	issues  []jira.IssueDTO
	lastJQL string
}

func (c *stubClient) SearchIssuesWithHistory(_ context.Context, jql string, _ []string, startAt, maxResults int) (*jira.SearchResponse, error) {
	c.lastJQL = jql
	end := min(startAt+maxResults, len(c.issues))
	if startAt > end {
		startAt = end
	}
	return &jira.SearchResponse{StartAt: startAt, Total: len(c.issues), Issues: c.issues[startAt:end]}, nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		JQL:                 "project = ABC",
		StoryPointsField:    config.DefaultStoryPointsField,
		AnalyzedTransitions: config.DefaultTransitions,
		PageSize:            50,
		ParseConcurrency:    1,
	}
}

func connect(t *testing.T, s *Server) *sdk.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := sdk.NewInMemoryTransports()
	_, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func textOf(t *testing.T, res *sdk.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*sdk.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestListTools(t *testing.T) {
	session := connect(t, NewServer(testConfig(), &stubClient{}, "test"))

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"analyze_transitions", "get_workflow"}, names)
}

func TestAnalyzeTransitions(t *testing.T) {
	client := &stubClient{issues: []jira.IssueDTO{
		{
			Key:    "ABC-1",
			Fields: map[string]json.RawMessage{config.DefaultStoryPointsField: json.RawMessage(`2`)},
			Changelog: &jira.ChangelogDTO{Histories: []jira.HistoryDTO{
				{Created: "2024-03-20T10:00:00.000+0000", Items: []jira.ItemDTO{{Field: "status", FromString: "Open", ToString: "In Development"}}},
				{Created: "2024-03-20T14:00:00.000+0000", Items: []jira.ItemDTO{{Field: "status", FromString: "In Development", ToString: "Code Review"}}},
			}},
		},
	}}
	session := connect(t, NewServer(testConfig(), client, "test"))

	res, err := session.CallTool(context.Background(), &sdk.CallToolParams{
		Name:      "analyze_transitions",
		Arguments: map[string]any{"jql": "key = ABC-1"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	assert.Equal(t, "key = ABC-1", client.lastJQL)
	text := textOf(t, res)
	assert.True(t, strings.HasPrefix(text, "Total Issues: 1\nSummary Stories by Points\n"), "details line directly precedes the report: %q", text)
	assert.Contains(t, text, "Story Points: 2 -> 1 tickets")
	assert.Contains(t, text, "From: Open To: In Development:\n  Story Points: 2 -> Avg Duration: 4.0 hours (0.17 days) -> 1 tickets")
}

func TestAnalyzeTransitions_NoIssues(t *testing.T) {
	session := connect(t, NewServer(testConfig(), &stubClient{}, "test"))

	res, err := session.CallTool(context.Background(), &sdk.CallToolParams{
		Name:      "analyze_transitions",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "No issues found.", textOf(t, res))
}

func TestGetWorkflow(t *testing.T) {
	session := connect(t, NewServer(testConfig(), &stubClient{}, "test"))

	res, err := session.CallTool(context.Background(), &sdk.CallToolParams{Name: "get_workflow", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.False(t, res.IsError)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)

	var info WorkflowInfo
	require.NoError(t, json.Unmarshal(raw, &info))
	assert.Equal(t, "project = ABC", info.JQL)
	assert.Equal(t, config.DefaultTransitions, info.Transitions)
}
