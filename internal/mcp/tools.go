package mcp

import (
	"context"
	"errors"
	"slices"

	"jira-cycle-time/internal/analysis"
	"jira-cycle-time/internal/report"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// AnalyzeArgs are the inputs of the analyze_transitions tool.
type AnalyzeArgs struct {
	JQL         string   `json:"jql,omitempty" jsonschema:"JQL selecting the issues to analyze. Defaults to the configured query."`
	Transitions []string `json:"transitions,omitempty" jsonschema:"Transition labels in the form 'From: A To: B', in display order. Defaults to the configured workflow."`
}

// WorkflowArgs are the (empty) inputs of the get_workflow tool.
type WorkflowArgs struct{}

// WorkflowInfo describes the configured analysis defaults.
type WorkflowInfo struct {
	JQL              string   `json:"jql"`
	StoryPointsField string   `json:"storyPointsField"`
	Transitions      []string `json:"transitions"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name: "analyze_transitions",
		Description: "Reconstruct the status timeline of every matching Jira issue and report the average time " +
			"spent per workflow transition, grouped by story points. The last transition of each issue is still " +
			"in progress and never counted. Issues without story points are excluded from all figures.",
	}, s.handleAnalyzeTransitions)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "get_workflow",
		Description: "Return the configured default JQL, story point field and analyzed transitions.",
	}, s.handleGetWorkflow)
}

func (s *Server) handleAnalyzeTransitions(ctx context.Context, _ *sdk.CallToolRequest, args AnalyzeArgs) (*sdk.CallToolResult, report.Document, error) {
	log.Info().Str("jql", args.JQL).Int("transitions", len(args.Transitions)).Msg("analyze_transitions called")

	res, err := s.service.FromJira(ctx, args.JQL, args.Transitions)
	if errors.Is(err, analysis.ErrNoIssues) {
		doc := report.Document{Distribution: []report.WeightCount{}, Transitions: []report.Row{}}
		return textResult("No issues found."), doc, nil
	}
	if err != nil {
		log.Error().Err(err).Msg("analyze_transitions failed")
		return nil, report.Document{}, err
	}

	text := report.Details(res.Summary) + report.Render(res.Summary, report.Options{MermaidCharts: s.cfg.EnableMermaidCharts})
	return textResult(text), report.NewDocument(res.Summary), nil
}

func (s *Server) handleGetWorkflow(_ context.Context, _ *sdk.CallToolRequest, _ WorkflowArgs) (*sdk.CallToolResult, WorkflowInfo, error) {
	info := WorkflowInfo{
		JQL:              s.cfg.JQL,
		StoryPointsField: s.cfg.StoryPointsField,
		Transitions:      slices.Clone(s.cfg.AnalyzedTransitions),
	}
	if info.Transitions == nil {
		info.Transitions = []string{}
	}
	return nil, info, nil
}

func textResult(text string) *sdk.CallToolResult {
	return &sdk.CallToolResult{Content: []sdk.Content{&sdk.TextContent{Text: text}}}
}
