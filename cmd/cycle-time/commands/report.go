package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"jira-cycle-time/internal/analysis"
	"jira-cycle-time/internal/config"
	"jira-cycle-time/internal/eventlog"
	"jira-cycle-time/internal/jira"
	"jira-cycle-time/internal/report"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	jql         string
	input       string
	snapshot    string
	save        string
	transitions []string
	format      string
	output      string
	details     string
	stdoutOnly  bool
	open        bool
	workers     int
	mermaid     bool
}

func newReportCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch issues and print the transition duration report",
		Example: `  cycle-time report --jql "project = ABC AND statusCategory = Done"
  cycle-time report --input search.json --format json --stdout-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("mermaid") {
				cfg.EnableMermaidCharts = opts.mermaid
			}
			return runReport(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.jql, "jql", "", "JQL selecting the issues (default from JIRA_JQL or the workflow file)")
	f.StringVar(&opts.input, "input", "", "read a saved search response instead of calling Jira")
	f.StringVar(&opts.snapshot, "snapshot", "", "analyze a snapshot saved under DATA_PATH instead of calling Jira")
	f.StringVar(&opts.save, "save-snapshot", "", "save the fetched issues as a named snapshot under DATA_PATH")
	f.StringArrayVar(&opts.transitions, "transition", nil, `analyzed transition label, repeatable (e.g. "From: Open To: In Development")`)
	f.StringVar(&opts.format, "format", "text", "output format: text or json")
	f.StringVarP(&opts.output, "output", "o", "", "report file (default from REPORT_FILE)")
	f.StringVar(&opts.details, "details", "", "details file (default from DETAILS_FILE)")
	f.BoolVar(&opts.stdoutOnly, "stdout-only", false, "print the report without writing files")
	f.BoolVar(&opts.open, "open", false, "open the written report file")
	f.IntVar(&opts.workers, "workers", 0, "parallel issue parsers (default from PARSE_CONCURRENCY)")
	f.BoolVar(&opts.mermaid, "mermaid", false, "append Mermaid charts to the text report")

	return cmd
}

func runReport(ctx context.Context, cfg *config.AppConfig, opts *reportOptions, out io.Writer) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}
	if opts.workers > 0 {
		cfg.ParseConcurrency = opts.workers
	}
	if opts.jql != "" {
		cfg.JQL = opts.jql
	}

	dtos, err := loadIssues(ctx, cfg, opts)
	if err != nil {
		return err
	}

	res, err := analysis.NewService(nil, cfg).FromIssues(ctx, dtos, opts.transitions)
	if errors.Is(err, analysis.ErrNoIssues) {
		fmt.Fprintln(out, "No issues found.")
		return nil
	}
	if err != nil {
		return err
	}

	var body []byte
	switch opts.format {
	case "json":
		body, err = report.JSON(res.Summary)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		body = append(body, '\n')
	default:
		body = []byte(report.Render(res.Summary, report.Options{MermaidCharts: cfg.EnableMermaidCharts}))
	}

	details := report.Details(res.Summary)
	if opts.format == "text" {
		if _, err := io.WriteString(out, details); err != nil {
			return err
		}
	}
	if _, err := out.Write(body); err != nil {
		return err
	}

	if opts.stdoutOnly {
		return nil
	}

	detailsPath := firstNonEmpty(opts.details, cfg.DetailsFile)
	if err := os.WriteFile(detailsPath, []byte(details), 0644); err != nil {
		return fmt.Errorf("failed to write details file: %w", err)
	}
	log.Info().Str("path", detailsPath).Msg("Detailed output saved")

	reportPath := firstNonEmpty(opts.output, cfg.ReportFile)
	if err := os.WriteFile(reportPath, body, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	log.Info().Str("path", reportPath).Msg("Report saved")

	if opts.open {
		if err := browser.OpenFile(reportPath); err != nil {
			log.Warn().Err(err).Str("path", reportPath).Msg("Could not open report")
		}
	}
	return nil
}

// loadIssues reads issues from a search file, a snapshot or Jira, saving a snapshot when asked.
func loadIssues(ctx context.Context, cfg *config.AppConfig, opts *reportOptions) ([]jira.IssueDTO, error) {
	store := eventlog.NewSnapshotStore(filepath.Join(cfg.DataPath, "snapshots"))

	var (
		dtos []jira.IssueDTO
		err  error
	)
	switch {
	case opts.input != "":
		dtos, err = jira.LoadSearchFile(opts.input)
	case opts.snapshot != "":
		if err = store.Load(opts.snapshot); err == nil {
			dtos = store.Issues(opts.snapshot)
		}
	default:
		if err = cfg.Validate(); err != nil {
			return nil, err
		}
		log.Info().Str("jql", cfg.JQL).Msg("Fetching Jira data")
		dtos, err = jira.FetchAll(ctx, jira.NewClient(cfg.Jira), cfg.JQL, cfg.SearchFields(), cfg.PageSize)
	}
	if err != nil {
		return nil, err
	}

	if opts.save != "" && len(dtos) > 0 {
		store.Append(opts.save, dtos)
		if err := store.Save(opts.save); err != nil {
			return nil, err
		}
	}
	return dtos, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
