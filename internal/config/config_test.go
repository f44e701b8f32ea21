package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"jira-cycle-time/internal/jira"

	"github.com/joho/godotenv"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGodotenvQuoting(t *testing.T) {
	path := writeFile(t, ".env.test", `JIRA_API_TOKEN='token with "double quotes"'`)

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `token with "double quotes"`
	if env["JIRA_API_TOKEN"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["JIRA_API_TOKEN"])
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"JIRA_JQL", "JIRA_STORY_POINTS_FIELD", "ANALYZED_TRANSITIONS", "WORKFLOW_FILE", "REPORT_FILE", "DETAILS_FILE", "DATA_PATH"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("JIRA_URL", "https://example.atlassian.net")

	cfg, err := FromEnv("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoryPointsField != DefaultStoryPointsField {
		t.Errorf("StoryPointsField = %q", cfg.StoryPointsField)
	}
	if !reflect.DeepEqual(cfg.AnalyzedTransitions, DefaultTransitions) {
		t.Errorf("AnalyzedTransitions = %v", cfg.AnalyzedTransitions)
	}
	if cfg.ReportFile != "report.txt" || cfg.DetailsFile != "transitions.txt" {
		t.Errorf("unexpected output files %q %q", cfg.ReportFile, cfg.DetailsFile)
	}
	if cfg.DataPath != "." {
		t.Errorf("DataPath = %q", cfg.DataPath)
	}
	if cfg.PageSize != 100 {
		t.Errorf("PageSize = %d", cfg.PageSize)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JIRA_URL", "https://example.atlassian.net")
	t.Setenv("JIRA_EMAIL", "me@example.com")
	t.Setenv("JIRA_API_TOKEN", "secret")
	t.Setenv("JIRA_REQUEST_DELAY_SECONDS", "2")
	t.Setenv("JIRA_JQL", "project = ABC")
	t.Setenv("JIRA_STORY_POINTS_FIELD", "customfield_10016")
	t.Setenv("ANALYZED_TRANSITIONS", "From: A To: B; From: B To: C ;")
	t.Setenv("ENABLE_MERMAID_CHARTS", "true")
	t.Setenv("WORKFLOW_FILE", "")

	cfg, err := FromEnv("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jira.RequestDelay != 2*time.Second {
		t.Errorf("RequestDelay = %v", cfg.Jira.RequestDelay)
	}
	if cfg.JQL != "project = ABC" || cfg.StoryPointsField != "customfield_10016" {
		t.Errorf("unexpected query config %q %q", cfg.JQL, cfg.StoryPointsField)
	}
	want := []string{"From: A To: B", "From: B To: C"}
	if !reflect.DeepEqual(cfg.AnalyzedTransitions, want) {
		t.Errorf("AnalyzedTransitions = %v, want %v", cfg.AnalyzedTransitions, want)
	}
	if !cfg.EnableMermaidCharts {
		t.Error("expected mermaid charts enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestFromEnv_InvalidNumbers(t *testing.T) {
	t.Setenv("JIRA_PAGE_SIZE", "zero")
	if _, err := FromEnv(""); err == nil {
		t.Error("expected error for invalid page size")
	}
}

func TestWorkflowFile_PrecedenceBelowEnv(t *testing.T) {
	path := writeFile(t, "workflow.yaml", `
jql: project = XYZ
story_points_field: customfield_20000
transitions:
  - from: Backlog
    to: Doing
  - from: Doing
    to: Done
`)
	t.Setenv("WORKFLOW_FILE", path)
	t.Setenv("JIRA_STORY_POINTS_FIELD", "customfield_30000")
	t.Setenv("ANALYZED_TRANSITIONS", "")
	os.Unsetenv("ANALYZED_TRANSITIONS")
	t.Setenv("JIRA_JQL", "")
	os.Unsetenv("JIRA_JQL")

	cfg, err := FromEnv("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.JQL != "project = XYZ" {
		t.Errorf("JQL = %q", cfg.JQL)
	}
	if cfg.StoryPointsField != "customfield_30000" {
		t.Errorf("env should win over the workflow file, got %q", cfg.StoryPointsField)
	}
	want := []string{"From: Backlog To: Doing", "From: Doing To: Done"}
	if !reflect.DeepEqual(cfg.AnalyzedTransitions, want) {
		t.Errorf("AnalyzedTransitions = %v, want %v", cfg.AnalyzedTransitions, want)
	}
}

func TestLoadWorkflowFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"MissingTo", "transitions:\n  - from: Open\n"},
		{"NotYAML", "transitions: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadWorkflowFile(writeFile(t, "wf.yaml", tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AppConfig
		wantErr bool
	}{
		{"NoURL", AppConfig{JQL: "x"}, true},
		{"NoCredentials", AppConfig{JQL: "x", Jira: jiraCfg("https://x", "", "", "")}, true},
		{"BasicAuth", AppConfig{JQL: "x", Jira: jiraCfg("https://x", "a@b", "t", "")}, false},
		{"Token", AppConfig{JQL: "x", Jira: jiraCfg("https://x", "", "", "pat")}, false},
		{"NoJQL", AppConfig{Jira: jiraCfg("https://x", "", "", "pat")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSearchFields(t *testing.T) {
	cfg := AppConfig{StoryPointsField: "customfield_11503"}
	want := []string{"summary", "customfield_11503", "resolutiondate"}
	if got := cfg.SearchFields(); !reflect.DeepEqual(got, want) {
		t.Errorf("SearchFields() = %v, want %v", got, want)
	}
}

func jiraCfg(url, email, apiToken, token string) jira.Config {
	return jira.Config{BaseURL: url, Email: email, APIToken: apiToken, Token: token}
}
