package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"jira-cycle-time/internal/jira"
	"jira-cycle-time/internal/stats"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultStoryPointsField is the custom field holding story points on the reference instance.
const DefaultStoryPointsField = "customfield_11503"

// DefaultTransitions is the stage order of the reference delivery workflow.
var DefaultTransitions = []string{
	"From: Open To: In Development",
	"From: In Development To: Code Review",
	"From: Code Review To: Ready for Test",
	"From: Ready for Test To: Test",
	"From: Test To: PO Approval",
	"From: PO Approval To: QA Branch",
	"From: QA Branch To: Done",
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Jira                jira.Config
	JQL                 string
	StoryPointsField    string
	AnalyzedTransitions []string
	PageSize            int
	ParseConcurrency    int
	DataPath            string
	ReportFile          string
	DetailsFile         string
	EnableMermaidCharts bool
}

// WorkflowFile is the optional YAML description of what to analyze.
type WorkflowFile struct {
	JQL              string           `yaml:"jql"`
	StoryPointsField string           `yaml:"story_points_field"`
	Transitions      []TransitionSpec `yaml:"transitions"`
}

// TransitionSpec names one analyzed state pair.
type TransitionSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Labels returns the canonical transition labels in file order.
func (w WorkflowFile) Labels() []string {
	labels := make([]string, 0, len(w.Transitions))
	for _, t := range w.Transitions {
		labels = append(labels, stats.TransitionLabel(t.From, t.To))
	}
	return labels
}

// LoadWorkflowFile reads a YAML workflow description.
func LoadWorkflowFile(path string) (*WorkflowFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var wf WorkflowFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}
	for i, t := range wf.Transitions {
		if strings.TrimSpace(t.From) == "" || strings.TrimSpace(t.To) == "" {
			return nil, fmt.Errorf("workflow file %s: transition %d needs both from and to", path, i+1)
		}
	}
	return &wf, nil
}

// Load loads the configuration from .env files, an optional workflow file and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables")
	}

	return FromEnv(exeDir)
}

// FromEnv builds the configuration from the process environment only.
func FromEnv(exeDir string) (*AppConfig, error) {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	delaySecs, err := strconv.Atoi(getEnv("JIRA_REQUEST_DELAY_SECONDS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid JIRA_REQUEST_DELAY_SECONDS: %w", err)
	}
	pageSize, err := strconv.Atoi(getEnv("JIRA_PAGE_SIZE", "100"))
	if err != nil || pageSize <= 0 {
		return nil, fmt.Errorf("invalid JIRA_PAGE_SIZE %q", os.Getenv("JIRA_PAGE_SIZE"))
	}
	concurrency, err := strconv.Atoi(getEnv("PARSE_CONCURRENCY", strconv.Itoa(runtime.GOMAXPROCS(0))))
	if err != nil {
		return nil, fmt.Errorf("invalid PARSE_CONCURRENCY: %w", err)
	}

	cfg := &AppConfig{
		Jira: jira.Config{
			BaseURL:      getEnv("JIRA_URL", ""),
			Email:        getEnv("JIRA_EMAIL", ""),
			APIToken:     getEnv("JIRA_API_TOKEN", ""),
			Token:        getEnv("JIRA_TOKEN", ""),
			RequestDelay: time.Duration(delaySecs) * time.Second,
		},
		StoryPointsField:    DefaultStoryPointsField,
		AnalyzedTransitions: append([]string(nil), DefaultTransitions...),
		PageSize:            pageSize,
		ParseConcurrency:    concurrency,
		DataPath:            dataPath,
		ReportFile:          getEnv("REPORT_FILE", "report.txt"),
		DetailsFile:         getEnv("DETAILS_FILE", "transitions.txt"),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}

	if path := os.Getenv("WORKFLOW_FILE"); path != "" {
		wf, err := LoadWorkflowFile(path)
		if err != nil {
			return nil, err
		}
		cfg.ApplyWorkflow(wf)
		log.Debug().Str("path", path).Int("transitions", len(wf.Transitions)).Msg("Loaded workflow file")
	}

	if v, ok := os.LookupEnv("JIRA_JQL"); ok {
		cfg.JQL = v
	}
	if v, ok := os.LookupEnv("JIRA_STORY_POINTS_FIELD"); ok && v != "" {
		cfg.StoryPointsField = v
	}
	if v, ok := os.LookupEnv("ANALYZED_TRANSITIONS"); ok {
		if labels := SplitTransitions(v); len(labels) > 0 {
			cfg.AnalyzedTransitions = labels
		}
	}

	return cfg, nil
}

// ApplyWorkflow overlays the non-empty parts of a workflow file.
func (c *AppConfig) ApplyWorkflow(wf *WorkflowFile) {
	if wf.JQL != "" {
		c.JQL = wf.JQL
	}
	if wf.StoryPointsField != "" {
		c.StoryPointsField = wf.StoryPointsField
	}
	if len(wf.Transitions) > 0 {
		c.AnalyzedTransitions = wf.Labels()
	}
}

// Validate checks what is needed to query Jira.
func (c *AppConfig) Validate() error {
	if c.Jira.BaseURL == "" {
		return fmt.Errorf("JIRA_URL is not set")
	}
	if c.Jira.Token == "" && (c.Jira.Email == "" || c.Jira.APIToken == "") {
		return fmt.Errorf("set JIRA_TOKEN or both JIRA_EMAIL and JIRA_API_TOKEN")
	}
	if c.JQL == "" {
		return fmt.Errorf("no JQL query configured (JIRA_JQL or --jql)")
	}
	return nil
}

// SearchFields lists the issue fields the analysis needs from Jira.
func (c *AppConfig) SearchFields() []string {
	return []string{"summary", c.StoryPointsField, "resolutiondate"}
}

// SplitTransitions parses a ';'-separated list of transition labels.
func SplitTransitions(v string) []string {
	var labels []string
	for _, part := range strings.Split(v, ";") {
		if part = strings.TrimSpace(part); part != "" {
			labels = append(labels, part)
		}
	}
	return labels
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
