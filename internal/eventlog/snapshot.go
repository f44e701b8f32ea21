package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"jira-cycle-time/internal/jira"

	"github.com/rs/zerolog/log"
)

// SnapshotStore keeps fetched issues as JSONL files so a run can be re-analyzed offline.
type SnapshotStore struct {
	mu     sync.RWMutex
	dir    string
	issues map[string][]jira.IssueDTO // Partitioned by snapshot name
}

// NewSnapshotStore creates a store rooted at dir.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{
		dir:    dir,
		issues: make(map[string][]jira.IssueDTO),
	}
}

// Append merges issues into a snapshot. An issue already present is replaced by the newer copy.
func (s *SnapshotStore) Append(name string, issues []jira.IssueDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.issues[name]
	index := make(map[string]int, len(current))
	for i, dto := range current {
		index[dto.Key] = i
	}

	for _, dto := range issues {
		if i, ok := index[dto.Key]; ok {
			current[i] = dto
			continue
		}
		index[dto.Key] = len(current)
		current = append(current, dto)
	}

	s.issues[name] = current
}

// Issues returns a copy of the issues held for a snapshot.
func (s *SnapshotStore) Issues(name string) []jira.IssueDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.issues[name])
}

// Load reads a snapshot file. A missing file is not an error.
func (s *SnapshotStore) Load(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	var issues []jira.IssueDTO
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var dto jira.IssueDTO
		if err := json.Unmarshal(scanner.Bytes(), &dto); err != nil {
			log.Warn().Err(err).Str("snapshot", name).Msg("Skipping invalid JSON line in snapshot")
			continue
		}
		issues = append(issues, dto)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading snapshot: %w", err)
	}

	log.Info().Str("snapshot", name).Int("count", len(issues)).Msg("Loaded issues from snapshot")
	s.Append(name, issues)
	return nil
}

// Save writes a snapshot atomically, one issue per line.
func (s *SnapshotStore) Save(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	issues := s.Issues(name)
	if len(issues) == 0 {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, dto := range issues {
		if err := encoder.Encode(dto); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode issue %s: %w", dto.Key, err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	log.Info().Str("snapshot", name).Str("path", path).Int("count", len(issues)).Msg("Snapshot saved")
	return nil
}

func (s *SnapshotStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	return filepath.Join(s.dir, name+".jsonl"), nil
}
