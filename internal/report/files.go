package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"foildb/internal/fileutil"
)

// ProgressPath resolves the progress file for a stage inside dir.
func ProgressPath(dir, stage string) string {
	return filepath.Join(dir, stage+".progress.json")
}

// SummaryPath resolves the summary file for a stage inside dir.
func SummaryPath(dir, stage string) string {
	return filepath.Join(dir, stage+".summary.json")
}

// WriteProgress atomically replaces the progress snapshot for its stage.
func WriteProgress(dir string, progress Progress) error {
	return writeJSON(ProgressPath(dir, progress.Stage), progress)
}

// WriteSummary atomically writes the terminal summary for its stage.
func WriteSummary(dir string, summary Summary) error {
	return writeJSON(SummaryPath(dir, summary.Stage), summary)
}

// WriteTerminal records the summary and converges the progress file to the
// same terminal state.
func WriteTerminal(dir string, summary Summary) error {
	if err := WriteSummary(dir, summary); err != nil {
		return err
	}
	return WriteProgress(dir, TerminalProgress(summary))
}

// ReadProgress loads a progress snapshot from path.
func ReadProgress(path string) (Progress, error) {
	var progress Progress
	if err := readJSON(path, &progress); err != nil {
		return Progress{}, err
	}
	return progress, nil
}

// ReadSummary loads a run summary from path.
func ReadSummary(path string) (Summary, error) {
	var summary Summary
	if err := readJSON(path, &summary); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
