package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/AnyUserName/imgfit/internal/targetsize"
)

// FileName is the report's name inside the output directory.
const FileName = "imgfit.report.json"

// New creates an empty report with defaults.
func New(profileName string, targetBytes int64) *Report {
	return &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		TargetBytes: targetBytes,
		BasePath:    "./",
		Entries:     make(map[string]Entry),
	}
}

// ComputeStats recalculates aggregate statistics from entries. Input bytes
// count every source; output bytes count completed entries only.
func (r *Report) ComputeStats() {
	var s Stats
	s.TotalEntries = len(r.Entries)
	for _, e := range r.Entries {
		s.TotalInputBytes += e.Source.Size
		switch e.State {
		case targetsize.Completed:
			s.Completed++
			if e.Output != nil {
				s.TotalOutputBytes += e.Output.Size
				if e.Output.OverBudget {
					s.OverBudget++
				}
			}
		case targetsize.Failed:
			s.Failed++
		}
	}
	r.Stats = s
}

// WriteJSON serializes the report to a JSON file.
func WriteJSON(r *Report, path string) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a report. Unknown fields are ignored so older binaries can
// read newer reports.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	if r.Entries == nil {
		r.Entries = make(map[string]Entry)
	}
	return &r, nil
}
