package report

import "github.com/AnyUserName/imgfit/internal/targetsize"

// Report is the top-level output of an imgfit run.
type Report struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	TargetBytes int64            `json:"target_bytes"`
	BasePath    string           `json:"base_path"`
	RunInfo     *RunInfo         `json:"run_info,omitempty"`
	Entries     map[string]Entry `json:"entries"`
	Stats       Stats            `json:"stats"`
}

// RunInfo captures run-time parameters for diagnostics.
type RunInfo struct {
	RunID         string  `json:"run_id"`
	Workers       int     `json:"workers"`
	StepsPerPhase int     `json:"steps_per_phase"`
	ScaleQuality  float64 `json:"scale_quality"`
}

// Entry describes one source image and what the search made of it.
type Entry struct {
	JobID  string           `json:"job_id"`
	State  targetsize.State `json:"state"`
	Source SourceInfo       `json:"source"`
	Output *Output          `json:"output,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// SourceInfo holds metadata about the input image.
type SourceInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}

// Output is the encoded result written to disk.
type Output struct {
	Path        string  `json:"path"` // relative to base_path
	Format      string  `json:"format"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Size        int64   `json:"size"` // bytes on disk
	Hash        string  `json:"hash"` // first 16 hex chars of xxhash64
	Quality     int     `json:"quality"`
	Scale       float64 `json:"scale"`
	Reduction   float64 `json:"reduction_pct"`
	Explanation string  `json:"explanation"`
	OverBudget  bool    `json:"over_budget,omitempty"`
	Fallback    bool    `json:"fallback,omitempty"`
	Attempts    int     `json:"attempts"`
}

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalEntries     int   `json:"total_entries"`
	Completed        int   `json:"completed"`
	Failed           int   `json:"failed"`
	OverBudget       int   `json:"over_budget,omitempty"`
}

// SupportedVersion is the current schema version.
const SupportedVersion = 1
