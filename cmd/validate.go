package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/imgfit/internal/hasher"
	"github.com/AnyUserName/imgfit/internal/report"
	"github.com/AnyUserName/imgfit/internal/targetsize"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <out_dir_or_report>",
	Short: "Validate a report and check the files it references",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, err := resolveReportPath(args[0])
	if err != nil {
		return err
	}
	r, err := report.ReadJSON(path)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	errs := validateReport(r, filepath.Join(filepath.Dir(path), r.BasePath))
	if len(errs) == 0 {
		fmt.Fprintln(w, "  ✓ Report is valid")
		fmt.Fprintf(w, "  ✓ %d completed outputs present and within budget\n", r.Stats.Completed)
		return nil
	}

	fmt.Fprintf(w, "  ✗ Report has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateReport(r *report.Report, baseDir string) []string {
	var errs []string

	if r.Version != report.SupportedVersion {
		errs = append(errs, fmt.Sprintf("unsupported report version: %d", r.Version))
	}
	if r.TargetBytes <= 0 {
		errs = append(errs, fmt.Sprintf("invalid target_bytes: %d", r.TargetBytes))
	}

	keys := make([]string, 0, len(r.Entries))
	for k := range r.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seenPaths := map[string]string{}
	completed, failed := 0, 0
	for _, key := range keys {
		e := r.Entries[key]
		switch e.State {
		case targetsize.Completed:
			completed++
		case targetsize.Failed:
			failed++
			if e.Error == "" {
				errs = append(errs, fmt.Sprintf("entry %q: failed without an error message", key))
			}
			continue
		default:
			errs = append(errs, fmt.Sprintf("entry %q: not finished (state %s)", key, e.State))
			continue
		}

		o := e.Output
		if o == nil {
			errs = append(errs, fmt.Sprintf("entry %q: completed without output", key))
			continue
		}
		if o.Width <= 0 || o.Height <= 0 {
			errs = append(errs, fmt.Sprintf("entry %q: invalid dimensions %dx%d", key, o.Width, o.Height))
		}
		if o.Quality < 0 || o.Quality > 100 {
			errs = append(errs, fmt.Sprintf("entry %q: quality out of range: %d", key, o.Quality))
		}
		if o.Scale <= 0 || o.Scale > 1 {
			errs = append(errs, fmt.Sprintf("entry %q: scale out of range: %v", key, o.Scale))
		}
		if o.Size > r.TargetBytes && !o.OverBudget {
			errs = append(errs, fmt.Sprintf("entry %q: %d bytes exceeds target %d but is not flagged over budget",
				key, o.Size, r.TargetBytes))
		}
		if o.Path == "" {
			errs = append(errs, fmt.Sprintf("entry %q: missing path", key))
			continue
		}
		if other, dup := seenPaths[o.Path]; dup {
			errs = append(errs, fmt.Sprintf("entry %q: path %q also used by %q", key, o.Path, other))
		}
		seenPaths[o.Path] = key

		data, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(o.Path)))
		if err != nil {
			errs = append(errs, fmt.Sprintf("entry %q: file not found: %s", key, o.Path))
			continue
		}
		if int64(len(data)) != o.Size {
			errs = append(errs, fmt.Sprintf("entry %q: size mismatch: report=%d, disk=%d", key, o.Size, len(data)))
		}
		if o.Hash != "" && hasher.ContentHash(data, len(o.Hash)) != o.Hash {
			errs = append(errs, fmt.Sprintf("entry %q: hash mismatch", key))
		}
	}

	if r.Stats.TotalEntries != len(r.Entries) {
		errs = append(errs, fmt.Sprintf("stats.total_entries mismatch: %d != %d", r.Stats.TotalEntries, len(r.Entries)))
	}
	if r.Stats.Completed != completed || r.Stats.Failed != failed {
		errs = append(errs, fmt.Sprintf("stats completed/failed mismatch: %d/%d != %d/%d",
			r.Stats.Completed, r.Stats.Failed, completed, failed))
	}
	return errs
}
