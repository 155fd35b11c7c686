package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/imgfit/internal/bytesize"
	"github.com/AnyUserName/imgfit/internal/report"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_report>",
	Short: "Display statistics for a compress run",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// resolveReportPath accepts either a report file or the directory holding one.
func resolveReportPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, report.FileName), nil
	}
	return path, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	path, err := resolveReportPath(args[0])
	if err != nil {
		return err
	}
	r, err := report.ReadJSON(path)
	if err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), r)
	return nil
}

func printStats(w io.Writer, r *report.Report) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Report version: %d\n", r.Version)
	fmt.Fprintf(w, "  Generated:      %s\n", r.GeneratedAt)
	fmt.Fprintf(w, "  Profile:        %s\n", r.Profile)
	fmt.Fprintf(w, "  Target:         %s\n", bytesize.Format(r.TargetBytes))
	if r.RunInfo != nil {
		fmt.Fprintf(w, "  Run:            %s (workers=%d, steps=%d, scale quality=%.2f)\n",
			r.RunInfo.RunID, r.RunInfo.Workers, r.RunInfo.StepsPerPhase, r.RunInfo.ScaleQuality)
	}
	fmt.Fprintln(w)

	keys := make([]string, 0, len(r.Entries))
	for k := range r.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Image", "State", "Format", "Original", "Output", "Quality", "Scale", "Saved", "Note"})
	for _, k := range keys {
		e := r.Entries[k]
		row := table.Row{truncKey(k, 40), e.State.String(), e.Source.Format, bytesize.Format(e.Source.Size)}
		if o := e.Output; o != nil {
			note := ""
			switch {
			case o.OverBudget:
				note = "over budget"
			case o.Scale < 0.99:
				note = fmt.Sprintf("%dx%d", o.Width, o.Height)
			}
			row = append(row,
				bytesize.Format(o.Size),
				fmt.Sprintf("%d%%", o.Quality),
				fmt.Sprintf("%.2f", o.Scale),
				fmt.Sprintf("%.1f%%", o.Reduction),
				note,
			)
		} else {
			row = append(row, "-", "-", "-", "-", e.Error)
		}
		tw.AppendRow(row)
	}

	s := r.Stats
	saved := ""
	if s.TotalInputBytes > 0 && s.TotalOutputBytes > 0 {
		saved = fmt.Sprintf("%.1f%%", (1-float64(s.TotalOutputBytes)/float64(s.TotalInputBytes))*100)
	}
	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d images", s.TotalEntries),
		fmt.Sprintf("%d ok / %d failed", s.Completed, s.Failed),
		"",
		bytesize.Format(s.TotalInputBytes),
		bytesize.Format(s.TotalOutputBytes),
		"", "", saved, "",
	})

	right := []int{4, 5, 6, 7, 8}
	configs := make([]table.ColumnConfig, 0, len(right))
	for _, n := range right {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)

	fmt.Fprintln(w, tw.Render())

	if s.OverBudget > 0 {
		fmt.Fprintf(w, "\n  ⚠ %d image(s) could not reach the target and were written at the minimum configuration\n", s.OverBudget)
	}
	fmt.Fprintln(w)
}
