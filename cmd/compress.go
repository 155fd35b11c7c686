package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/imgfit/internal/bytesize"
	"github.com/AnyUserName/imgfit/internal/pipeline"
	"github.com/AnyUserName/imgfit/internal/profile"
	"github.com/AnyUserName/imgfit/internal/report"
	"github.com/AnyUserName/imgfit/internal/targetsize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	compressTarget       string
	compressProfile      string
	compressOutDir       string
	compressFormat       string
	compressSuffix       string
	compressWorkers      int
	compressSteps        int
	compressScaleQuality float64
	compressNoReport     bool
	compressNoProgress   bool
)

var compressCmd = &cobra.Command{
	Use:   "compress <input>...",
	Short: "Compress images to fit a target file size",
	Long: `Accepts image files and directories (scanned recursively for png, jpg,
jpeg, webp, gif, bmp, tiff). Each image is searched independently and
written to <out>/<relative path>/<name>_exact.<ext>.

JPEG, WebP and AVIF sources keep their format; everything else becomes PNG
unless --format forces one. WebP and AVIF need cwebp / avifenc on PATH.`,
	Example: `  imgfit compress photo.jpg --target 500KB
  imgfit compress ./assets --profile thumbnail --out ./dist
  imgfit compress scan.tiff --target 2MB --format jpeg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompress,
}

func init() {
	f := compressCmd.Flags()
	f.StringVarP(&compressTarget, "target", "t", "", "byte budget per image, e.g. 200KB, 1.5MB (default: profile target)")
	f.StringVarP(&compressProfile, "profile", "p", profile.DefaultName, fmt.Sprintf("preset %v", profile.Names()))
	f.StringVarP(&compressOutDir, "out", "o", "./imgfit_out", "output directory")
	f.StringVarP(&compressFormat, "format", "f", "", "force output format: jpeg, png, webp, avif")
	f.StringVar(&compressSuffix, "suffix", "_exact", "suffix appended to output base names")
	f.IntVarP(&compressWorkers, "workers", "w", 0, "parallel searches (0 = NumCPU)")
	f.IntVar(&compressSteps, "steps", 0, "binary search steps per phase (0 = profile default)")
	f.Float64Var(&compressScaleQuality, "scale-quality", 0, "quality held while scaling lossy formats, 0-1 (0 = profile default)")
	f.BoolVar(&compressNoReport, "no-report", false, "do not write "+report.FileName)
	f.BoolVar(&compressNoProgress, "no-progress", false, "disable the progress bar")
	rootCmd.AddCommand(compressCmd)
}

// applyCompressFlags layers explicitly set flags over the loaded config.
func applyCompressFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("target") {
		cfg.Target = compressTarget
	}
	if f.Changed("profile") {
		cfg.Profile = compressProfile
	}
	if f.Changed("out") {
		cfg.Output.Dir = compressOutDir
	}
	if f.Changed("format") {
		cfg.Output.Format = compressFormat
	}
	if f.Changed("suffix") {
		cfg.Output.Suffix = compressSuffix
	}
	if f.Changed("workers") {
		cfg.Performance.Workers = compressWorkers
	}
	if f.Changed("steps") {
		cfg.Search.StepsPerPhase = compressSteps
	}
	if f.Changed("scale-quality") {
		cfg.Search.ScaleQuality = compressScaleQuality
	}
	if compressNoReport {
		cfg.Output.Report = false
	}
	return cfg.Validate()
}

func runCompress(cmd *cobra.Command, args []string) error {
	start := time.Now()
	if err := applyCompressFlags(cmd); err != nil {
		return err
	}

	target, err := cfg.TargetBytes()
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	absOutput, err := filepath.Abs(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	log.WithFields(logrus.Fields{
		"inputs":  args,
		"output":  absOutput,
		"profile": cfg.Profile,
		"target":  bytesize.Format(target),
	}).Debug("compress")

	prog := newProgress(cmd.ErrOrStderr(), !compressNoProgress && isTerminal(cmd.ErrOrStderr()))
	if prog.enabled() && !verbose {
		// Per-image info logs would tear the bar apart.
		prevLevel := log.GetLevel()
		if prevLevel > logrus.WarnLevel {
			log.SetLevel(logrus.WarnLevel)
			defer log.SetLevel(prevLevel)
		}
	}

	p := pipeline.New(pipeline.Config{
		Inputs:    args,
		OutputDir: absOutput,
		Target:    target,
		Format:    cfg.Output.Format,
		Suffix:    cfg.Output.Suffix,
		Workers:   cfg.Performance.Workers,
		Profile:   cfg.Profile,
		Search:    cfg.SearchOptions(),
		Logger:    log,
		OnEvent:   prog.observe,
	})

	r, runErr := p.Run(cmd.Context())
	prog.finish()
	if r == nil {
		return fmt.Errorf("pipeline: %w", runErr)
	}

	if cfg.Output.Report {
		reportPath := filepath.Join(absOutput, report.FileName)
		if err := report.WriteJSON(r, reportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.WithField("path", reportPath).Debug("report written")
	}

	printCompressSummary(cmd.OutOrStdout(), r, time.Since(start))
	if runErr != nil {
		return fmt.Errorf("pipeline: %w", runErr)
	}
	return nil
}

func printCompressSummary(w io.Writer, r *report.Report, elapsed time.Duration) {
	keys := make([]string, 0, len(r.Entries))
	for k := range r.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  imgfit: %d image(s) → %s each (%s)\n", len(keys), bytesize.Format(r.TargetBytes), r.Profile)
	fmt.Fprintln(w)
	for _, k := range keys {
		e := r.Entries[k]
		if e.State != targetsize.Completed || e.Output == nil {
			fmt.Fprintf(w, "    ✗ %-36s %s\n", truncKey(k, 36), e.Error)
			continue
		}
		o := e.Output
		mark := "✓"
		if o.OverBudget {
			mark = "!"
		}
		fmt.Fprintf(w, "    %s %-36s %9s → %9s  q=%3d%%  scale=%.2f  (−%.0f%%)\n",
			mark, truncKey(k, 36),
			bytesize.Format(e.Source.Size), bytesize.Format(o.Size),
			o.Quality, o.Scale, o.Reduction,
		)
		if o.OverBudget {
			fmt.Fprintf(w, "      target unreachable; smallest configuration written\n")
		}
	}

	s := r.Stats
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Done in %s: %d completed, %d failed", elapsed.Round(time.Millisecond), s.Completed, s.Failed)
	if s.OverBudget > 0 {
		fmt.Fprintf(w, ", %d over budget", s.OverBudget)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Total:   %s → %s\n", bytesize.Format(s.TotalInputBytes), bytesize.Format(s.TotalOutputBytes))
	fmt.Fprintln(w)
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
