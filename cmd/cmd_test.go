package cmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/imgfit/internal/report"
	"github.com/AnyUserName/imgfit/internal/targetsize"
)

func writeTestImages(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "cards"), 0o755); err != nil {
		t.Fatal(err)
	}

	grad := image.NewNRGBA(image.Rect(0, 0, 160, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			grad.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / 160), G: uint8(y * 255 / 120), B: 90, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "banner.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if err := jpeg.Encode(f, grad, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	f.Close()

	checker := image.NewNRGBA(image.Rect(0, 0, 96, 96))
	for y := 0; y < 96; y++ {
		for x := 0; x < 96; x++ {
			v := uint8((x*7 + y*13) * 31)
			checker.SetNRGBA(x, y, color.NRGBA{R: v, G: v ^ 0x5a, B: v ^ 0xa5, A: 255})
		}
	}
	f, err = os.Create(filepath.Join(dir, "cards", "card.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, checker); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompressValidateStats(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "dist")
	writeTestImages(t, in)

	stdout, err := execute(t, "compress", in, "--target", "8KB", "--out", out, "--workers", "2", "--no-progress")
	if err != nil {
		t.Fatalf("compress: %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "2 completed, 0 failed") {
		t.Errorf("summary missing counts:\n%s", stdout)
	}

	r, err := report.ReadJSON(filepath.Join(out, report.FileName))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if r.TargetBytes != 8*1024 || len(r.Entries) != 2 {
		t.Fatalf("report: target=%d entries=%d", r.TargetBytes, len(r.Entries))
	}
	for key, e := range r.Entries {
		if e.State != targetsize.Completed || e.Output.Size > r.TargetBytes {
			t.Errorf("%s: %+v", key, e.Output)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "cards", "card_exact.png")); err != nil {
		t.Errorf("png output: %v", err)
	}

	stdout, err = execute(t, "validate", out)
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "Report is valid") {
		t.Errorf("validate output:\n%s", stdout)
	}

	stdout, err = execute(t, "stats", filepath.Join(out, report.FileName))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"banner", "cards/card", "completed", "8 KB"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stats output missing %q:\n%s", want, stdout)
		}
	}
}

func TestValidateReportDetectsProblems(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a_exact.png"), []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := report.New("web", 4)
	r.Entries["a"] = report.Entry{
		State:  targetsize.Completed,
		Output: &report.Output{Path: "a_exact.png", Width: 1, Height: 1, Size: 5, Scale: 1, Hash: "deadbeefdeadbeef"},
	}
	r.Entries["b"] = report.Entry{
		State:  targetsize.Completed,
		Output: &report.Output{Path: "missing.png", Width: 1, Height: 1, Size: 3, Scale: 0.5},
	}
	r.Entries["c"] = report.Entry{State: targetsize.Failed}
	r.ComputeStats()

	errs := validateReport(r, dir)
	joined := strings.Join(errs, "\n")
	for _, want := range []string{
		`entry "a": 5 bytes exceeds target 4`,
		`entry "a": hash mismatch`,
		`entry "b": file not found`,
		`entry "c": failed without an error message`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in:\n%s", want, joined)
		}
	}

	a := r.Entries["a"]
	a.Output.OverBudget = true
	a.Output.Hash = ""
	r.Entries["a"] = a
	delete(r.Entries, "b")
	delete(r.Entries, "c")
	r.ComputeStats()
	if errs := validateReport(r, dir); len(errs) != 0 {
		t.Errorf("expected clean report, got %v", errs)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "imgfit "+version) {
		t.Errorf("version output: %q", stdout)
	}
}

func TestTruncKey(t *testing.T) {
	if got := truncKey("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncKey("a/very/long/key/name", 10); got != "...ey/name" || len(got) != 10 {
		t.Errorf("got %q", got)
	}
}
