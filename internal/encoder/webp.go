package encoder

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/disintegration/imaging"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// tool locates an external encoder binary once and runs it against
// temp files. cwebp and avifenc only read and write files.
type tool struct {
	name string
	hint string

	once sync.Once
	path string
}

func (t *tool) available() bool {
	t.once.Do(func() {
		if p, err := exec.LookPath(t.name); err == nil {
			t.path = p
		}
	})
	return t.path != ""
}

// run writes img as PNG to a temp file, invokes the tool with
// args(src, dst) and returns the bytes it produced in dst.
func (t *tool) run(ctx context.Context, img image.Image, ext string, args func(src, dst string) []string) ([]byte, error) {
	if !t.available() {
		return nil, fmt.Errorf("%s not found in PATH; install with: %s", t.name, t.hint)
	}

	id := tempCounter.Add(1)
	srcFile, err := os.CreateTemp("", fmt.Sprintf("imgfit_src_%d_*.png", id))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := srcFile.Name()
	defer os.Remove(srcPath)

	dstFile, err := os.CreateTemp("", fmt.Sprintf("imgfit_dst_%d_*.%s", id, ext))
	if err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	// The intermediate PNG is read once by the tool, so favour speed.
	err = imaging.Encode(srcFile, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed))
	srcFile.Close()
	if err != nil {
		return nil, fmt.Errorf("encode temp png: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.path, args(srcPath, dstPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", t.name, err, string(out))
	}
	return os.ReadFile(dstPath)
}

// WebPEncoder encodes images to WebP by shelling out to cwebp.
// This approach avoids CGO while still producing optimized WebP.
type WebPEncoder struct {
	t tool
}

// NewWebPEncoder returns a cwebp-backed encoder.
func NewWebPEncoder() *WebPEncoder {
	return &WebPEncoder{t: tool{name: "cwebp", hint: "brew install webp / apt install webp"}}
}

func (e *WebPEncoder) Format() string    { return "webp" }
func (e *WebPEncoder) Extension() string { return "webp" }
func (e *WebPEncoder) Kind() Kind        { return Lossy }
func (e *WebPEncoder) Available() bool   { return e.t.available() }

func (e *WebPEncoder) Encode(ctx context.Context, img image.Image, quality float64) ([]byte, error) {
	q := strconv.Itoa(qualityPercent(quality))
	return e.t.run(ctx, img, "webp", func(src, dst string) []string {
		return []string{
			"-q", q,
			"-m", "4", // compression method (0=fast, 6=best); the search runs dozens of encodes
			"-quiet",
			src,
			"-o", dst,
		}
	})
}

// AVIFEncoder encodes images to AVIF by shelling out to avifenc.
type AVIFEncoder struct {
	t tool
}

// NewAVIFEncoder returns an avifenc-backed encoder.
func NewAVIFEncoder() *AVIFEncoder {
	return &AVIFEncoder{t: tool{name: "avifenc", hint: "brew install libavif / apt install libavif-bin"}}
}

func (e *AVIFEncoder) Format() string    { return "avif" }
func (e *AVIFEncoder) Extension() string { return "avif" }
func (e *AVIFEncoder) Kind() Kind        { return Lossy }
func (e *AVIFEncoder) Available() bool   { return e.t.available() }

func (e *AVIFEncoder) Encode(ctx context.Context, img image.Image, quality float64) ([]byte, error) {
	// avifenc uses a quantizer scale: lower = better, 0-63.
	avifQ := strconv.Itoa(63 - (qualityPercent(quality) * 63 / 100))
	return e.t.run(ctx, img, "avif", func(src, dst string) []string {
		return []string{
			"--min", avifQ,
			"--max", avifQ,
			"--speed", "6", // 0=slowest, 10=fastest
			"-j", "all",
			src,
			dst,
		}
	})
}
