//go:build ignore

// gen_fixtures creates test images for the imgfit smoke test: a mix of
// lossy and lossless sources, one that needs scaling and one per
// re-encoded container (bmp, tiff, gif).
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(filepath.Join(dir, "cards"), 0o755); err != nil {
		fatal(err)
	}

	// Photo-like JPEG, comfortably above a 100 KB budget at full quality.
	write(filepath.Join(dir, "banner.jpg"), func(f *os.File) error {
		return jpeg.Encode(f, texture(1600, 900), &jpeg.Options{Quality: 98})
	})

	// Noisy PNGs: lossless, so only scaling can shrink them.
	for i := 1; i <= 3; i++ {
		path := filepath.Join(dir, "cards", fmt.Sprintf("card-%d.png", i))
		write(path, func(f *os.File) error { return png.Encode(f, noise(400, 300, uint32(i))) })
	}

	// Alpha channel survives PNG re-encoding.
	write(filepath.Join(dir, "logo.png"), func(f *os.File) error {
		return png.Encode(f, alphaGradient(256, 256))
	})

	// Containers without a matching encoder are re-encoded as PNG.
	write(filepath.Join(dir, "scan.bmp"), func(f *os.File) error { return bmp.Encode(f, texture(320, 240)) })
	write(filepath.Join(dir, "scan.tiff"), func(f *os.File) error { return tiff.Encode(f, texture(320, 240), nil) })
	write(filepath.Join(dir, "icon.gif"), func(f *os.File) error {
		pal := image.NewPaletted(image.Rect(0, 0, 64, 64), palette.Plan9)
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				pal.SetColorIndex(x, y, uint8((x^y)*3))
			}
		}
		return gif.Encode(f, pal, nil)
	})

	// Not an image despite the extension; must fail without stopping the run.
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o644); err != nil {
		fatal(err)
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 9 fixtures in %s\n", dir)
}

func write(path string, encode func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		fatal(err)
	}
	if err := encode(f); err != nil {
		f.Close()
		fatal(fmt.Errorf("encode %s: %w", path, err))
	}
	if err := f.Close(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "[gen_fixtures]", err)
	os.Exit(1)
}

// texture is a gradient with fine detail so JPEG quality matters.
func texture(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := uint8((x * y) % 37)
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x*255/w) ^ d,
				G: uint8(y*255/h) ^ d,
				B: 128 + d,
				A: 255,
			})
		}
	}
	return img
}

func noise(w, h int, seed uint32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	next := func() uint8 {
		seed = seed*1664525 + 1013904223
		return uint8(seed >> 24)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: next(), G: next(), B: next(), A: 255})
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}
