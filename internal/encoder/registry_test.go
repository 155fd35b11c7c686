package encoder

import (
	"context"
	"errors"
	"image"
	"testing"
)

// stubEncoder reports a fixed availability; used to exercise registry selection.
type stubEncoder struct {
	format    string
	available bool
}

func (s *stubEncoder) Format() string    { return s.format }
func (s *stubEncoder) Extension() string { return s.format }
func (s *stubEncoder) Kind() Kind        { return Lossy }
func (s *stubEncoder) Available() bool   { return s.available }
func (s *stubEncoder) Encode(context.Context, image.Image, float64) ([]byte, error) {
	return nil, nil
}

func TestNormalizeFormat(t *testing.T) {
	tests := map[string]string{
		"JPG":   "jpeg",
		".jpg":  "jpeg",
		"jpeg":  "jpeg",
		".TIF":  "tiff",
		" png ": "png",
		"webp":  "webp",
	}
	for in, want := range tests {
		if got := NormalizeFormat(in); got != want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegistrySkipsUnavailable(t *testing.T) {
	r := NewRegistryWith(
		&stubEncoder{format: "webp", available: false},
		&JPEGEncoder{},
		&PNGEncoder{},
	)
	if r.Get("webp") != nil {
		t.Error("unavailable webp encoder registered")
	}
	if got := r.Available(); len(got) != 2 || got[0] != "jpeg" || got[1] != "png" {
		t.Errorf("available: got %v", got)
	}
	if r.String() != "encoders: jpeg, png" {
		t.Errorf("string: got %q", r.String())
	}
}

func TestRegistryForSource(t *testing.T) {
	r := NewRegistryWith(
		&stubEncoder{format: "webp", available: true},
		&JPEGEncoder{},
		&PNGEncoder{},
	)
	tests := []struct {
		source string
		want   string
	}{
		{"jpeg", "jpeg"},
		{"jpg", "jpeg"},
		{"png", "png"},
		{"webp", "webp"},
		{"gif", "png"},
		{"bmp", "png"},
		{"tiff", "png"},
		{"avif", "png"}, // output-only format
		{"", "png"},
	}
	for _, tt := range tests {
		enc, err := r.ForSource(tt.source)
		if err != nil {
			t.Fatalf("ForSource(%q): %v", tt.source, err)
		}
		if enc.Format() != tt.want {
			t.Errorf("ForSource(%q) = %s, want %s", tt.source, enc.Format(), tt.want)
		}
	}
}

func TestRegistryForSourceUnavailable(t *testing.T) {
	r := NewRegistryWith(&JPEGEncoder{}, &PNGEncoder{}, &stubEncoder{format: "webp"})
	_, err := r.ForSource("webp")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if NewRegistryWith().String() != "no encoders available" {
		t.Error("empty registry summary")
	}
}
