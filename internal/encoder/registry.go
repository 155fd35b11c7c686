package encoder

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned when no usable encoder exists for a format.
var ErrUnavailable = errors.New("encoder unavailable")

// priority is the display order for formats.
var priority = []string{"avif", "webp", "jpeg", "png"}

// sourceTargets maps a decodable source format to the format it is
// re-encoded as. Formats without an encoder of their own fall back to png.
// AVIF cannot be decoded, so it is reachable only as a forced output format.
var sourceTargets = map[string]string{
	"jpeg": "jpeg",
	"png":  "png",
	"webp": "webp",
}

// Registry holds all available encoders keyed by format.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry, probing all built-in encoders for availability.
func NewRegistry() *Registry {
	return NewRegistryWith(
		NewAVIFEncoder(),
		NewWebPEncoder(),
		&JPEGEncoder{},
		&PNGEncoder{},
	)
}

// NewRegistryWith builds a registry from the given encoders. Only available
// ones are kept; a later encoder replaces an earlier one for the same format.
func NewRegistryWith(encoders ...Encoder) *Registry {
	r := &Registry{encoders: make(map[string]Encoder)}
	for _, enc := range encoders {
		if enc.Available() {
			r.encoders[enc.Format()] = enc
		}
	}
	return r
}

// NormalizeFormat lowercases a format or extension and folds aliases
// (".jpg" -> "jpeg", "tif" -> "tiff").
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	switch f {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return f
}

// Get returns an encoder for the given format, or nil if unavailable.
func (r *Registry) Get(format string) Encoder {
	return r.encoders[NormalizeFormat(format)]
}

// ForSource picks the output encoder for an image decoded from format.
func (r *Registry) ForSource(format string) (Encoder, error) {
	target, ok := sourceTargets[NormalizeFormat(format)]
	if !ok {
		target = "png"
	}
	enc := r.encoders[target]
	if enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, target)
	}
	return enc, nil
}

// Available returns all available format names.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range priority {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(avail, ", "))
}
