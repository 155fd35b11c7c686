// Package decoder turns encoded image bytes into a search source.
package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/AnyUserName/imgfit/internal/encoder"
	"github.com/AnyUserName/imgfit/internal/targetsize"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotImage is returned when the sniffed content type is not an image.
	ErrNotImage = errors.New("not an image")
	// ErrUnsupported is returned for image types without a registered decoder.
	ErrUnsupported = errors.New("unsupported image format")
)

// DecodeError reports why an input could not be decoded. It is fatal for
// that image only.
type DecodeError struct {
	Name string // file name or other label, may be empty
	MIME string // sniffed content type
	Err  error
}

func (e *DecodeError) Error() string {
	name := e.Name
	if name == "" {
		name = "input"
	}
	if e.MIME != "" {
		return fmt.Sprintf("decode %s (%s): %v", name, e.MIME, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode sniffs and decodes data. EXIF orientation is applied so the
// pixels are upright; the returned Source carries len(data) as its size.
func Decode(data []byte) (targetsize.Source, error) {
	return decode("", data)
}

// DecodeFile reads and decodes the file at path.
func DecodeFile(path string) (targetsize.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return targetsize.Source{}, &DecodeError{Name: path, Err: err}
	}
	return decode(path, data)
}

func decode(name string, data []byte) (targetsize.Source, error) {
	if len(data) == 0 {
		return targetsize.Source{}, &DecodeError{Name: name, Err: errors.New("empty input")}
	}

	mime := mimetype.Detect(data).String()
	if !strings.HasPrefix(mime, "image/") {
		return targetsize.Source{}, &DecodeError{Name: name, MIME: mime, Err: ErrNotImage}
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			err = ErrUnsupported
		}
		return targetsize.Source{}, &DecodeError{Name: name, MIME: mime, Err: err}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return targetsize.Source{}, &DecodeError{Name: name, MIME: mime, Err: err}
	}
	if b := img.Bounds(); b.Dx() < 1 || b.Dy() < 1 {
		return targetsize.Source{}, &DecodeError{Name: name, MIME: mime, Err: targetsize.ErrEmptyImage}
	}

	return targetsize.Source{
		Image:  img,
		Format: encoder.NormalizeFormat(format),
		Size:   int64(len(data)),
	}, nil
}
