package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AnyUserName/imgfit/internal/encoder"
)

// Input represents a discovered image file.
type Input struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the scanned directory, or the base
	// name for inputs given as files.
	RelPath string
	// Key is the report key (relpath without extension, forward slashes).
	Key string
	// Format is the format implied by the extension (jpeg, png, webp, ...).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// IsImagePath reports whether path has a recognized image extension.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanImages resolves files and directories into inputs. Directories are
// walked recursively, skipping hidden ones. Files named explicitly must
// have an image extension. Keys are made unique across inputs.
func ScanImages(paths ...string) ([]Input, error) {
	var inputs []Input
	seen := map[string]bool{}

	add := func(abs, rel string, size int64) {
		ext := filepath.Ext(rel)
		base := filepath.ToSlash(strings.TrimSuffix(rel, ext))
		key := base
		for n := 2; seen[key]; n++ {
			key = fmt.Sprintf("%s~%d", base, n)
		}
		seen[key] = true
		inputs = append(inputs, Input{
			AbsPath: abs,
			RelPath: filepath.ToSlash(rel),
			Key:     key,
			Format:  encoder.NormalizeFormat(ext),
			Size:    size,
		})
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if !IsImagePath(abs) {
				return nil, fmt.Errorf("%s: not a recognized image extension", p)
			}
			add(abs, filepath.Base(abs), info.Size())
			continue
		}

		var found []Input
		err = filepath.Walk(abs, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				// Skip hidden directories.
				if path != abs && strings.HasPrefix(fi.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !IsImagePath(path) {
				return nil
			}
			rel, err := filepath.Rel(abs, path)
			if err != nil {
				return err
			}
			found = append(found, Input{AbsPath: path, RelPath: rel, Size: fi.Size()})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		sort.Slice(found, func(i, j int) bool { return found[i].RelPath < found[j].RelPath })
		for _, f := range found {
			add(f.AbsPath, f.RelPath, f.Size)
		}
	}

	return inputs, nil
}
