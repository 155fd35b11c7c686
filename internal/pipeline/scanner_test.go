package pipeline

import (
	"path/filepath"
	"testing"
)

func TestScanImagesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "banner.jpg"), []byte("x"))
	writeFile(t, filepath.Join(dir, "cards", "card-1.PNG"), []byte("x"))
	writeFile(t, filepath.Join(dir, "cards", "notes.txt"), []byte("x"))
	writeFile(t, filepath.Join(dir, ".cache", "hidden.png"), []byte("x"))
	writeFile(t, filepath.Join(dir, "scan.tif"), []byte("x"))

	inputs, err := ScanImages(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(inputs) != 3 {
		t.Fatalf("inputs: got %d (%+v)", len(inputs), inputs)
	}

	want := []struct{ key, rel, format string }{
		{"banner", "banner.jpg", "jpeg"},
		{"cards/card-1", "cards/card-1.PNG", "png"},
		{"scan", "scan.tif", "tiff"},
	}
	for i, w := range want {
		got := inputs[i]
		if got.Key != w.key || got.RelPath != w.rel || got.Format != w.format {
			t.Errorf("input %d: got %+v, want key=%s rel=%s format=%s", i, got, w.key, w.rel, w.format)
		}
		if !filepath.IsAbs(got.AbsPath) || got.Size != 1 {
			t.Errorf("input %d: abs=%s size=%d", i, got.AbsPath, got.Size)
		}
	}
}

func TestScanImagesFilesAndDuplicateKeys(t *testing.T) {
	a := filepath.Join(t.TempDir(), "photo.jpg")
	b := filepath.Join(t.TempDir(), "photo.png")
	writeFile(t, a, []byte("x"))
	writeFile(t, b, []byte("x"))

	inputs, err := ScanImages(a, b)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("inputs: %+v", inputs)
	}
	if inputs[0].Key != "photo" || inputs[1].Key != "photo~2" {
		t.Errorf("keys: %q, %q", inputs[0].Key, inputs[1].Key)
	}
	if inputs[1].RelPath != "photo.png" {
		t.Errorf("rel path: %q", inputs[1].RelPath)
	}
}

func TestScanImagesErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "readme.txt")
	writeFile(t, txt, []byte("x"))
	if _, err := ScanImages(txt); err == nil {
		t.Error("expected error for explicit non-image file")
	}
	if _, err := ScanImages(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestScanImagesKeysStayUniqueAgainstLiteralSuffix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"icon.gif", "icon.png", "icon~2.png"} {
		writeFile(t, filepath.Join(dir, name), []byte("x"))
	}
	inputs, err := ScanImages(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	seen := map[string]bool{}
	for _, in := range inputs {
		if seen[in.Key] {
			t.Errorf("duplicate key %q in %+v", in.Key, inputs)
		}
		seen[in.Key] = true
	}
	if len(seen) != 3 {
		t.Errorf("keys: %v", seen)
	}
}
