package profile

import (
	"testing"

	"github.com/AnyUserName/imgfit/internal/bytesize"
)

func TestGetKnown(t *testing.T) {
	p := Get("thumbnail")
	if p.Target != 50*bytesize.KB || p.ScaleQuality != 0.7 {
		t.Errorf("thumbnail: %+v", p)
	}
	opts := p.Options()
	if opts.StepsPerPhase != 14 || opts.ScaleQuality != 0.7 {
		t.Errorf("options: %+v", opts)
	}
}

func TestGetUnknownFallsBackToWeb(t *testing.T) {
	p := Get("banner")
	if p.Name != "banner" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.Target != profiles[DefaultName].Target {
		t.Errorf("target: got %d", p.Target)
	}
}

func TestNames(t *testing.T) {
	want := []string{"email", "social", "thumbnail", "web"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("names: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestProfilesStayWithinSearchBudget(t *testing.T) {
	for name, p := range profiles {
		if p.StepsPerPhase < 12 || p.StepsPerPhase > 16 {
			t.Errorf("%s: steps %d outside 12-16", name, p.StepsPerPhase)
		}
		if p.ScaleQuality <= 0 || p.ScaleQuality > 1 {
			t.Errorf("%s: scale quality %v", name, p.ScaleQuality)
		}
	}
}
