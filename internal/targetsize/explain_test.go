package targetsize

import (
	"strings"
	"testing"

	"github.com/AnyUserName/imgfit/internal/encoder"
)

func TestReduction(t *testing.T) {
	tests := []struct {
		original, final int64
		want            float64
	}{
		{1000, 250, 75},
		{1000, 1000, 0},
		{1000, 4000, 0},
		{0, 10, 0},
		{-1, 10, 0},
		{3_000_000, 0, 100},
	}
	for _, tt := range tests {
		if got := Reduction(tt.original, tt.final); got != tt.want {
			t.Errorf("Reduction(%d, %d) = %v, want %v", tt.original, tt.final, got, tt.want)
		}
	}
}

func TestExplainPriority(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{"scaled lossy", Result{Scale: 0.5, Kind: encoder.Lossy, Width: 10, Height: 5, Quality: 75}, "Dimensions scaled to 50% (10x5)"},
		{"scaled lossless", Result{Scale: 0.3, Kind: encoder.Lossless, Width: 3, Height: 3}, "Dimensions scaled to 30%"},
		{"lossless full", Result{Scale: 1, Kind: encoder.Lossless}, "Lossless format"},
		{"lossy full", Result{Scale: 1, Kind: encoder.Lossy, Quality: 83}, "quality set to 83%"},
		{"near full scale", Result{Scale: 0.995, Kind: encoder.Lossy, Quality: 40}, "quality set to 40%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := explain(&tt.res); !strings.Contains(got, tt.want) {
				t.Errorf("explain = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestStateText(t *testing.T) {
	for _, s := range []State{Idle, Searching, Completed, Failed} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back State
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if back != s {
			t.Errorf("round trip %v -> %v", s, back)
		}
	}
	var s State
	if err := s.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown state")
	}
	if !Completed.Terminal() || !Failed.Terminal() || Searching.Terminal() || Idle.Terminal() {
		t.Error("terminal states")
	}
	if State(42).String() != "state(42)" {
		t.Errorf("out of range: %q", State(42))
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	o := Options{}.WithDefaults()
	if o.StepsPerPhase != 16 || o.MinQuality != 0.01 || o.MinScale != 0.01 ||
		o.ScaleQuality != 0.75 || o.FallbackScale != 0.05 || o.FallbackQuality != 0.1 {
		t.Errorf("defaults: %+v", o)
	}
	custom := Options{StepsPerPhase: 12, ScaleQuality: 0.7}.WithDefaults()
	if custom.StepsPerPhase != 12 || custom.ScaleQuality != 0.7 || custom.MinScale != 0.01 {
		t.Errorf("custom: %+v", custom)
	}
}
