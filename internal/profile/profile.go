package profile

import (
	"sort"

	"github.com/AnyUserName/imgfit/internal/bytesize"
	"github.com/AnyUserName/imgfit/internal/targetsize"
)

// Profile is a named byte budget plus search tuning for a destination.
type Profile struct {
	Name          string
	Target        int64   // byte budget
	StepsPerPhase int     // binary search iterations per phase
	ScaleQuality  float64 // quality held while lossy formats scale
}

// DefaultName is used when no profile is requested.
const DefaultName = "web"

// Built-in profiles.
var profiles = map[string]Profile{
	"web": {
		Name:          "web",
		Target:        200 * bytesize.KB,
		StepsPerPhase: 16,
		ScaleQuality:  0.75,
	},
	"email": {
		Name:          "email",
		Target:        1 * bytesize.MB,
		StepsPerPhase: 16,
		ScaleQuality:  0.75,
	},
	"thumbnail": {
		Name:          "thumbnail",
		Target:        50 * bytesize.KB,
		StepsPerPhase: 14,
		ScaleQuality:  0.7, // small outputs: give scaling more room
	},
	"social": {
		Name:          "social",
		Target:        5 * bytesize.MB,
		StepsPerPhase: 12,
		ScaleQuality:  0.8,
	},
}

// Get returns a profile by name. Falls back to web if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[DefaultName]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profiles in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Options returns search options carrying the profile's tuning.
func (p Profile) Options() targetsize.Options {
	return targetsize.Options{
		StepsPerPhase: p.StepsPerPhase,
		ScaleQuality:  p.ScaleQuality,
	}
}
