// Package configstore implements the Configuration Manager actor: the
// in-memory profile/curve/config model, its resolution algorithm, and
// JSON persistence, per spec section 4.2.
package configstore

import (
	"time"

	"mossd/internal/device"
	"mossd/internal/fancurve"
)

// DefaultProfileName names the always-present, immutable default
// profile every device binding falls back to.
const DefaultProfileName = "default"

const defaultUpdateInterval = 2 * time.Second

// Profile is a named bundle of intent: fan mode, optional curve/config
// name references, and a fan update interval.
type Profile struct {
	Name           string
	FanMode        fancurve.FanMode
	FanCurveName   *string
	ConfigName     *string
	UpdateInterval time.Duration
}

// defaultProfile returns a fresh copy of the immutable default profile:
// Auto fan mode, no curve or config reference, the default interval.
func defaultProfile() Profile {
	return Profile{
		Name:           DefaultProfileName,
		FanMode:        fancurve.Auto(),
		UpdateInterval: defaultUpdateInterval,
	}
}

// store holds the four mappings described in spec section 4.2: device
// bindings, named profiles, named curve descriptions, and named GPU
// configs. It is unexported: all access goes through the actor's
// message handlers to preserve single-writer semantics.
type store struct {
	bindings map[device.ID]string
	profiles map[string]Profile
	curves   map[string]fancurve.FanCurveInfo
	configs  map[string]device.GpuConfig
}

func newStore() *store {
	s := &store{
		bindings: make(map[device.ID]string),
		profiles: make(map[string]Profile),
		curves:   make(map[string]fancurve.FanCurveInfo),
		configs:  make(map[string]device.GpuConfig),
	}
	s.profiles[DefaultProfileName] = defaultProfile()

	return s
}
