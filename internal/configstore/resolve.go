package configstore

import (
	"time"

	"mossd/internal/device"
	"mossd/internal/fancurve"
)

// resolveProfile implements the three-step resolution algorithm from
// spec section 4.2: binding -> profile, falling back to the default
// profile at each step. It always succeeds because the default profile
// is guaranteed present (P3, resolution totality).
func (s *store) resolveProfile(id device.ID) Profile {
	name, ok := s.bindings[id]
	if !ok {
		name = DefaultProfileName
	}

	profile, ok := s.profiles[name]
	if !ok {
		profile = s.profiles[DefaultProfileName]
	}

	return profile
}

func (s *store) resolveFanMode(id device.ID) fancurve.FanMode {
	return s.resolveProfile(id).FanMode
}

func (s *store) resolveFanCurve(id device.ID) *fancurve.FanCurveInfo {
	profile := s.resolveProfile(id)
	if profile.FanCurveName == nil {
		return nil
	}

	info, ok := s.curves[*profile.FanCurveName]
	if !ok {
		return nil
	}

	return &info
}

func (s *store) resolveUpdateInterval(id device.ID) time.Duration {
	return s.resolveProfile(id).UpdateInterval
}

func (s *store) resolveConfig(id device.ID) *device.GpuConfig {
	profile := s.resolveProfile(id)
	if profile.ConfigName == nil {
		return nil
	}

	cfg, ok := s.configs[*profile.ConfigName]
	if !ok {
		return nil
	}

	return &cfg
}
