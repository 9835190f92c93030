package configstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"mossd/internal/device"
	"mossd/internal/errors"
	"mossd/internal/fancurve"
	"mossd/internal/logger"
)

// load reads path and decodes it into a fresh store. A missing file is
// not an error: it yields a store containing only the default profile,
// matching "any [array] may be absent (treated as empty)".
func load(path string) (*store, error) {
	errFactory := errors.New()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info().Str("path", path).Msg("No configuration document found, starting with defaults")
		return newStore(), nil
	}
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrConfigIO, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errFactory.Wrap(errors.ErrConfigJSON, err)
	}

	s := newStore()

	for _, g := range doc.GPUs {
		id := device.ID(g.UUID)
		if _, exists := s.bindings[id]; exists {
			logger.Warn().Str("uuid", g.UUID).Msg("Duplicate GPU binding in config, keeping first definition")
			continue
		}
		s.bindings[id] = g.Profile
	}

	for _, p := range doc.Profiles {
		if p.Name == DefaultProfileName {
			logger.Warn().Msg("Ignoring redefinition of the default profile in config")
			continue
		}
		if _, exists := s.profiles[p.Name]; exists {
			logger.Warn().Str("profile", p.Name).Msg("Duplicate profile in config, keeping first definition")
			continue
		}

		profile, err := profileFromEntry(p)
		if err != nil {
			logger.Warn().Err(err).Str("profile", p.Name).Msg("Dropping malformed profile entry")
			continue
		}

		s.profiles[p.Name] = profile
	}

	for _, c := range doc.FanCurves {
		if _, exists := s.curves[c.Name]; exists {
			logger.Warn().Str("curve", c.Name).Msg("Duplicate fan curve in config, keeping first definition")
			continue
		}
		s.curves[c.Name] = fanCurveInfoFromEntry(c)
	}

	for _, c := range doc.Configs {
		if _, exists := s.configs[c.Name]; exists {
			logger.Warn().Str("config", c.Name).Msg("Duplicate GPU config in config, keeping first definition")
			continue
		}
		s.configs[c.Name] = gpuConfigFromEntry(c)
	}

	return s, nil
}

// save serializes s to path, omitting the default profile and using an
// atomic rename so a concurrent reader never observes a partial write.
func save(path string, s *store) error {
	errFactory := errors.New()

	doc := document{}

	for id, profile := range s.bindings {
		doc.GPUs = append(doc.GPUs, gpuEntry{UUID: string(id), Profile: profile})
	}

	for name, profile := range s.profiles {
		if name == DefaultProfileName {
			continue
		}
		doc.Profiles = append(doc.Profiles, profileToEntry(profile))
	}

	for name, info := range s.curves {
		doc.FanCurves = append(doc.FanCurves, fanCurveInfoToEntry(name, info))
	}

	for name, cfg := range s.configs {
		doc.Configs = append(doc.Configs, gpuConfigToEntry(name, cfg))
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errFactory.Wrap(errors.ErrConfigJSON, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errFactory.Wrap(errors.ErrConfigIO, err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json.tmp")
	if err != nil {
		return errFactory.Wrap(errors.ErrConfigIO, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errFactory.Wrap(errors.ErrConfigIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errFactory.Wrap(errors.ErrConfigIO, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errFactory.Wrap(errors.ErrConfigIO, err)
	}

	return nil
}

func profileFromEntry(p profileEntry) (Profile, error) {
	profile := Profile{
		Name:           p.Name,
		FanMode:        fancurve.Auto(),
		FanCurveName:   p.FanCurve,
		ConfigName:     p.Config,
		UpdateInterval: defaultUpdateInterval,
	}

	if p.UpdateInterval != nil {
		profile.UpdateInterval = time.Duration(*p.UpdateInterval * float64(time.Second))
	}

	if p.FanMode != nil {
		mode, err := fanModeFromEntry(*p.FanMode)
		if err != nil {
			return Profile{}, err
		}
		profile.FanMode = mode
	}

	return profile, nil
}

func fanModeFromEntry(e fanModeEntry) (fancurve.FanMode, error) {
	errFactory := errors.New()

	set := 0
	if boolSet(e.Auto) {
		set++
	}
	if boolSet(e.Curve) {
		set++
	}
	if boolSet(e.Manual) {
		set++
	}

	if set != 1 {
		return fancurve.FanMode{}, errFactory.WithMessage(errors.ErrConfigJSON,
			"fan_mode must set exactly one of auto/curve/manual")
	}

	switch {
	case boolSet(e.Auto):
		return fancurve.Auto(), nil
	case boolSet(e.Curve):
		return fancurve.CurveDriven(), nil
	default:
		if e.ManaulSpeed == nil {
			return fancurve.FanMode{}, errFactory.WithMessage(errors.ErrConfigJSON,
				"fan_mode manual requires manaul_speed")
		}
		return fancurve.Manual(*e.ManaulSpeed), nil
	}
}

func boolSet(b *bool) bool { return b != nil && *b }

func profileToEntry(p Profile) profileEntry {
	interval := p.UpdateInterval.Seconds()

	return profileEntry{
		Name:           p.Name,
		FanMode:        fanModeToEntry(p.FanMode),
		FanCurve:       p.FanCurveName,
		Config:         p.ConfigName,
		UpdateInterval: &interval,
	}
}

func fanModeToEntry(m fancurve.FanMode) *fanModeEntry {
	yes := true

	switch m.Kind {
	case fancurve.FanModeAuto:
		return &fanModeEntry{Auto: &yes}
	case fancurve.FanModeCurveDriven:
		return &fanModeEntry{Curve: &yes}
	default:
		speed := m.ManualPercent
		return &fanModeEntry{Manual: &yes, ManaulSpeed: &speed}
	}
}

func fanCurveInfoFromEntry(e fanCurveEntry) fancurve.FanCurveInfo {
	points := make([]fancurve.Point, 0, len(e.Points))
	for _, p := range e.Points {
		points = append(points, fancurve.Point{Temp: p[0], Percent: p[1]})
	}

	return fancurve.FanCurveInfo{
		Name:           e.Name,
		Points:         points,
		HysteresisUp:   e.HysteresisUp,
		HysteresisDown: e.HysteresisDown,
	}
}

func fanCurveInfoToEntry(name string, info fancurve.FanCurveInfo) fanCurveEntry {
	points := make([][2]int, 0, len(info.Points))
	for _, p := range info.Points {
		points = append(points, [2]int{p.Temp, p.Percent})
	}

	return fanCurveEntry{
		Name:           name,
		Points:         points,
		HysteresisUp:   info.HysteresisUp,
		HysteresisDown: info.HysteresisDown,
	}
}

func gpuConfigFromEntry(e configEntry) device.GpuConfig {
	cfg := device.GpuConfig{}

	if e.PowerLimit != nil {
		v := int(*e.PowerLimit)
		cfg.PowerLimitW = &v
	}

	if e.Nvidia != nil {
		cfg.CoreOffsetMHz = e.Nvidia.CoreOffset
		cfg.MemOffsetMHz = e.Nvidia.MemOffset
	}

	return cfg
}

func gpuConfigToEntry(name string, cfg device.GpuConfig) configEntry {
	entry := configEntry{Name: name}

	if cfg.PowerLimitW != nil {
		v := uint(*cfg.PowerLimitW)
		entry.PowerLimit = &v
	}

	if cfg.CoreOffsetMHz != nil || cfg.MemOffsetMHz != nil {
		entry.Nvidia = &nvidiaConfigEntry{
			CoreOffset: cfg.CoreOffsetMHz,
			MemOffset:  cfg.MemOffsetMHz,
		}
	}

	return entry
}
