package configstore

// document is the on-disk shape described in spec section 6: four
// top-level arrays, each element self-describing. Unknown fields are
// ignored by encoding/json's default decoding behavior.
type document struct {
	GPUs      []gpuEntry      `json:"gpus,omitempty"`
	Profiles  []profileEntry  `json:"profiles,omitempty"`
	FanCurves []fanCurveEntry `json:"fan_curves,omitempty"`
	Configs   []configEntry   `json:"configs,omitempty"`
}

type gpuEntry struct {
	UUID    string `json:"uuid"`
	Profile string `json:"profile"`
}

// fanModeEntry must have exactly one of Auto/Curve/Manual set to true;
// Manual requires ManaulSpeed. The misspelling is preserved exactly for
// wire compatibility, per the design notes' open question.
type fanModeEntry struct {
	Auto        *bool `json:"auto,omitempty"`
	Curve       *bool `json:"curve,omitempty"`
	Manual      *bool `json:"manual,omitempty"`
	ManaulSpeed *int  `json:"manaul_speed,omitempty"`
}

type profileEntry struct {
	Name           string        `json:"name"`
	FanMode        *fanModeEntry `json:"fan_mode,omitempty"`
	FanCurve       *string       `json:"fan_curve"`
	Config         *string       `json:"config"`
	UpdateInterval *float64      `json:"update_interval"`
}

type fanCurveEntry struct {
	Name           string  `json:"name"`
	Points         [][2]int `json:"points"`
	HysteresisUp   *int    `json:"hysteresis_up"`
	HysteresisDown *int    `json:"hysteresis_down"`
}

type nvidiaConfigEntry struct {
	CoreOffset *int `json:"core_offset"`
	MemOffset  *int `json:"mem_offset"`
}

type configEntry struct {
	Name       string             `json:"name"`
	PowerLimit *uint              `json:"power_limit"`
	Nvidia     *nvidiaConfigEntry `json:"nvidia,omitempty"`
}
