package config

import "sort"

// Presets are ready-made tracking scenarios. Powers are in the same units
// as the farm's generator power (torque_coeff * uinf^2 * rotor speed).
var presets = map[string]func() *Config{
	"steady": func() *Config {
		// hold the initial farm power; the optimizer should stay put
		cfg := DefaultConfig()
		cfg.Reference.Times = []float64{0, 600}
		cfg.Reference.Powers = []float64{92.16, 92.16}
		return cfg
	},
	"step": func() *Config {
		cfg := DefaultConfig()
		cfg.Horizon.Length = 120
		cfg.Reference.Times = []float64{0, 40, 44, 600}
		cfg.Reference.Powers = []float64{92.16, 92.16, 100, 100}
		return cfg
	},
	"ramp-down": func() *Config {
		// curtailment request ramping the farm down by 15%
		cfg := DefaultConfig()
		cfg.Horizon.Length = 120
		cfg.Reference.Times = []float64{0, 20, 80, 600}
		cfg.Reference.Powers = []float64{92.16, 92.16, 78.3, 78.3}
		return cfg
	},
	"single": func() *Config {
		cfg := DefaultConfig()
		cfg.Farm.Turbines = 1
		cfg.Reference.Times = []float64{0, 600}
		cfg.Reference.Powers = []float64{46.08, 46.08}
		return cfg
	},
}

// GetPreset returns a copy of the named preset, or nil if unknown.
func GetPreset(name string) *Config {
	build, ok := presets[name]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
