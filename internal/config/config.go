package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/windmpc/internal/wake"
)

const (
	DefaultCFL       = 0.8
	DefaultHorizon   = 60.0
	DefaultMaxIter   = 40
	DefaultTolerance = 1e-8
)

type Config struct {
	Farm      wake.Params     `yaml:"farm"`
	Horizon   HorizonConfig   `yaml:"horizon"`
	Reference ReferenceConfig `yaml:"reference"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
}

type HorizonConfig struct {
	Start  float64 `yaml:"start"`
	Length float64 `yaml:"length"`
	CFL    float64 `yaml:"cfl"`
}

// ReferenceConfig holds the externally supplied farm power reference as
// (time, power) samples; they must cover the whole horizon.
type ReferenceConfig struct {
	Times  []float64 `yaml:"times"`
	Powers []float64 `yaml:"powers"`
}

type OptimizerConfig struct {
	Method        string  `yaml:"method"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

func DefaultConfig() *Config {
	return &Config{
		Farm: wake.DefaultParams(),
		Horizon: HorizonConfig{
			Start:  0,
			Length: DefaultHorizon,
			CFL:    DefaultCFL,
		},
		Reference: ReferenceConfig{
			// hold slightly above the two-turbine operating power
			Times:  []float64{0, 600},
			Powers: []float64{95, 95},
		},
		Optimizer: OptimizerConfig{
			Method:        "lbfgs",
			MaxIterations: DefaultMaxIter,
			Tolerance:     DefaultTolerance,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
