package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the application configuration. When no paths are
// given it tries config.yml in the working directory.
func Load(paths ...string) (*AppConfig, error) {
	if len(paths) == 0 {
		paths = []string{"config.yml", "./config/config.yml"}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Routing.TimeoutMS == 0 {
		cfg.Routing.TimeoutMS = 60000
	}
	if len(cfg.Routing.Modes) == 0 {
		cfg.Routing.Modes = []string{"WALK", "TRANSIT"}
	}
	if cfg.Routing.MaxWalkDistance == 0 {
		cfg.Routing.MaxWalkDistance = 1000
	}
	if cfg.Routing.WalkSpeed == 0 {
		cfg.Routing.WalkSpeed = 1.33
	}
	if cfg.Routing.WalkReluctance == 0 {
		cfg.Routing.WalkReluctance = 2
	}
	if cfg.Routing.MaxTransfers == 0 {
		cfg.Routing.MaxTransfers = 2
	}
	if len(cfg.Analysis.CutoffsMin) == 0 {
		cfg.Analysis.CutoffsMin = []int{30, 60, 90}
	}
	if cfg.Analysis.SimplifyTolerance == 0 {
		cfg.Analysis.SimplifyTolerance = 0.001
	}
	if cfg.Checkpoint.Every == 0 {
		cfg.Checkpoint.Every = 50
	}
	if cfg.Checkpoint.Dir == "" {
		cfg.Checkpoint.Dir = "checkpoints"
	}
}
