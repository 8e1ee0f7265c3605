package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// weightsFile is the on-disk shape of a scorer-weight profile file.
type weightsFile struct {
	Profiles map[string]map[string]float64 `yaml:"profiles"`
}

// DefaultWeightProfiles are the built-in scorer weightings. A profile maps
// scorer namespace to its synthesis weight; the commander's weights still
// apply on top of the selected profile's scorer set.
var DefaultWeightProfiles = map[string]map[string]float64{
	"balanced": {"vibe": 1.0, "access": 1.0, "cost": 1.0},
	"frugal":   {"vibe": 0.8, "access": 0.8, "cost": 1.5},
	"social":   {"vibe": 1.5, "access": 1.0, "cost": 0.6},
}

// LoadWeightProfiles reads scorer-weight profiles from the user config
// directory's weights.yaml, merged over the built-in profiles. A missing
// file returns the built-ins.
func LoadWeightProfiles() (map[string]map[string]float64, error) {
	return loadWeightProfiles(filepath.Join(getUserConfigDir(), "weights.yaml"))
}

func loadWeightProfiles(path string) (map[string]map[string]float64, error) {
	profiles := make(map[string]map[string]float64, len(DefaultWeightProfiles))
	for name, weights := range DefaultWeightProfiles {
		cp := make(map[string]float64, len(weights))
		for k, v := range weights {
			cp[k] = v
		}
		profiles[name] = cp
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return profiles, nil
		}
		return nil, fmt.Errorf("reading weight profiles: %w", err)
	}

	var file weightsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing weight profiles: %w", err)
	}

	for name, weights := range file.Profiles {
		profiles[name] = weights
	}
	return profiles, nil
}

// WeightProfile resolves a named profile. An empty name selects "balanced".
func WeightProfile(name string) (map[string]float64, error) {
	if name == "" {
		name = "balanced"
	}
	profiles, err := LoadWeightProfiles()
	if err != nil {
		return nil, err
	}
	weights, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown weight profile %q", name)
	}
	return weights, nil
}
