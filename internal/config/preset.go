package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset хранит тайминги фаз в YAML-файле, чтобы подобранную анимацию
// можно было переиспользовать между запусками.
type Preset struct {
	Version string `yaml:"version"`
	Phases  Phases `yaml:"phases"`
}

// WritePreset writes the phase timings to a YAML file.
func WritePreset(p Phases, path string) error {
	data, err := yaml.Marshal(&Preset{Version: "1.0", Phases: p})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPreset reads phase timings from a YAML file.
func ReadPreset(path string) (Phases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Phases{}, err
	}

	var preset Preset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return Phases{}, err
	}
	if err := preset.Phases.Validate(); err != nil {
		return Phases{}, fmt.Errorf("пресет %s: %w", path, err)
	}
	return preset.Phases, nil
}
