package grading

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// WeightsFileName is the conventional name of a weights file.
const WeightsFileName = "grading.toml"

// WriteWeightsFile writes w as TOML to filePath.
func WriteWeightsFile(filePath string, w Weights) error {
	data, err := toml.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(filePath), err)
	}
	return nil
}

// CreateExampleWeightsFile writes the default weights so they can be edited.
func CreateExampleWeightsFile(filePath string) error {
	return WriteWeightsFile(filePath, DefaultWeights())
}
