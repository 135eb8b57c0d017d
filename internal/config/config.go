// Package config loads docsmith settings from the user config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const AppName = "docsmith"

// Settings are the tool-wide defaults read from config.yaml. Every field has
// a working zero-value fallback; the file is optional.
type Settings struct {
	// OutputDir is the default directory for generated files when a command
	// does not specify one. Empty means alongside the input.
	OutputDir string `yaml:"output_dir"`
	// SofficePath overrides the LibreOffice binary looked up on PATH.
	SofficePath string `yaml:"soffice_path"`
	// RenderDPI is the default resolution for pdf to-images. Default 150.
	RenderDPI int `yaml:"render_dpi"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{RenderDPI: 150}
}

// Dir returns the docsmith config directory (~/.config/docsmith on Linux).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(base, AppName), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads config.yaml, applies environment overrides (DOCSMITH_OUTPUT_DIR,
// DOCSMITH_SOFFICE, DOCSMITH_RENDER_DPI), and returns the effective settings.
// A missing file is not an error.
func Load() (Settings, error) {
	s := Defaults()

	path, err := Path()
	if err == nil {
		if data, readErr := os.ReadFile(path); readErr == nil {
			if yamlErr := yaml.Unmarshal(data, &s); yamlErr != nil {
				return s, fmt.Errorf("parse %s: %w", path, yamlErr)
			}
		} else if !errors.Is(readErr, os.ErrNotExist) {
			return s, fmt.Errorf("read %s: %w", path, readErr)
		}
	}

	if v := os.Getenv("DOCSMITH_OUTPUT_DIR"); v != "" {
		s.OutputDir = v
	}

	if v := os.Getenv("DOCSMITH_SOFFICE"); v != "" {
		s.SofficePath = v
	}

	if v := os.Getenv("DOCSMITH_RENDER_DPI"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
			s.RenderDPI = n
		}
	}

	if s.RenderDPI <= 0 {
		s.RenderDPI = Defaults().RenderDPI
	}

	return s, nil
}
