// Package config loads assembler settings from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the assembler. Zero limits mean unlimited.
type Config struct {
	LoadBase      int    `yaml:"load_base"`
	MaxLine       int    `yaml:"max_line"`
	MaxLabel      int    `yaml:"max_label"`
	BytesPerRow   int    `yaml:"bytes_per_row"`
	SourceSuffix  string `yaml:"source_suffix"`
	ObjectSuffix  string `yaml:"object_suffix"`
	EntrySuffix   string `yaml:"entry_suffix"`
	ExternSuffix  string `yaml:"extern_suffix"`
	MaxSymbols    int    `yaml:"max_symbols"`
	MaxImageBytes int    `yaml:"max_image_bytes"`
}

// Default returns the standard settings: load base 100, 80-character lines,
// 31-character labels and four bytes per object row.
func Default() Config {
	return Config{
		LoadBase:     100,
		MaxLine:      80,
		MaxLabel:     31,
		BytesPerRow:  4,
		SourceSuffix: ".as",
		ObjectSuffix: ".ob",
		EntrySuffix:  ".ent",
		ExternSuffix: ".ext",
	}
}

// Parse overlays the YAML document data on the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the assembler cannot work with.
func (c Config) Validate() error {
	switch {
	case c.LoadBase < 0:
		return fmt.Errorf("load_base must not be negative, got %d", c.LoadBase)
	case c.MaxLine <= 0:
		return fmt.Errorf("max_line must be positive, got %d", c.MaxLine)
	case c.MaxLabel <= 0:
		return fmt.Errorf("max_label must be positive, got %d", c.MaxLabel)
	case c.BytesPerRow <= 0:
		return fmt.Errorf("bytes_per_row must be positive, got %d", c.BytesPerRow)
	case c.MaxSymbols < 0 || c.MaxImageBytes < 0:
		return fmt.Errorf("limits must not be negative")
	case c.SourceSuffix == "":
		return fmt.Errorf("source_suffix must not be empty")
	}
	return nil
}
