package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the optional TOML configuration file.
type FileConfig struct {
	Practice PracticeFileConfig `toml:"practice"`
	Export   ExportFileConfig   `toml:"export"`
}

// PracticeFileConfig maps text generation defaults.
type PracticeFileConfig struct {
	Lang      *string `toml:"lang"`
	Wordlist  *string `toml:"wordlist"`
	WordLimit *int    `toml:"word-limit"`
	MinLen    *int    `toml:"min-len"`
	MaxLen    *int    `toml:"max-len"`
}

// ExportFileConfig maps analytics export tuning.
type ExportFileConfig struct {
	BatchSize     *int    `toml:"batch-size"`
	FlushInterval *string `toml:"flush-interval"`
}

// LoadFile reads a TOML config from the given path. Missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
