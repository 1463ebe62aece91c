package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"github.com/grimhold/oubliette/engine/core"
)

// Config is the read-mostly startup configuration of the graphics service.
// The only write-back path is the one-time persistence of a discovered
// outline font file, see Save.
type Config struct {
	// Root directory of the packed game data.
	DataDir  string `toml:"data_dir"`
	LogLevel string `toml:"log_level"`
	// BCP 47 tag of the active language, e.g. "en", "de", "ja".
	Language string `toml:"language"`
	// Whether to consult the external graphics override folder.
	UseCustomGraphics bool   `toml:"use_custom_graphics"`
	CustomGraphicsDir string `toml:"custom_graphics_dir"`
	// Per-language outline (scalable) font files. A language without an
	// entry falls back to bitmap glyph sheets.
	OutlineFonts map[string]string `toml:"outline_fonts"`

	path string
}

func Default() *Config {
	return &Config{
		DataDir:      "data",
		LogLevel:     "info",
		Language:     "en",
		OutlineFonts: map[string]string{},
	}
}

// Load reads the TOML configuration at path. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogWarn("configuration file '%s' not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration '%s': %w", path, err)
	}
	if cfg.OutlineFonts == nil {
		cfg.OutlineFonts = map[string]string{}
	}
	return cfg, nil
}

// Save persists the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("configuration has no backing file")
	}
	raw, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, raw, 0o644)
}

// ActiveLanguage parses the configured language tag. An unparseable tag
// is reported and resolves to English.
func (c *Config) ActiveLanguage() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		core.LogWarn("unparseable language tag '%s', falling back to English", c.Language)
		return language.English
	}
	return tag
}
