package config

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "data" || cfg.Language != "en" {
		t.Fatalf("cfg = %+v, want the defaults", cfg)
	}
}

func TestLoadParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.toml")
	raw := `data_dir = "/opt/game"
log_level = "debug"
language = "de"
use_custom_graphics = true
custom_graphics_dir = "/opt/game/custom"

[outline_fonts]
de = "/opt/game/fonts/de.ttf"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/opt/game" || !cfg.UseCustomGraphics {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.OutlineFonts["de"] != "/opt/game/fonts/de.ttf" {
		t.Fatalf("outline fonts = %v", cfg.OutlineFonts)
	}
	if cfg.ActiveLanguage() != language.German {
		t.Fatalf("active language = %v, want German", cfg.ActiveLanguage())
	}
}

func TestLoadMalformedFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.toml")
	if err := os.WriteFile(path, []byte("data_dir = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("a malformed configuration must be rejected")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Language = "ja"
	cfg.OutlineFonts["ja"] = "/fonts/ja.ttf"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if again.Language != "ja" || again.OutlineFonts["ja"] != "/fonts/ja.ttf" {
		t.Fatalf("round trip lost fields: %+v", again)
	}
}

func TestActiveLanguageFallsBackToEnglish(t *testing.T) {
	cfg := Default()
	cfg.Language = "not a tag"
	if cfg.ActiveLanguage() != language.English {
		t.Fatal("an unparseable tag must resolve to English")
	}
}
