package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, _, exists, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Errorf("exists = true with no config file present")
	}
	if cfg.Tools.Chdman != "chdman" || cfg.Tools.Binmerge != "binmerge" || cfg.Tools.DolphinTool != "DolphinTool" {
		t.Errorf("tool defaults = %+v", cfg.Tools)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.CacheDir) {
		t.Errorf("cache dir not expanded to an absolute path: %q", cfg.Paths.CacheDir)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `[paths]
cache_dir = "` + dir + `/cache"

[tools]
chdman = "/opt/mame/chdman"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatalf("exists = false for an explicit file")
	}
	if resolved != path {
		t.Errorf("resolvedPath = %q, want %q", resolved, path)
	}
	if cfg.Tools.Chdman != "/opt/mame/chdman" {
		t.Errorf("chdman = %q", cfg.Tools.Chdman)
	}
	// Unset fields keep their defaults.
	if cfg.Tools.Binmerge != "binmerge" {
		t.Errorf("binmerge = %q, want default", cfg.Tools.Binmerge)
	}
	// Format and level are normalized to lowercase.
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.CachePath() != filepath.Join(dir, "cache", "cache.db") {
		t.Errorf("CachePath() = %q", cfg.CachePath())
	}
}

func TestLoadExplicitMissingFileIsError(t *testing.T) {
	_, _, _, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("err = %v, want missing-file error", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bad logging format",
			content: "[logging]\nformat = \"yaml\"\n",
			want:    "unsupported value",
		},
		{
			name:    "blank chdman",
			content: "[tools]\nchdman = \" \"\n",
			want:    "chdman must not be empty",
		},
		{
			name:    "malformed toml",
			content: "tools = [\n",
			want:    "parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, _, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/.cache/dumpcheck")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, ".cache", "dumpcheck") {
		t.Errorf("expandPath = %q", got)
	}

	if got, err := expandPath(""); err != nil || got != "" {
		t.Errorf("expandPath(\"\") = (%q, %v)", got, err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	// The sample must itself load cleanly.
	if _, _, _, err := Load(path); err != nil {
		t.Errorf("sample config does not load: %v", err)
	}

	if err := CreateSample(path); err == nil {
		t.Errorf("CreateSample overwrote an existing file")
	}
}
