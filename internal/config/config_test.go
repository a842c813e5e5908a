package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Storage.Backend != "auto" {
		t.Fatalf("Backend=%q, want auto", cfg.Storage.Backend)
	}
	if cfg.AutoSave.DebounceMS != 500 {
		t.Fatalf("DebounceMS=%d, want 500", cfg.AutoSave.DebounceMS)
	}
	if cfg.Storage.Dir == "" {
		t.Fatal("Dir must not be empty")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"storage": {"dir": "/tmp/boards", "backend": "FILE"},
		"autosave": {"debounce_ms": 250},
		"ui": {"locale": "zh-CN"}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Dir != "/tmp/boards" {
		t.Fatalf("Dir=%q", cfg.Storage.Dir)
	}
	// 后端名归一为小写 / Backend name normalizes to lower case
	if cfg.Storage.Backend != "file" {
		t.Fatalf("Backend=%q, want file", cfg.Storage.Backend)
	}
	if cfg.AutoSave.DebounceMS != 250 {
		t.Fatalf("DebounceMS=%d, want 250", cfg.AutoSave.DebounceMS)
	}
	if cfg.UI.Locale != "zh-CN" {
		t.Fatalf("Locale=%q", cfg.UI.Locale)
	}
}

// 部分配置：缺失的字段保持默认值 / Partial config: missing fields keep defaults
func TestLoad_PartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"ui": {"locale": "en"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != "auto" {
		t.Fatalf("Backend=%q, want auto", cfg.Storage.Backend)
	}
	if cfg.AutoSave.DebounceMS != 500 {
		t.Fatalf("DebounceMS=%d, want 500", cfg.AutoSave.DebounceMS)
	}
}

func TestLoad_InvalidDebounceFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"autosave": {"debounce_ms": -10}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AutoSave.DebounceMS != 500 {
		t.Fatalf("DebounceMS=%d, want 500", cfg.AutoSave.DebounceMS)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_ExplicitMissingPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for explicit missing path")
	}
}
