package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"parley/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Paths.APIBind != "127.0.0.1:8176" {
		t.Fatalf("unexpected default bind: %s", cfg.Paths.APIBind)
	}
	if cfg.Transcriber.TimeoutSeconds <= 0 {
		t.Fatal("expected positive transcriber timeout default")
	}
	// whisper's -m flag takes a ggml model file, so the default must resolve to
	// an absolute file path.
	if !filepath.IsAbs(cfg.Transcriber.Model) || !strings.HasSuffix(cfg.Transcriber.Model, "ggml-base.en.bin") {
		t.Fatalf("expected expanded model file path, got %s", cfg.Transcriber.Model)
	}
}

func TestLoadExpandsTranscriberModelPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[transcriber]
model = "~/models/ggml-small.bin"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir: %v", err)
	}
	want := filepath.Join(home, "models", "ggml-small.bin")
	if cfg.Transcriber.Model != want {
		t.Fatalf("expected %s, got %s", want, cfg.Transcriber.Model)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[paths]
api_bind = "0.0.0.0:9000"

[admin]
token = "  hunter2  "

[llm]
model = "test/model"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to exist, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" {
		t.Fatalf("unexpected bind: %s", cfg.Paths.APIBind)
	}
	if cfg.Admin.Token != "hunter2" {
		t.Fatalf("expected trimmed token, got %q", cfg.Admin.Token)
	}
	if cfg.LLM.Model != "test/model" {
		t.Fatalf("unexpected model: %s", cfg.LLM.Model)
	}
	// Unset sections keep defaults.
	if cfg.Speech.MaxTextLen != 1000 {
		t.Fatalf("expected default max_text_len, got %d", cfg.Speech.MaxTextLen)
	}
}

func TestValidateRejectsBadFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}
