package server_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/patchsub/patchsubset/server"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
font_dir: /fonts
`)
	cfg, err := server.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr default = %q, want %q", cfg.ListenAddr, ":8080")
	}
	if cfg.FontDir != "/fonts" {
		t.Errorf("FontDir = %q, want %q", cfg.FontDir, "/fonts")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := server.LoadConfig("/nonexistent/server.yaml"); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "not: valid: yaml: at: all: [")
	if _, err := server.LoadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestBuildPredictorNoop(t *testing.T) {
	cfg := &server.PredictorConfig{Kind: "noop"}
	pred, err := cfg.BuildPredictor()
	if err != nil {
		t.Fatalf("BuildPredictor: %v", err)
	}
	if got := pred.Predict(nil, nil, nil, 10); got != nil {
		t.Errorf("noop predictor should predict nothing, got %v", got)
	}
}

func TestBuildPredictorUnknownKind(t *testing.T) {
	cfg := &server.PredictorConfig{Kind: "bogus"}
	if _, err := cfg.BuildPredictor(); err == nil {
		t.Error("expected error for an unknown predictor kind")
	}
}
