package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if cfg.TextModel != DefaultTextModel {
		t.Errorf("TextModel = %q", cfg.TextModel)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("FINGENIUS_CONFIG", "")
	t.Setenv("FINGENIUS_DATA_DIR", dataDir)
	t.Setenv("FINGENIUS_LISTEN_ADDR", ":9999")
	t.Setenv("FINGENIUS_STORE", "SQLite")
	t.Setenv("FINGENIUS_MAX_UPLOAD_BYTES", "2048")
	t.Setenv("FINGENIUS_ADVISOR_TIMEOUT", "5s")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.StoreBackend != StoreSQLite {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.MaxUploadBytes != 2048 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.AdvisorTimeout != 5*time.Second {
		t.Errorf("AdvisorTimeout = %v", cfg.AdvisorTimeout)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("GeminiAPIKey not loaded")
	}
	if cfg.SQLitePath != filepath.Join(dataDir, "fingenius.db") {
		t.Errorf("SQLitePath not moved under data dir: %s", cfg.SQLitePath)
	}
	if _, err := os.Stat(cfg.ProfilesDirectory); err != nil {
		t.Errorf("Profiles directory not created: %v", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "store")
	path := filepath.Join(dir, "fingenius.yaml")
	content := "listen_addr: \":7000\"\n" +
		"data_directory: " + dataDir + "\n" +
		"store_backend: file\n" +
		"advisor_timeout: 15s\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("FINGENIUS_CONFIG", path)
	t.Setenv("FINGENIUS_DATA_DIR", "")
	t.Setenv("FINGENIUS_LISTEN_ADDR", "")
	t.Setenv("FINGENIUS_STORE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":7000" || cfg.StoreBackend != StoreFile {
		t.Errorf("YAML not applied: %+v", cfg)
	}
	if cfg.AdvisorTimeout != 15*time.Second {
		t.Errorf("AdvisorTimeout = %v", cfg.AdvisorTimeout)
	}
	if cfg.UploadsDirectory != filepath.Join(dataDir, "uploads") {
		t.Errorf("UploadsDirectory = %s", cfg.UploadsDirectory)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("FINGENIUS_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StoreBackend = "postgres"
	cfg.MaxUploadBytes = 0
	cfg.AdvisorTimeout = 0
	cfg.SeedDataset = filepath.Join(t.TempDir(), "missing.csv")

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"store backend", "max upload size", "advisor timeout", "seed dataset"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %v", want, err)
		}
	}
}
