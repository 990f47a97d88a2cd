package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// DefaultTextModel is the Gemini model used for advice and parameter extraction
const DefaultTextModel = "models/gemini-2.0-flash"

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `yaml:"listen_addr"`
	Debug      bool   `yaml:"debug"`
	LogLevel   string `yaml:"log_level"`

	// Directories
	DataDirectory     string `yaml:"data_directory"`
	UploadsDirectory  string `yaml:"uploads_directory"`
	ProfilesDirectory string `yaml:"profiles_directory"`

	// Profile store
	StoreBackend string `yaml:"store_backend"`
	SQLitePath   string `yaml:"sqlite_path"`

	// SeedDataset is an optional engineered dataset served for ids with no
	// stored profile, before falling back to sample data
	SeedDataset string `yaml:"seed_dataset"`

	// Uploads
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	KeepUploads    bool  `yaml:"keep_uploads"`

	// Advisor
	GeminiAPIKey   string        `yaml:"-"`
	TextModel      string        `yaml:"text_model"`
	AdvisorTimeout time.Duration `yaml:"advisor_timeout"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	dataDir := filepath.Join(wd, "data")
	return &Config{
		ListenAddr:        ":8080",
		LogLevel:          "info",
		DataDirectory:     dataDir,
		UploadsDirectory:  filepath.Join(dataDir, "uploads"),
		ProfilesDirectory: filepath.Join(dataDir, "profiles"),
		StoreBackend:      StoreMemory,
		SQLitePath:        filepath.Join(dataDir, "fingenius.db"),
		MaxUploadBytes:    10 << 20,
		TextModel:         DefaultTextModel,
		AdvisorTimeout:    60 * time.Second,
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// FINGENIUS_CONFIG, and FINGENIUS_* environment variables, in that order.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path := os.Getenv("FINGENIUS_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.ensureDirectories()

	return cfg, nil
}

// loadFile overlays settings from a YAML file
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dataDir := c.DataDirectory
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if c.DataDirectory != dataDir {
		c.rebaseDataDirectory(dataDir)
	}
	return nil
}

// rebaseDataDirectory moves paths still under the old data directory to the new one
func (c *Config) rebaseDataDirectory(old string) {
	for _, p := range []*string{&c.UploadsDirectory, &c.ProfilesDirectory, &c.SQLitePath} {
		if rel, err := filepath.Rel(old, *p); err == nil && !strings.HasPrefix(rel, "..") {
			*p = filepath.Join(c.DataDirectory, rel)
		}
	}
}

func (c *Config) applyEnv() {
	if addr := os.Getenv("FINGENIUS_LISTEN_ADDR"); addr != "" {
		c.ListenAddr = addr
	}
	if debug := os.Getenv("FINGENIUS_DEBUG"); debug == "true" || debug == "1" {
		c.Debug = true
	}
	if level := os.Getenv("FINGENIUS_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if dataDir := os.Getenv("FINGENIUS_DATA_DIR"); dataDir != "" {
		old := c.DataDirectory
		c.DataDirectory = dataDir
		c.rebaseDataDirectory(old)
	}
	if backend := os.Getenv("FINGENIUS_STORE"); backend != "" {
		c.StoreBackend = strings.ToLower(backend)
	}
	if path := os.Getenv("FINGENIUS_SQLITE_PATH"); path != "" {
		c.SQLitePath = path
	}
	if seed := os.Getenv("FINGENIUS_SEED_DATASET"); seed != "" {
		c.SeedDataset = seed
	}
	if v := os.Getenv("FINGENIUS_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxUploadBytes = n
		} else {
			log.Warn().Str("value", v).Msg("Ignoring invalid FINGENIUS_MAX_UPLOAD_BYTES")
		}
	}
	if keep := os.Getenv("FINGENIUS_KEEP_UPLOADS"); keep == "true" || keep == "1" {
		c.KeepUploads = true
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.GeminiAPIKey = key
	}
	if model := os.Getenv("FINGENIUS_TEXT_MODEL"); model != "" {
		c.TextModel = model
	}
	if v := os.Getenv("FINGENIUS_ADVISOR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.AdvisorTimeout = d
		} else {
			log.Warn().Str("value", v).Msg("Ignoring invalid FINGENIUS_ADVISOR_TIMEOUT")
		}
	}
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var problems []string

	if c.ListenAddr == "" {
		problems = append(problems, "listen address cannot be empty")
	}

	switch c.StoreBackend {
	case StoreMemory, StoreFile:
	case StoreSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite store")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid store backend '%s': must be one of %v",
			c.StoreBackend, []string{StoreMemory, StoreFile, StoreSQLite}))
	}

	if c.MaxUploadBytes < 1 {
		problems = append(problems, fmt.Sprintf("invalid max upload size %d: must be positive", c.MaxUploadBytes))
	}

	if c.SeedDataset != "" {
		if _, err := os.Stat(c.SeedDataset); err != nil {
			problems = append(problems, fmt.Sprintf("seed dataset not readable: %v", err))
		}
	}

	if c.TextModel == "" {
		problems = append(problems, "text model cannot be empty")
	}
	if c.AdvisorTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid advisor timeout %v: must be positive", c.AdvisorTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() {
	dirs := []string{
		c.DataDirectory,
		c.UploadsDirectory,
		c.ProfilesDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Could not create directory")
		}
	}
}
