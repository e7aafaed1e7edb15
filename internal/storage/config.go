package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds application configuration.
type Config struct {
	Source      SourceConfig      `json:"source"`
	ObjectStore ObjectStoreConfig `json:"objectStore"`
	Documents   DocumentsConfig   `json:"documents"`
	LogFile     string            `json:"logFile"`
	LogLevel    string            `json:"logLevel"`
}

// SourceConfig describes where gallery images come from.
type SourceConfig struct {
	Dir       string `json:"dir"`       // device photo folder
	Limit     int    `json:"limit"`     // max images per load
	RemoteURL string `json:"remoteURL"` // optional HTML page to scrape instead of Dir
}

// ObjectStoreConfig selects and configures the blob backend.
type ObjectStoreConfig struct {
	Backend  string `json:"backend"` // local | s3 | gcs
	LocalDir string `json:"localDir"`
	BaseURL  string `json:"baseURL"` // local only: public prefix for download URLs
	Bucket   string `json:"bucket"`
	Region   string `json:"region"`
	Endpoint string `json:"endpoint"` // s3 only: R2/MinIO endpoint
	Prefix   string `json:"prefix"`

	// Static S3 credentials. Environment only, never written to the file.
	AccessKeyID     string `json:"-"`
	SecretAccessKey string `json:"-"`
}

// DocumentsConfig selects and configures the metadata document backend.
type DocumentsConfig struct {
	Backend    string `json:"backend"` // sqlite | firestore | memory
	Path       string `json:"path"`
	Collection string `json:"collection"`
	ProjectID  string `json:"projectID"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".config", "imgpick")

	return Config{
		Source: SourceConfig{
			Dir:   filepath.Join(home, "Pictures"),
			Limit: 20,
		},
		ObjectStore: ObjectStoreConfig{
			Backend:  "local",
			LocalDir: filepath.Join(base, "bucket"),
			Prefix:   "images",
		},
		Documents: DocumentsConfig{
			Backend:    "sqlite",
			Path:       filepath.Join(base, "images.db"),
			Collection: "images",
		},
		LogFile:  filepath.Join(base, "imgpick.log"),
		LogLevel: "info",
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	config.applyDefaults(DefaultConfig())
	return &config, nil
}

// applyDefaults fills missing fields from defaults.
func (c *Config) applyDefaults(defaults Config) {
	if c.Source.Dir == "" {
		c.Source.Dir = defaults.Source.Dir
	}
	if c.Source.Limit <= 0 {
		c.Source.Limit = defaults.Source.Limit
	}
	if c.ObjectStore.Backend == "" {
		c.ObjectStore.Backend = defaults.ObjectStore.Backend
	}
	if c.ObjectStore.LocalDir == "" {
		c.ObjectStore.LocalDir = defaults.ObjectStore.LocalDir
	}
	if c.ObjectStore.Prefix == "" {
		c.ObjectStore.Prefix = defaults.ObjectStore.Prefix
	}
	if c.Documents.Backend == "" {
		c.Documents.Backend = defaults.Documents.Backend
	}
	if c.Documents.Path == "" {
		c.Documents.Path = defaults.Documents.Path
	}
	if c.Documents.Collection == "" {
		c.Documents.Collection = defaults.Documents.Collection
	}
	if c.LogFile == "" {
		c.LogFile = defaults.LogFile
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// ApplyEnv overrides config values from IMGPICK_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Source.Dir, "IMGPICK_SOURCE_DIR")
	set(&c.Source.RemoteURL, "IMGPICK_SOURCE_URL")
	if v := getenv("IMGPICK_SOURCE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Source.Limit = n
		}
	}
	set(&c.ObjectStore.Backend, "IMGPICK_STORE_BACKEND")
	set(&c.ObjectStore.LocalDir, "IMGPICK_STORE_DIR")
	set(&c.ObjectStore.BaseURL, "IMGPICK_STORE_BASE_URL")
	set(&c.ObjectStore.Bucket, "IMGPICK_BUCKET")
	set(&c.ObjectStore.Region, "IMGPICK_REGION")
	set(&c.ObjectStore.Endpoint, "IMGPICK_ENDPOINT")
	set(&c.ObjectStore.AccessKeyID, "IMGPICK_ACCESS_KEY_ID")
	set(&c.ObjectStore.SecretAccessKey, "IMGPICK_SECRET_ACCESS_KEY")
	set(&c.Documents.Backend, "IMGPICK_DOCS_BACKEND")
	set(&c.Documents.Path, "IMGPICK_DOCS_PATH")
	set(&c.Documents.ProjectID, "IMGPICK_PROJECT_ID")
	set(&c.LogFile, "IMGPICK_LOG_FILE")
	set(&c.LogLevel, "IMGPICK_LOG_LEVEL")
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/imgpick/config.json
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "imgpick", "config.json"), nil
}
