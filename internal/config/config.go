package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// IndexConfig controls where the index artifact lives and how it is queried.
type IndexConfig struct {
	DataDir string `yaml:"data_dir"`
	TopK    int    `yaml:"top_k"`
	Workers int    `yaml:"workers"`
}

// RiskConfig tunes the risk engine's corpus facts and multiplier.
type RiskConfig struct {
	CriticalTypes []string `yaml:"critical_types"`
	NoticeMarkers []string `yaml:"notice_markers,omitempty"`
}

// IngestConfig selects which corpus files are read.
type IngestConfig struct {
	Extensions []string `yaml:"extensions"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig enables the prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// WatchConfig controls hot reload of the index artifact.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Index   IndexConfig   `yaml:"index"`
	Risk    RiskConfig    `yaml:"risk"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
}

// IndexPath is the SQLite index artifact inside the data directory.
func (c *AppConfig) IndexPath() string {
	return filepath.Join(c.Index.DataDir, "index.db")
}

// MetadataPath is the JSON metadata export inside the data directory.
func (c *AppConfig) MetadataPath() string {
	return filepath.Join(c.Index.DataDir, "metadata.json")
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./ghosttrace.yaml first, then ~/.config/ghosttrace/config.yaml.
// If neither exists, it writes defaults to ~/.config/ghosttrace/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "ghosttrace.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ghosttrace", "config.yaml"), nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ghosttrace"
	}
	return filepath.Join(home, ".ghosttrace", "data")
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Index:  IndexConfig{DataDir: defaultDataDir(), TopK: 5},
		Risk:   RiskConfig{CriticalTypes: []string{"payment_api", "auth_api", "webhook", "sdk"}},
		Ingest: IngestConfig{Extensions: []string{".txt", ".md"}},
		Log:    LogConfig{Level: "info", Format: "text"},
		Watch:  WatchConfig{DebounceMS: 250},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Index.DataDir == "" {
		cfg.Index.DataDir = def.Index.DataDir
	}
	if cfg.Index.TopK <= 0 {
		cfg.Index.TopK = def.Index.TopK
	}
	if len(cfg.Risk.CriticalTypes) == 0 {
		cfg.Risk.CriticalTypes = def.Risk.CriticalTypes
	}
	if len(cfg.Ingest.Extensions) == 0 {
		cfg.Ingest.Extensions = def.Ingest.Extensions
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Watch.DebounceMS <= 0 {
		cfg.Watch.DebounceMS = def.Watch.DebounceMS
	}
}

// applyEnv lets GHOSTTRACE_DATA_DIR and GHOSTTRACE_LOG_LEVEL (typically from
// a .env file) override the file values.
func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("GHOSTTRACE_DATA_DIR"); v != "" {
		cfg.Index.DataDir = v
	}
	if v := os.Getenv("GHOSTTRACE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
