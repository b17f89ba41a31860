package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/thenoetrevino/tasks/internal/models"
)

// Change feed transports
const (
	FeedDaemon = "daemon"
	FeedRedis  = "redis"
	FeedNone   = "none"
)

// Config represents the application configuration
type Config struct {
	DataDir     string       `yaml:"data_dir" env:"TASKS_DATA_DIR" env-description:"directory holding the database, socket and logs"`
	MaxResults  int          `yaml:"max_results" env:"TASKS_MAX_RESULTS" env-default:"1000"`
	Sync        SyncConfig   `yaml:"sync"`
	Server      ServerConfig `yaml:"server"`
	Log         LogConfig    `yaml:"log"`
	KeyMappings KeyMappings  `yaml:"key_mappings"`
	ColorScheme ColorScheme  `yaml:"theme"`
}

// SyncConfig selects and tunes the change feed shared between processes
type SyncConfig struct {
	Feed         string   `yaml:"feed" env:"TASKS_SYNC_FEED" env-default:"daemon" env-description:"daemon, redis or none"`
	SocketPath   string   `yaml:"socket_path" env:"TASKS_SOCKET_PATH"`
	RedisURL     string   `yaml:"redis_url" env:"TASKS_REDIS_URL" env-default:"redis://localhost:6379/0"`
	RedisChannel string   `yaml:"redis_channel" env:"TASKS_REDIS_CHANNEL" env-default:"tasks:events"`
	Debounce     Duration `yaml:"debounce" env:"TASKS_SYNC_DEBOUNCE" env-default:"100ms"`
	AutoStart    bool     `yaml:"auto_start" env:"TASKS_SYNC_AUTO_START"`
}

// ServerConfig configures the HTTP front-end
type ServerConfig struct {
	Addr string `yaml:"addr" env:"TASKS_SERVER_ADDR" env-default:"127.0.0.1:8420"`
}

// LogConfig configures the log file
type LogConfig struct {
	Level string `yaml:"level" env:"TASKS_LOG_LEVEL" env-default:"info"`
	File  string `yaml:"file" env:"TASKS_LOG_FILE"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{
		Sync: SyncConfig{AutoStart: true},
	}
	c.applyDefaults()
	return c
}

// loadThemeFile loads and merges theme from TASKS_THEME_FILE environment variable
func loadThemeFile(config *Config) {
	themeFile := os.Getenv("TASKS_THEME_FILE")
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}

	var themeConfig struct {
		Theme ColorScheme `yaml:"theme"`
	}

	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		config.ColorScheme.MergeFrom(themeConfig.Theme)
	}
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults. TASKS_* environment variables
// override values from the file.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = getConfigPath()
		if err != nil {
			path = ""
		}
	}

	// Pre-filled so keys absent from the file keep their defaults
	config := &Config{
		Sync: SyncConfig{AutoStart: true},
	}

	_, statErr := os.Stat(path)
	switch {
	case path != "" && statErr == nil:
		if err := cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("read config %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	}

	loadThemeFile(config)

	// Fill in any missing values with defaults
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports configuration values that cannot work
func (c *Config) Validate() error {
	switch c.Sync.Feed {
	case FeedDaemon, FeedRedis, FeedNone:
	default:
		return fmt.Errorf("invalid sync feed %q: want %s, %s or %s", c.Sync.Feed, FeedDaemon, FeedRedis, FeedNone)
	}
	if c.MaxResults < 0 {
		return errors.New("max_results must not be negative")
	}
	return nil
}

// Save writes the config to path, or the default location when path is empty
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = getConfigPath()
		if err != nil {
			return err
		}
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// SetDataDir moves the data directory. Paths that defaulted to locations
// inside the old directory follow it.
func (c *Config) SetDataDir(dir string) {
	if c.Sync.SocketPath == filepath.Join(c.DataDir, "tasks.sock") {
		c.Sync.SocketPath = ""
	}
	if c.Log.File == filepath.Join(c.DataDir, "logs", "tasks.log") {
		c.Log.File = ""
	}
	c.DataDir = dir
	c.applyDefaults()
}

// DatabasePath is the SQLite file inside the data directory
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "tasks.db")
}

// Usage describes the environment variables understood by Load
func Usage() string {
	var c Config
	text, err := cleanenv.GetDescription(&c, nil)
	if err != nil {
		return ""
	}
	return text
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "tasks", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "tasks", "config.yaml"), nil
}

// defaultDataDir is ~/.tasks, or a relative .tasks when there is no home
func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tasks"
	}
	return filepath.Join(homeDir, ".tasks")
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	} else if strings.HasPrefix(c.DataDir, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(homeDir, c.DataDir[2:])
		}
	}
	if c.MaxResults == 0 {
		c.MaxResults = models.DefaultMaxResults
	}
	if c.Sync.Feed == "" {
		c.Sync.Feed = FeedDaemon
	}
	if c.Sync.SocketPath == "" {
		c.Sync.SocketPath = filepath.Join(c.DataDir, "tasks.sock")
	}
	if c.Sync.RedisChannel == "" {
		c.Sync.RedisChannel = "tasks:events"
	}
	if c.Sync.RedisURL == "" {
		c.Sync.RedisURL = "redis://localhost:6379/0"
	}
	if c.Sync.Debounce <= 0 {
		c.Sync.Debounce = Duration(100 * time.Millisecond)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8420"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, "logs", "tasks.log")
	}
	c.KeyMappings.applyDefaults()
	c.ColorScheme.ApplyDefaults()
}
