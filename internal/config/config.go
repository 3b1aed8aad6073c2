// Package config loads and saves the taskdesk YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// EnvPrefix prefixes environment overrides, e.g. TASKDESK_WEB_PORT.
const EnvPrefix = "TASKDESK"

type Config struct {
	Backend       string `yaml:"backend" mapstructure:"backend"`
	TasksPath     string `yaml:"tasks_path" mapstructure:"tasks_path"`
	UsersPath     string `yaml:"users_path" mapstructure:"users_path"`
	DBPath        string `yaml:"db_path" mapstructure:"db_path"`
	ReportsDir    string `yaml:"reports_dir" mapstructure:"reports_dir"`
	WebEnabled    bool   `yaml:"web_enabled" mapstructure:"web_enabled"`
	WebPort       int    `yaml:"web_port" mapstructure:"web_port"`
	// AdminPassword seeds an empty user store. It is read from the file or
	// TASKDESK_ADMIN_PASSWORD but never written back or printed.
	AdminPassword string `yaml:"-" mapstructure:"admin_password"`
}

func Default() Config {
	return Config{
		Backend:       BackendFile,
		WebPort:       8080,
		AdminPassword: "admin",
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "taskdesk", "config.yaml"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads path over the defaults. A missing file yields the defaults.
// TASKDESK_* environment variables override both.
func Load(path string) (Config, error) {
	defaults := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("backend", defaults.Backend)
	v.SetDefault("tasks_path", defaults.TasksPath)
	v.SetDefault("users_path", defaults.UsersPath)
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("reports_dir", defaults.ReportsDir)
	v.SetDefault("web_enabled", defaults.WebEnabled)
	v.SetDefault("web_port", defaults.WebPort)
	v.SetDefault("admin_password", defaults.AdminPassword)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown backend %q (want %q or %q)", c.Backend, BackendFile, BackendSQLite)
	}
	if c.WebPort < 0 || c.WebPort > 65535 {
		return fmt.Errorf("config: web_port %d out of range", c.WebPort)
	}
	return nil
}

// ResolvePaths fills empty storage paths with files inside baseDir.
func (c *Config) ResolvePaths(baseDir string) {
	if c.TasksPath == "" {
		c.TasksPath = filepath.Join(baseDir, "tasks.txt")
	}
	if c.UsersPath == "" {
		c.UsersPath = filepath.Join(baseDir, "user.txt")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(baseDir, "taskdesk.db")
	}
	if c.ReportsDir == "" {
		c.ReportsDir = filepath.Join(baseDir, "reports")
	}
	if c.WebPort == 0 {
		c.WebPort = 8080
	}
}

func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("config: path is required")
	}
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
