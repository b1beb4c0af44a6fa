package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"postarchive/pkg/pathing"
)

// EnvPrefix prefixes every environment variable the loader reads
const EnvPrefix = "POSTARCHIVE_"

// Config holds all configuration options for an archive run
type Config struct {
	// Folder scheme and output location
	Output OutputConfig `yaml:"output" json:"output"`

	// Image download behavior
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// OutputConfig selects where and how posts are laid out
type OutputConfig struct {
	BaseDirectory    string `yaml:"base_directory" json:"base_directory"`
	YearMonthFolders bool   `yaml:"year_month_folders" json:"year_month_folders"`
	YearFolders      bool   `yaml:"year_folders" json:"year_folders"`
	PostFolders      bool   `yaml:"post_folders" json:"post_folders"`
	PrefixDate       bool   `yaml:"prefix_date" json:"prefix_date"`
	Extension        string `yaml:"extension" json:"extension"`
	ReportFile       string `yaml:"report_file" json:"report_file"`
}

// DownloadConfig holds image download configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	ConcurrentWrites    int           `yaml:"concurrent_writes" json:"concurrent_writes"`
	StaggerIncrement    time.Duration `yaml:"stagger_increment" json:"stagger_increment"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	RequestsPerMinute   int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	UserAgent           string        `yaml:"user_agent" json:"user_agent"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			BaseDirectory: "./output",
			Extension:     ".md",
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 4,
			ConcurrentWrites:    8,
			StaggerIncrement:    25 * time.Millisecond,
			DownloadTimeout:     60 * time.Second,
			RequestsPerMinute:   0, // 0 means no limit beyond the stagger
			UserAgent:           "postarchive/1.0",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// PathOptions converts the output section into path resolver options
func (c *Config) PathOptions() pathing.Options {
	return pathing.Options{
		BaseDirectory:    c.Output.BaseDirectory,
		YearMonthFolders: c.Output.YearMonthFolders,
		YearFolders:      c.Output.YearFolders,
		PostFolders:      c.Output.PostFolders,
		PrefixDate:       c.Output.PrefixDate,
		Extension:        c.Output.Extension,
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if dir := os.Getenv(EnvPrefix + "OUTPUT_DIR"); dir != "" {
		c.Output.BaseDirectory = dir
	}
	if report := os.Getenv(EnvPrefix + "REPORT_FILE"); report != "" {
		c.Output.ReportFile = report
	}

	bools := map[string]*bool{
		"YEAR_MONTH_FOLDERS": &c.Output.YearMonthFolders,
		"YEAR_FOLDERS":       &c.Output.YearFolders,
		"POST_FOLDERS":       &c.Output.PostFolders,
		"PREFIX_DATE":        &c.Output.PrefixDate,
	}
	for name, dst := range bools {
		raw := os.Getenv(EnvPrefix + name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			continue
		}
		*dst = v
	}

	if raw := os.Getenv(EnvPrefix + "CONCURRENT_DOWNLOADS"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCONCURRENT_DOWNLOADS: %w", EnvPrefix, err))
		} else if v > 0 {
			c.Download.ConcurrentDownloads = v
		}
	}
	if raw := os.Getenv(EnvPrefix + "STAGGER"); raw != "" {
		v, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSTAGGER: %w", EnvPrefix, err))
		} else {
			c.Download.StaggerIncrement = v
		}
	}
	if raw := os.Getenv(EnvPrefix + "REQUESTS_PER_MINUTE"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sREQUESTS_PER_MINUTE: %w", EnvPrefix, err))
		} else {
			c.Download.RequestsPerMinute = v
		}
	}
	if ua := os.Getenv(EnvPrefix + "USER_AGENT"); ua != "" {
		c.Download.UserAgent = ua
	}

	if level := os.Getenv(EnvPrefix + "LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv(EnvPrefix + "LOG_FILE"); file != "" {
		c.Logging.File = file
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for a config file in standard locations
func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".postarchive.yaml",
		".postarchive.yml",
		filepath.Join(home, ".config", "postarchive", "config.yaml"),
		filepath.Join(home, ".config", "postarchive", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if strings.ContainsAny(strings.TrimPrefix(c.Output.Extension, "."), `/\`) {
		errs = append(errs, errors.New("extension must not contain path separators"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentWrites <= 0 {
		errs = append(errs, errors.New("concurrent writes must be positive"))
	}
	if c.Download.StaggerIncrement < 0 {
		errs = append(errs, errors.New("stagger increment cannot be negative"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in flags are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.BaseDirectory = v
	}
	if v, ok := flags["report"].(string); ok && v != "" {
		c.Output.ReportFile = v
	}
	if v, ok := flags["year-month-folders"].(bool); ok {
		c.Output.YearMonthFolders = v
	}
	if v, ok := flags["year-folders"].(bool); ok {
		c.Output.YearFolders = v
	}
	if v, ok := flags["post-folders"].(bool); ok {
		c.Output.PostFolders = v
	}
	if v, ok := flags["prefix-date"].(bool); ok {
		c.Output.PrefixDate = v
	}
	if v, ok := flags["concurrent"].(int); ok && v > 0 {
		c.Download.ConcurrentDownloads = v
	}
	if v, ok := flags["stagger"].(time.Duration); ok {
		c.Download.StaggerIncrement = v
	}
	if v, ok := flags["rate-limit"].(int); ok {
		c.Download.RequestsPerMinute = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".postarchive.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
