package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "VKARCHIVE_"

// Config holds all configuration options for vkarchive
type Config struct {
	VK        VKConfig        `yaml:"vk" json:"vk"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Download  DownloadConfig  `yaml:"download" json:"download"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// VKConfig holds API endpoint and session settings.
// AudioToken authorizes the archiving session used for audio lookups and
// falls back to AccessToken when empty.
type VKConfig struct {
	AccessToken string        `yaml:"access_token" json:"access_token"`
	AudioToken  string        `yaml:"audio_token" json:"audio_token"`
	APIVersion  string        `yaml:"api_version" json:"api_version" validate:"required"`
	BaseURL     string        `yaml:"base_url" json:"base_url" validate:"required,url"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent" validate:"required"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
}

// RateLimitConfig holds rate limiting configuration for API calls
type RateLimitConfig struct {
	RequestsPerSecond int    `yaml:"requests_per_second" json:"requests_per_second" validate:"min=1,max=20"`
	Strategy          string `yaml:"strategy" json:"strategy" validate:"oneof=token_bucket sliding_window"`
}

// OutputConfig holds the on-disk layout roots
type OutputConfig struct {
	CacheDirectory string `yaml:"cache_directory" json:"cache_directory" validate:"required"`
	ErrorLog       string `yaml:"error_log" json:"error_log" validate:"required"`
}

// DownloadConfig holds media archive settings
type DownloadConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
	SkipPhotos  bool          `yaml:"skip_photos" json:"skip_photos"`
	SkipAudios  bool          `yaml:"skip_audios" json:"skip_audios"`
	SkipVideos  bool          `yaml:"skip_videos" json:"skip_videos"`
	Wikis       bool          `yaml:"wikis" json:"wikis"`
	MaxFileSize int64         `yaml:"max_file_size" json:"max_file_size" validate:"min=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level" validate:"oneof=debug info warn error disabled"`
	File    string `yaml:"file" json:"file"`
	NoColor bool   `yaml:"no_color" json:"no_color"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		VK: VKConfig{
			APIVersion: "5.131",
			BaseURL:    "https://api.vk.com/method",
			UserAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			Timeout:    30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 3,
			Strategy:          "token_bucket",
		},
		Output: OutputConfig{
			CacheDirectory: "cache",
			ErrorLog:       "err.log",
		},
		Download: DownloadConfig{
			Timeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv overrides values from VKARCHIVE_* environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv(envPrefix + "ACCESS_TOKEN"); v != "" {
		c.VK.AccessToken = v
	}
	if v := os.Getenv(envPrefix + "AUDIO_TOKEN"); v != "" {
		c.VK.AudioToken = v
	}
	if v := os.Getenv(envPrefix + "API_VERSION"); v != "" {
		c.VK.APIVersion = v
	}
	if v := os.Getenv(envPrefix + "BASE_URL"); v != "" {
		c.VK.BaseURL = v
	}
	if v := os.Getenv(envPrefix + "USER_AGENT"); v != "" {
		c.VK.UserAgent = v
	}

	if v := os.Getenv(envPrefix + "REQUESTS_PER_SECOND"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREQUESTS_PER_SECOND: %w", envPrefix, err)
		}
		c.RateLimit.RequestsPerSecond = n
	}

	if v := os.Getenv(envPrefix + "CACHE_DIR"); v != "" {
		c.Output.CacheDirectory = v
	}
	if v := os.Getenv(envPrefix + "ERROR_LOG"); v != "" {
		c.Output.ErrorLog = v
	}

	if v := os.Getenv(envPrefix + "DOWNLOAD_WIKIS"); v != "" {
		c.Download.Wikis = strings.EqualFold(v, "true")
	}

	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
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
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".vkarchive.yaml",
		".vkarchive.yml",
		filepath.Join(home, ".config", "vkarchive", "config.yaml"),
		filepath.Join(home, ".config", "vkarchive", "config.yml"),
		filepath.Join(home, ".vkarchive.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var validate = validator.New()

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			for _, fe := range vErrs {
				errs = append(errs, fmt.Errorf("%s: failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	if strings.HasSuffix(c.Output.ErrorLog, string(os.PathSeparator)) {
		errs = append(errs, errors.New("error log must name a file, not a directory"))
	}

	return errors.Join(errs...)
}

// RequireToken reports whether an API session can be opened
func (c *Config) RequireToken() error {
	if c.VK.AccessToken == "" {
		return errors.New("VK access token is required")
	}
	return nil
}

// ArchiveToken returns the token for the media archiving session
func (c *Config) ArchiveToken() string {
	if c.VK.AudioToken != "" {
		return c.VK.AudioToken
	}
	return c.VK.AccessToken
}

// Save writes the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags applies explicitly set CLI flags
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["access-token"].(string); ok && v != "" {
		c.VK.AccessToken = v
	}
	if v, ok := flags["audio-token"].(string); ok && v != "" {
		c.VK.AudioToken = v
	}
	if v, ok := flags["cache-dir"].(string); ok && v != "" {
		c.Output.CacheDirectory = v
	}
	if v, ok := flags["error-log"].(string); ok && v != "" {
		c.Output.ErrorLog = v
	}
	if v, ok := flags["rate-limit"].(int); ok && v > 0 {
		c.RateLimit.RequestsPerSecond = v
	}
	if v, ok := flags["wikis"].(bool); ok {
		c.Download.Wikis = v
	}
	if v, ok := flags["skip-photos"].(bool); ok {
		c.Download.SkipPhotos = v
	}
	if v, ok := flags["skip-audios"].(bool); ok {
		c.Download.SkipAudios = v
	}
	if v, ok := flags["skip-videos"].(bool); ok {
		c.Download.SkipVideos = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["no-color"].(bool); ok {
		c.Logging.NoColor = v
	}
}

// Load loads configuration from all sources with proper precedence.
// Command line flags > environment variables > .env file > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".vkarchive.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
