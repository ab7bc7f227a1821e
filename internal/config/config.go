package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultExtensions is the image extension allowlist.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}

// DefaultStrategies is the tag resolution fallback order.
var DefaultStrategies = []string{"xattr", "mdls", "xattr-list"}

const (
	// TagAttribute is the extended attribute holding Finder tags.
	TagAttribute = "com.apple.metadata:_kMDItemUserTags"
	// TagQueryAttribute is the metadata service name for the same tags.
	TagQueryAttribute = "kMDItemUserTags"
	// DefaultTopLimit is the size of the top tags view.
	DefaultTopLimit = 10
)

// Config represents the application configuration structure.
type Config struct {
	Worker struct {
		Interpreter string        `yaml:"interpreter"`  // Program used to run the script, empty runs it directly
		Script      string        `yaml:"script"`       // Classification worker script
		Args        []string      `yaml:"args"`         // Script arguments, {dir} and {detail} are substituted
		DetailLevel string        `yaml:"detail_level"` // low or high
		Timeout     time.Duration `yaml:"timeout"`      // 0 = no limit
	} `yaml:"worker"`
	Credential struct {
		EnvVar   string   `yaml:"env_var"`   // Variable holding the API key
		EnvFiles []string `yaml:"env_files"` // dotenv files consulted in order
	} `yaml:"credential"`
	Discovery struct {
		Extensions      []string `yaml:"extensions"`
		SkipContentType bool     `yaml:"skip_content_type"` // Don't sniff MIME types
	} `yaml:"discovery"`
	Resolution struct {
		Strategies       []string      `yaml:"strategies"`        // Fallback order
		Concurrency      int           `yaml:"concurrency"`       // 0 = 2x CPUs
		CommandTimeout   time.Duration `yaml:"command_timeout"`   // Per metadata command
		Attribute        string        `yaml:"attribute"`         // Extended attribute name
		QueryAttribute   string        `yaml:"query_attribute"`   // Metadata service attribute name
		EmbeddedKeywords bool          `yaml:"embedded_keywords"` // Also read XMP/IPTC keywords
	} `yaml:"resolution"`
	Index struct {
		TopLimit    int `yaml:"top_limit"`
		FilesPerTag int `yaml:"files_per_tag"`
	} `yaml:"index"`
	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Theme struct {
		Primary  string `yaml:"primary"`
		Success  string `yaml:"success"`
		Warning  string `yaml:"warning"`
		Error    string `yaml:"error"`
		Muted    string `yaml:"muted"`
		Emphasis string `yaml:"emphasis"`
	} `yaml:"theme"`
}

// DefaultPath returns ~/.config/autotag/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "autotag", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
// (~/.config/autotag/config.yaml).
func LoadConfig() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.merge(&tempCfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// merge copies every set field of other over c.
func (c *Config) merge(other *Config) {
	if other.Worker.Interpreter != "" {
		c.Worker.Interpreter = other.Worker.Interpreter
	}
	if other.Worker.Script != "" {
		c.Worker.Script = other.Worker.Script
	}
	if len(other.Worker.Args) > 0 {
		c.Worker.Args = other.Worker.Args
	}
	if other.Worker.DetailLevel != "" {
		c.Worker.DetailLevel = other.Worker.DetailLevel
	}
	if other.Worker.Timeout != 0 {
		c.Worker.Timeout = other.Worker.Timeout
	}

	if other.Credential.EnvVar != "" {
		c.Credential.EnvVar = other.Credential.EnvVar
	}
	if len(other.Credential.EnvFiles) > 0 {
		c.Credential.EnvFiles = other.Credential.EnvFiles
	}

	if len(other.Discovery.Extensions) > 0 {
		c.Discovery.Extensions = other.Discovery.Extensions
	}
	c.Discovery.SkipContentType = other.Discovery.SkipContentType

	if len(other.Resolution.Strategies) > 0 {
		c.Resolution.Strategies = other.Resolution.Strategies
	}
	if other.Resolution.Concurrency != 0 {
		c.Resolution.Concurrency = other.Resolution.Concurrency
	}
	if other.Resolution.CommandTimeout != 0 {
		c.Resolution.CommandTimeout = other.Resolution.CommandTimeout
	}
	if other.Resolution.Attribute != "" {
		c.Resolution.Attribute = other.Resolution.Attribute
	}
	if other.Resolution.QueryAttribute != "" {
		c.Resolution.QueryAttribute = other.Resolution.QueryAttribute
	}
	c.Resolution.EmbeddedKeywords = other.Resolution.EmbeddedKeywords

	if other.Index.TopLimit != 0 {
		c.Index.TopLimit = other.Index.TopLimit
	}
	if other.Index.FilesPerTag != 0 {
		c.Index.FilesPerTag = other.Index.FilesPerTag
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	c.Logging.JSON = other.Logging.JSON
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}

	if other.Theme.Primary != "" {
		c.Theme.Primary = other.Theme.Primary
	}
	if other.Theme.Success != "" {
		c.Theme.Success = other.Theme.Success
	}
	if other.Theme.Warning != "" {
		c.Theme.Warning = other.Theme.Warning
	}
	if other.Theme.Error != "" {
		c.Theme.Error = other.Theme.Error
	}
	if other.Theme.Muted != "" {
		c.Theme.Muted = other.Theme.Muted
	}
	if other.Theme.Emphasis != "" {
		c.Theme.Emphasis = other.Theme.Emphasis
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Worker.Interpreter = "python3"
	cfg.Worker.Script = "~/.local/share/autotag/imgtag.py"
	cfg.Worker.Args = []string{"{dir}"}
	cfg.Worker.DetailLevel = "low"

	cfg.Credential.EnvVar = "OPENAI_API_KEY"
	cfg.Credential.EnvFiles = []string{".env", "~/.config/autotag/.env"}

	cfg.Discovery.Extensions = append([]string{}, DefaultExtensions...)

	cfg.Resolution.Strategies = append([]string{}, DefaultStrategies...)
	cfg.Resolution.CommandTimeout = 10 * time.Second
	cfg.Resolution.Attribute = TagAttribute
	cfg.Resolution.QueryAttribute = TagQueryAttribute

	cfg.Index.TopLimit = DefaultTopLimit
	cfg.Index.FilesPerTag = 5

	cfg.Logging.Level = "info"

	cfg.Theme.Primary = "#7B61FF"
	cfg.Theme.Success = "#73F59F"
	cfg.Theme.Warning = "#F5C26B"
	cfg.Theme.Error = "#FF5F87"
	cfg.Theme.Muted = "#666666"
	cfg.Theme.Emphasis = "#5A9"

	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var knownStrategies = map[string]bool{"xattr": true, "mdls": true, "xattr-list": true, "embedded": true}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	if c.Worker.DetailLevel != "low" && c.Worker.DetailLevel != "high" {
		return fmt.Errorf("invalid detail level: %s", c.Worker.DetailLevel)
	}
	if c.Worker.Script == "" {
		return fmt.Errorf("worker script is required")
	}
	if c.Worker.Timeout < 0 {
		return fmt.Errorf("worker timeout must be >= 0")
	}
	if c.Credential.EnvVar == "" {
		return fmt.Errorf("credential env_var is required")
	}

	if len(c.Discovery.Extensions) == 0 {
		return fmt.Errorf("at least one image extension is required")
	}
	for i, ext := range c.Discovery.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension %d: %q must start with a dot", i, ext)
		}
	}

	if len(c.Resolution.Strategies) == 0 {
		return fmt.Errorf("at least one resolution strategy is required")
	}
	seen := make(map[string]bool)
	for _, s := range c.Resolution.Strategies {
		if !knownStrategies[s] {
			return fmt.Errorf("unknown resolution strategy: %s", s)
		}
		if seen[s] {
			return fmt.Errorf("duplicate resolution strategy: %s", s)
		}
		seen[s] = true
	}
	if c.Resolution.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0")
	}
	if c.Resolution.CommandTimeout < 0 {
		return fmt.Errorf("command timeout must be >= 0")
	}

	if c.Index.TopLimit < 1 {
		return fmt.Errorf("top tag limit must be >= 1")
	}
	if c.Index.FilesPerTag < 0 {
		return fmt.Errorf("files per tag must be >= 0")
	}
	return nil
}

// Concurrency returns the effective resolution pool size.
func (c *Config) Concurrency() int {
	if c.Resolution.Concurrency > 0 {
		return c.Resolution.Concurrency
	}
	return 2 * runtime.NumCPU()
}

// ActiveStrategies returns the strategy names in order, with the embedded
// keyword strategy appended when enabled.
func (c *Config) ActiveStrategies() []string {
	names := append([]string{}, c.Resolution.Strategies...)
	if c.Resolution.EmbeddedKeywords {
		for _, n := range names {
			if n == "embedded" {
				return names
			}
		}
		names = append(names, "embedded")
	}
	return names
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
