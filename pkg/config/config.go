/*
Package config manages the TOML config of wordpack.

Values are layered: a file given on the command line wins over the file in
the user config directory, which wins over the built-in defaults. A file
that fails to decode as a whole is read again section by section, so one bad
value only costs that value.

	[server]
	max_limit = 32
	min_prefix = 1
	max_prefix = 60
	enable_filter = true
	fuse_timeout_ms = 50

	[dict]
	path = "data/words.dict"
	hot_cache_size = 2000
	min_frequency = 0

	[cli]
	default_limit = 10
	default_min_len = 1
	default_max_len = 24
	default_no_filter = false
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/wordpack/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/mapstructure"
)

const (
	appDirName     = "wordpack"
	configFileName = "config.toml"
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Dict   DictConfig   `toml:"dict"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit      int  `toml:"max_limit" msgpack:"max_limit"`
	MinPrefix     int  `toml:"min_prefix" msgpack:"min_prefix"`
	MaxPrefix     int  `toml:"max_prefix" msgpack:"max_prefix"`
	EnableFilter  bool `toml:"enable_filter" msgpack:"enable_filter"`
	FuseTimeoutMs int  `toml:"fuse_timeout_ms" msgpack:"fuse_timeout_ms"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Path         string `toml:"path"`
	HotCacheSize int    `toml:"hot_cache_size"`
	MinFrequency int    `toml:"min_frequency"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	DefaultMinLen   int  `toml:"default_min_len"`
	DefaultMaxLen   int  `toml:"default_max_len"`
	DefaultNoFilter bool `toml:"default_no_filter"`
}

// ServerUpdate carries the server options a client may change at runtime.
// Nil fields are left alone.
type ServerUpdate struct {
	MaxLimit      *int  `msgpack:"max_limit,omitempty"`
	MinPrefix     *int  `msgpack:"min_prefix,omitempty"`
	MaxPrefix     *int  `msgpack:"max_prefix,omitempty"`
	EnableFilter  *bool `msgpack:"enable_filter,omitempty"`
	FuseTimeoutMs *int  `msgpack:"fuse_timeout_ms,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:      32,
			MinPrefix:     1,
			MaxPrefix:     60,
			EnableFilter:  true,
			FuseTimeoutMs: 50,
		},
		Dict: DictConfig{
			Path:         filepath.Join("data", "words.dict"),
			HotCacheSize: 2000,
			MinFrequency: 0,
		},
		CLI: CliConfig{
			DefaultLimit:    10,
			DefaultMinLen:   1,
			DefaultMaxLen:   24,
			DefaultNoFilter: false,
		},
	}
}

// FuseTimeout returns the typo search bound as a duration.
func (c *Config) FuseTimeout() time.Duration {
	return time.Duration(c.Server.FuseTimeoutMs) * time.Millisecond
}

// Validate reports values that cannot work together.
func (c *Config) Validate() error {
	s := c.Server
	switch {
	case s.MaxLimit < 1:
		return fmt.Errorf("server.max_limit must be positive, got %d", s.MaxLimit)
	case s.MinPrefix < 1:
		return fmt.Errorf("server.min_prefix must be positive, got %d", s.MinPrefix)
	case s.MaxPrefix < s.MinPrefix:
		return fmt.Errorf("server.max_prefix (%d) is below server.min_prefix (%d)", s.MaxPrefix, s.MinPrefix)
	case s.FuseTimeoutMs < 0:
		return fmt.Errorf("server.fuse_timeout_ms must not be negative, got %d", s.FuseTimeoutMs)
	case c.Dict.HotCacheSize < 0:
		return fmt.Errorf("dict.hot_cache_size must not be negative, got %d", c.Dict.HotCacheSize)
	}
	return nil
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/wordpack
// 2. ~/Library/Application Support/wordpack (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", appDirName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", appDirName)
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from the -config flag
// 2. Default path in the user config dir, created when missing
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Values the file leaves out keep their
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	if err := config.Validate(); err != nil {
		log.Warnf("Invalid config in %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// tryPartialParse reads a file that failed to decode into the struct and
// keeps every value of the expected type. Fields that do not fit keep their
// defaults.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	sections := map[string]any{
		"server": &config.Server,
		"dict":   &config.Dict,
		"cli":    &config.CLI,
	}
	for name, target := range sections {
		section, ok := utils.ExtractSection(tempConfig, name)
		if !ok {
			continue
		}
		if err := decodeSection(section, target); err != nil {
			log.Warnf("Skipped invalid values in [%s] of %s: %v", name, configPath, err)
		}
	}

	if err := config.Validate(); err != nil {
		log.Warnf("Invalid config in %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// decodeSection copies the values of a generic TOML table into target by
// toml tag. Values of the wrong type are reported and left out while the
// others are still copied.
func decodeSection(section map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "toml",
		Result:  target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(section)
}

// RebuildConfigFile force creates a new config.toml at the default path
func RebuildConfigFile() (string, error) {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return "", err
	}
	return defaultPath, SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "built-in defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update applies u, validates the result and saves it to configPath when
// that is set. On a validation error nothing changes.
func (c *Config) Update(configPath string, u ServerUpdate) error {
	server := c.Server
	if u.MaxLimit != nil {
		server.MaxLimit = *u.MaxLimit
	}
	if u.MinPrefix != nil {
		server.MinPrefix = *u.MinPrefix
	}
	if u.MaxPrefix != nil {
		server.MaxPrefix = *u.MaxPrefix
	}
	if u.EnableFilter != nil {
		server.EnableFilter = *u.EnableFilter
	}
	if u.FuseTimeoutMs != nil {
		server.FuseTimeoutMs = *u.FuseTimeoutMs
	}

	next := *c
	next.Server = server
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next

	if configPath == "" {
		return nil
	}
	return SaveConfig(c, configPath)
}
