package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Model            string `mapstructure:"model"`
	APIBase          string `mapstructure:"api_base"`
	APIKeyEnv        string `mapstructure:"api_key_env"`
	CredentialSource string `mapstructure:"credential_source"`
	KeyFile          string `mapstructure:"key_file"`
	Interactive      bool   `mapstructure:"interactive"`
	SelectMode       string `mapstructure:"select_mode"`
	PromptTemplate   string `mapstructure:"prompt_template"`
	Timeout          int    `mapstructure:"timeout"`
	MaxDiffBytes     int    `mapstructure:"max_diff_bytes"`
}

const (
	DefaultModel            = "xai/grok-4-fast-non-reasoning"
	DefaultAPIBase          = "https://ai-gateway.vercel.sh/v1"
	DefaultAPIKeyEnv        = "AI_GATEWAY_API_KEY"
	DefaultCredentialSource = "file"
	DefaultSelectMode       = "exclude"
	DefaultPromptTemplate   = "default"
	DefaultTimeout          = 0
	DefaultConfigName       = "config"
	DefaultConfigDir        = "aicommit"
	EnvPrefix               = "AICOMMIT"
)

const (
	SelectModeExclude = "exclude"
	SelectModePick    = "pick"
)

var suggestedModels = []string{
	"xai/grok-4-fast-non-reasoning",
	"openai/gpt-4.1-mini",
	"anthropic/claude-haiku-4.5",
	"google/gemini-2.5-flash",
}

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindInt
)

// settableKeys lists the keys `config set` accepts and how to parse them.
var settableKeys = map[string]valueKind{
	"model":             kindString,
	"api_base":          kindString,
	"api_key_env":       kindString,
	"credential_source": kindString,
	"key_file":          kindString,
	"interactive":       kindBool,
	"select_mode":       kindString,
	"prompt_template":   kindString,
	"timeout":           kindInt,
	"max_diff_bytes":    kindInt,
}

func setDefaults() {
	viper.SetDefault("model", DefaultModel)
	viper.SetDefault("api_base", DefaultAPIBase)
	viper.SetDefault("api_key_env", DefaultAPIKeyEnv)
	viper.SetDefault("credential_source", DefaultCredentialSource)
	viper.SetDefault("key_file", "")
	viper.SetDefault("interactive", false)
	viper.SetDefault("select_mode", DefaultSelectMode)
	viper.SetDefault("prompt_template", DefaultPromptTemplate)
	viper.SetDefault("timeout", DefaultTimeout)
	viper.SetDefault("max_diff_bytes", 0)
}

// InitConfig wires viper to the config file, AICOMMIT_* environment
// variables and built-in defaults. A missing file is not an error.
func InitConfig(cfgFile string) error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	configPath := cfgFile
	if configPath == "" {
		var err error
		configPath, err = DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}
	return nil
}

// DefaultConfigPath resolves $XDG_CONFIG_HOME/aicommit/config.yaml, falling
// back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultConfigPath() (string, error) {
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env, nil
	}

	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to find home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, DefaultConfigDir, DefaultConfigName+".yaml"), nil
}

// GetConfig unmarshals and validates the current configuration.
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.CredentialSource {
	case "env", "file":
	default:
		return fmt.Errorf("invalid credential_source %q: must be env or file", c.CredentialSource)
	}
	switch c.SelectMode {
	case SelectModeExclude, SelectModePick:
	default:
		return fmt.Errorf("invalid select_mode %q: must be %s or %s", c.SelectMode, SelectModeExclude, SelectModePick)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %d: must not be negative", c.Timeout)
	}
	if c.MaxDiffBytes < 0 {
		return fmt.Errorf("invalid max_diff_bytes %d: must not be negative", c.MaxDiffBytes)
	}
	return nil
}

// SetConfigValue stores a value in the in-memory configuration.
func SetConfigValue(key string, value any) {
	viper.Set(key, value)
}

// SetFromString parses raw according to the key's type and stores it.
func SetFromString(key, raw string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key %q (valid keys: %s)", key, strings.Join(SettableKeys(), ", "))
	}

	switch kind {
	case kindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		SetConfigValue(key, v)
	case kindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		SetConfigValue(key, v)
	default:
		SetConfigValue(key, raw)
	}

	_, err := GetConfig()
	return err
}

// SettableKeys returns the sorted keys accepted by SetFromString.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SaveConfig writes the current configuration to the config file with
// owner-only permissions.
func SaveConfig() error {
	path := viper.ConfigFileUsed()
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return os.Chmod(path, 0o600)
}

func IsValidModel(model string) bool {
	return strings.TrimSpace(model) != ""
}

func GetSuggestedModels() []string {
	return suggestedModels
}
