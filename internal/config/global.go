package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/libris/config.yml.
type GlobalConfig struct {
	DefaultLibrary string `yaml:"default_library,omitempty"` // Library used outside any library directory
	OllamaHost     string `yaml:"ollama_host,omitempty"`     // Serving endpoint for all libraries
	OllamaModel    string `yaml:"ollama_model,omitempty"`    // Generation model for all libraries
	ChatTheme      string `yaml:"chat_theme,omitempty"`      // Markdown rendering style for chat
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "libris"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/libris/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// The global config is advisory: a missing or unreadable file yields an
// empty config rather than an error.
func LoadGlobalConfig() *GlobalConfig {
	if globalConfigCache != nil {
		return globalConfigCache
	}

	cfg := &GlobalConfig{}
	path := GlobalConfigPath()
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &GlobalConfig{}
	}

	// Expand tilde in default_library
	if cfg.DefaultLibrary != "" {
		cfg.DefaultLibrary = ExpandPath(cfg.DefaultLibrary)
	}

	globalConfigCache = cfg
	return cfg
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetDefaultLibrary returns the configured default library root.
func GetDefaultLibrary() string {
	return LoadGlobalConfig().DefaultLibrary
}

// GetGlobalOllamaHost returns the serving endpoint from global config.
func GetGlobalOllamaHost() string {
	return LoadGlobalConfig().OllamaHost
}

// GetGlobalOllamaModel returns the generation model from global config.
func GetGlobalOllamaModel() string {
	return LoadGlobalConfig().OllamaModel
}

// GetChatTheme returns the chat rendering style from global config.
func GetChatTheme() string {
	return LoadGlobalConfig().ChatTheme
}

// HelpfulConfigMessage returns guidance shown when no library is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No libris library found.

Run 'libris init' inside the directory you want to use as a library,
or create %s to set a default:
  mkdir -p %s
  echo 'default_library: /path/to/your/library' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
