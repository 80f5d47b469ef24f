// Package config handles library and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Config represents library configuration stored in .libris/config.json.
type Config struct {
	Version             int      `json:"version,omitempty"`              // Config schema version
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"` // Graph link cutoff; nil means default
	OllamaHost          string   `json:"ollama_host,omitempty"`          // Serving endpoint override
	OllamaModel         string   `json:"ollama_model,omitempty"`         // Generation model override
	MemoryGB            float64  `json:"memory_gb,omitempty"`            // Device memory hint for tier detection
}

const (
	// ConfigVersion is the current config schema version.
	ConfigVersion = 1

	LibrisDir      = ".libris"
	ConfigFile     = "config.json"
	DataDir        = "data"
	CollectionFile = "documents.json"
	GraphFile      = "knowledge_graph_embeddings.json"
	FilesDir       = "documents"
	CacheDir       = "cache"
	DBFile         = "catalog.db"
)

// EnvLibrary names the environment variable that points at a library
// root, bypassing directory discovery.
const EnvLibrary = "LIBRIS_LIBRARY"

// EnvOllamaHost names the environment variable overriding the serving
// endpoint, matching the convention of the Ollama tooling itself.
const EnvOllamaHost = "OLLAMA_HOST"

// LibrisPath returns the path to the .libris directory from a root path.
func LibrisPath(root string) string {
	return filepath.Join(root, LibrisDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, LibrisDir, ConfigFile)
}

// DataPath returns the path to the data directory from a root path.
func DataPath(root string) string {
	return filepath.Join(root, DataDir)
}

// CollectionPath returns the path to data/documents.json from a root path.
func CollectionPath(root string) string {
	return filepath.Join(root, DataDir, CollectionFile)
}

// GraphPath returns the path to the knowledge graph file from a root path.
func GraphPath(root string) string {
	return filepath.Join(root, DataDir, GraphFile)
}

// FilesPath returns the path to the document files directory from a root path.
func FilesPath(root string) string {
	return filepath.Join(root, FilesDir)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, LibrisDir, CacheDir)
}

// DBPath returns the path to the catalog cache database from a root path.
func DBPath(root string) string {
	return filepath.Join(root, LibrisDir, CacheDir, DBFile)
}

// IsLibrary checks if the given path contains a libris library.
func IsLibrary(root string) bool {
	info, err := os.Stat(LibrisPath(root))
	return err == nil && info.IsDir()
}

// FindLibrary walks up from the given path to find a library root.
// Returns the root path or an error if not found.
func FindLibrary(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsLibrary(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a libris library (no .libris directory found)")
		}
		abs = parent
	}
}

// ResolveLibrary locates the library to operate on: the LIBRIS_LIBRARY
// environment variable wins, then directory discovery from start, then
// the global default_library.
func ResolveLibrary(start string) (string, error) {
	if env := os.Getenv(EnvLibrary); env != "" {
		root := ExpandPath(env)
		if !IsLibrary(root) {
			return "", fmt.Errorf("%s is not a libris library: %s", EnvLibrary, root)
		}
		return root, nil
	}

	if root, err := FindLibrary(start); err == nil {
		return root, nil
	}

	if root := GetDefaultLibrary(); root != "" {
		if !IsLibrary(root) {
			return "", fmt.Errorf("configured default_library is not a libris library: %s", root)
		}
		return root, nil
	}

	return "", fmt.Errorf("not in a libris library (no .libris directory found)")
}

// Init creates a library at the given root: the .libris marker with a
// default config, plus the data and documents directories.
func Init(root string) error {
	if IsLibrary(root) {
		return fmt.Errorf("already a libris library: %s", root)
	}

	for _, dir := range []string{
		LibrisPath(root),
		CachePath(root),
		filepath.Join(root, DataDir),
		FilesPath(root),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	cfg := &Config{Version: ConfigVersion}
	return cfg.Save(root)
}

// Load reads configuration from the library at the given root.
// A missing config file yields a default config, not an error.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Version: ConfigVersion}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes configuration to the library at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks the configured values.
func (c *Config) Validate() error {
	if c.SimilarityThreshold != nil {
		t := *c.SimilarityThreshold
		if t < 0 || t > 1 {
			return fmt.Errorf("similarity_threshold must be in [0,1], got %v", t)
		}
	}
	if c.OllamaHost != "" {
		if err := validateHost(c.OllamaHost); err != nil {
			return fmt.Errorf("ollama_host: %w", err)
		}
	}
	if c.MemoryGB < 0 {
		return fmt.Errorf("memory_gb must not be negative, got %v", c.MemoryGB)
	}
	return nil
}

// ThresholdOr returns the configured similarity threshold, or def when
// the library does not set one.
func (c *Config) ThresholdOr(def float64) float64 {
	if c.SimilarityThreshold != nil {
		return *c.SimilarityThreshold
	}
	return def
}

// OllamaHostOverride returns the effective serving endpoint override:
// the OLLAMA_HOST environment variable wins over the library config,
// then the global config. Empty means no override.
func (c *Config) OllamaHostOverride() string {
	if env := os.Getenv(EnvOllamaHost); env != "" {
		return NormalizeHost(env)
	}
	if c.OllamaHost != "" {
		return NormalizeHost(c.OllamaHost)
	}
	return NormalizeHost(GetGlobalOllamaHost())
}

// OllamaModelOverride returns the effective model override, library
// config first, then global. Empty means no override.
func (c *Config) OllamaModelOverride() string {
	if c.OllamaModel != "" {
		return c.OllamaModel
	}
	return GetGlobalOllamaModel()
}

// NormalizeHost adds an http scheme to a bare host:port value, the form
// OLLAMA_HOST is commonly set to.
func NormalizeHost(host string) string {
	if host == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		return "http://" + host
	}
	return host
}

// validateHost checks that a host value parses as an http(s) URL once
// normalized.
func validateHost(host string) error {
	normalized := NormalizeHost(host)
	u, err := url.Parse(normalized)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host: %s", host)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
