// Package config loads and validates subseek configuration.
//
// Configuration is resolved in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/subseek/config.yaml)
//  3. Project config (.subseek.yaml in the working directory)
//  4. Environment variables (SUBSEEK_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names for the search index implementations.
const (
	// BackendEmbedded runs entirely in-process: bleve for captions,
	// SQLite for video metadata.
	BackendEmbedded = "embedded"
	// BackendElasticsearch talks to an external Elasticsearch cluster.
	BackendElasticsearch = "elasticsearch"
)

// Config represents the complete subseek configuration.
type Config struct {
	Version       int                 `yaml:"version" json:"version"`
	Backend       string              `yaml:"backend" json:"backend"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch" json:"elasticsearch"`
	Embedded      EmbeddedConfig      `yaml:"embedded" json:"embedded"`
	Search        SearchConfig        `yaml:"search" json:"search"`
	Cache         CacheConfig         `yaml:"cache" json:"cache"`
	Server        ServerConfig        `yaml:"server" json:"server"`
}

// ElasticsearchConfig configures the Elasticsearch backend.
type ElasticsearchConfig struct {
	// Addresses lists cluster node URLs.
	Addresses []string `yaml:"addresses" json:"addresses"`
	// Username and Password enable basic auth when set.
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	// CaptionsIndex is the index holding caption documents.
	CaptionsIndex string `yaml:"captions_index" json:"captions_index"`
	// VideosIndex is the index holding video metadata documents.
	VideosIndex string `yaml:"videos_index" json:"videos_index"`
	// Retries is the number of transient round-trip retries.
	Retries int `yaml:"retries" json:"retries"`
	// BreakerFailures is the consecutive failure count that opens the
	// circuit breaker.
	BreakerFailures int `yaml:"breaker_failures" json:"breaker_failures"`
	// BreakerReset is how long the breaker stays open before probing.
	BreakerReset string `yaml:"breaker_reset" json:"breaker_reset"`
}

// EmbeddedConfig configures the embedded backend.
type EmbeddedConfig struct {
	// IndexPath is the bleve index directory. Empty means in-memory.
	IndexPath string `yaml:"index_path" json:"index_path"`
	// SQLitePath is the video metadata database file. Empty means in-memory.
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
}

// SearchConfig configures query planning, pagination, and snippet assembly.
type SearchConfig struct {
	// PageSize is the number of videos per page.
	PageSize int `yaml:"page_size" json:"page_size"`
	// MaxPageSize caps client-requested page sizes.
	MaxPageSize int `yaml:"max_page_size" json:"max_page_size"`
	// SnippetBudget is the maximum snippet length in runes.
	SnippetBudget int `yaml:"snippet_budget" json:"snippet_budget"`
	// PreTag and PostTag wrap highlighted terms in snippets.
	PreTag  string `yaml:"pre_tag" json:"pre_tag"`
	PostTag string `yaml:"post_tag" json:"post_tag"`
	// NeighborsBefore and NeighborsAfter are the number of adjacent
	// captions stitched around each hit.
	NeighborsBefore int `yaml:"neighbors_before" json:"neighbors_before"`
	NeighborsAfter  int `yaml:"neighbors_after" json:"neighbors_after"`
	// Slop is the phrase slop used by the wide planner clause.
	Slop int `yaml:"slop" json:"slop"`
	// Fuzziness is "AUTO" or an edit distance ("0", "1", "2").
	Fuzziness string `yaml:"fuzziness" json:"fuzziness"`
	// MinShouldMatch for the natural mode OR clause (e.g. "75%").
	MinShouldMatch string `yaml:"min_should_match" json:"min_should_match"`
	// Concurrency bounds parallel per-video and per-result work.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// MaxVideos caps the number of video groups an aggregation returns.
	MaxVideos int `yaml:"max_videos" json:"max_videos"`
	// FragmentSize is the highlighter fragment length in characters.
	FragmentSize int `yaml:"fragment_size" json:"fragment_size"`
	// NoMatchSize is the fallback fragment length when a field has no hit.
	NoMatchSize int `yaml:"no_match_size" json:"no_match_size"`
}

// CacheConfig configures the video metadata cache.
type CacheConfig struct {
	// Enabled turns the LRU metadata cache on.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Size is the maximum number of cached video records.
	Size int `yaml:"size" json:"size"`
	// TTL is how long a cached record stays fresh (e.g. "60s").
	TTL string `yaml:"ttl" json:"ttl"`
}

// ServerConfig configures the HTTP API server and logging.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `yaml:"addr" json:"addr"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" json:"log_level"`
	// ReadTimeout, WriteTimeout, and ShutdownTimeout are durations
	// (e.g. "10s").
	ReadTimeout     string `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Backend: BackendEmbedded,
		Elasticsearch: ElasticsearchConfig{
			Addresses:       []string{"http://localhost:9200"},
			CaptionsIndex:   "captions",
			VideosIndex:     "videos",
			Retries:         2,
			BreakerFailures: 5,
			BreakerReset:    "30s",
		},
		Embedded: EmbeddedConfig{
			IndexPath:  defaultIndexPath(),
			SQLitePath: defaultSQLitePath(),
		},
		Search: SearchConfig{
			PageSize:        10,
			MaxPageSize:     100,
			SnippetBudget:   800,
			PreTag:          "<strong>",
			PostTag:         "</strong>",
			NeighborsBefore: 2,
			NeighborsAfter:  2,
			Slop:            2,
			Fuzziness:       "AUTO",
			MinShouldMatch:  "75%",
			Concurrency:     defaultConcurrency(),
			MaxVideos:       10000,
			FragmentSize:    350,
			NoMatchSize:     150,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    512,
			TTL:     "60s",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			LogLevel:        "info",
			ReadTimeout:     "10s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},
	}
}

// defaultConcurrency bounds parallel fetches to the CPU count, capped at 8.
func defaultConcurrency() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}

// defaultDataDir returns the default data directory (~/.subseek).
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".subseek")
	}
	return filepath.Join(home, ".subseek")
}

// defaultIndexPath returns the default bleve index directory.
func defaultIndexPath() string {
	return filepath.Join(defaultDataDir(), "captions.bleve")
}

// defaultSQLitePath returns the default video metadata database path.
func defaultSQLitePath() string {
	return filepath.Join(defaultDataDir(), "videos.db")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/subseek/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/subseek/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "subseek", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "subseek", "config.yaml")
	}
	return filepath.Join(home, ".config", "subseek", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist (that's OK).
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()

	if !fileExists(configPath) {
		return nil, nil // No user config is fine
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}

	return cfg, nil
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// Load loads configuration from the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/subseek/config.yaml)
//  3. Project config (.subseek.yaml in the directory)
//  4. Environment variables (SUBSEEK_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	// Step 1: Load user/global config (if exists)
	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	// Step 2: Load project config (overrides user config)
	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	// Step 3: Apply environment variable overrides (highest precedence)
	cfg.applyEnvOverrides()

	// Step 4: Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .subseek.yaml or .subseek.yml.
func (c *Config) loadFromFile(dir string) error {
	// Try .yaml first (takes precedence)
	yamlPath := filepath.Join(dir, ".subseek.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	// Try .yml as fallback
	ymlPath := filepath.Join(dir, ".subseek.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine - use defaults
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Use a temporary struct for parsing to detect type errors
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Merge parsed values with defaults (only non-zero values)
	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Backend != "" {
		c.Backend = other.Backend
	}

	// Elasticsearch
	if len(other.Elasticsearch.Addresses) > 0 {
		c.Elasticsearch.Addresses = other.Elasticsearch.Addresses
	}
	if other.Elasticsearch.Username != "" {
		c.Elasticsearch.Username = other.Elasticsearch.Username
	}
	if other.Elasticsearch.Password != "" {
		c.Elasticsearch.Password = other.Elasticsearch.Password
	}
	if other.Elasticsearch.CaptionsIndex != "" {
		c.Elasticsearch.CaptionsIndex = other.Elasticsearch.CaptionsIndex
	}
	if other.Elasticsearch.VideosIndex != "" {
		c.Elasticsearch.VideosIndex = other.Elasticsearch.VideosIndex
	}
	if other.Elasticsearch.Retries != 0 {
		c.Elasticsearch.Retries = other.Elasticsearch.Retries
	}
	if other.Elasticsearch.BreakerFailures != 0 {
		c.Elasticsearch.BreakerFailures = other.Elasticsearch.BreakerFailures
	}
	if other.Elasticsearch.BreakerReset != "" {
		c.Elasticsearch.BreakerReset = other.Elasticsearch.BreakerReset
	}

	// Embedded
	if other.Embedded.IndexPath != "" {
		c.Embedded.IndexPath = other.Embedded.IndexPath
	}
	if other.Embedded.SQLitePath != "" {
		c.Embedded.SQLitePath = other.Embedded.SQLitePath
	}

	// Search
	if other.Search.PageSize != 0 {
		c.Search.PageSize = other.Search.PageSize
	}
	if other.Search.MaxPageSize != 0 {
		c.Search.MaxPageSize = other.Search.MaxPageSize
	}
	if other.Search.SnippetBudget != 0 {
		c.Search.SnippetBudget = other.Search.SnippetBudget
	}
	if other.Search.PreTag != "" {
		c.Search.PreTag = other.Search.PreTag
	}
	if other.Search.PostTag != "" {
		c.Search.PostTag = other.Search.PostTag
	}
	// Zero is a meaningful neighbor count, but YAML zero values are
	// indistinguishable from "not set"; explicit zeros come via env vars.
	if other.Search.NeighborsBefore != 0 {
		c.Search.NeighborsBefore = other.Search.NeighborsBefore
	}
	if other.Search.NeighborsAfter != 0 {
		c.Search.NeighborsAfter = other.Search.NeighborsAfter
	}
	if other.Search.Slop != 0 {
		c.Search.Slop = other.Search.Slop
	}
	if other.Search.Fuzziness != "" {
		c.Search.Fuzziness = other.Search.Fuzziness
	}
	if other.Search.MinShouldMatch != "" {
		c.Search.MinShouldMatch = other.Search.MinShouldMatch
	}
	if other.Search.Concurrency != 0 {
		c.Search.Concurrency = other.Search.Concurrency
	}
	if other.Search.MaxVideos != 0 {
		c.Search.MaxVideos = other.Search.MaxVideos
	}
	if other.Search.FragmentSize != 0 {
		c.Search.FragmentSize = other.Search.FragmentSize
	}
	if other.Search.NoMatchSize != 0 {
		c.Search.NoMatchSize = other.Search.NoMatchSize
	}

	// Cache
	// Enabled is boolean - only merge when any cache setting was provided
	if other.Cache.Size != 0 || other.Cache.TTL != "" {
		c.Cache.Enabled = other.Cache.Enabled
	}
	if other.Cache.Size != 0 {
		c.Cache.Size = other.Cache.Size
	}
	if other.Cache.TTL != "" {
		c.Cache.TTL = other.Cache.TTL
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
	if other.Server.ReadTimeout != "" {
		c.Server.ReadTimeout = other.Server.ReadTimeout
	}
	if other.Server.WriteTimeout != "" {
		c.Server.WriteTimeout = other.Server.WriteTimeout
	}
	if other.Server.ShutdownTimeout != "" {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}
}

// applyEnvOverrides applies SUBSEEK_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SUBSEEK_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("SUBSEEK_ES_ADDRESSES"); v != "" {
		var addrs []string
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				addrs = append(addrs, a)
			}
		}
		if len(addrs) > 0 {
			c.Elasticsearch.Addresses = addrs
		}
	}
	if v := os.Getenv("SUBSEEK_ES_USERNAME"); v != "" {
		c.Elasticsearch.Username = v
	}
	if v := os.Getenv("SUBSEEK_ES_PASSWORD"); v != "" {
		c.Elasticsearch.Password = v
	}
	if v := os.Getenv("SUBSEEK_CAPTIONS_INDEX"); v != "" {
		c.Elasticsearch.CaptionsIndex = v
	}
	if v := os.Getenv("SUBSEEK_VIDEOS_INDEX"); v != "" {
		c.Elasticsearch.VideosIndex = v
	}
	if v := os.Getenv("SUBSEEK_INDEX_PATH"); v != "" {
		c.Embedded.IndexPath = v
	}
	if v := os.Getenv("SUBSEEK_SQLITE_PATH"); v != "" {
		c.Embedded.SQLitePath = v
	}
	if v := os.Getenv("SUBSEEK_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.PageSize = n
		}
	}
	if v := os.Getenv("SUBSEEK_SNIPPET_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.SnippetBudget = n
		}
	}
	if v := os.Getenv("SUBSEEK_PRE_TAG"); v != "" {
		c.Search.PreTag = v
	}
	if v := os.Getenv("SUBSEEK_POST_TAG"); v != "" {
		c.Search.PostTag = v
	}
	// Env vars support explicit zero neighbor counts, unlike YAML merging.
	if v := os.Getenv("SUBSEEK_NEIGHBORS_BEFORE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Search.NeighborsBefore = n
		}
	}
	if v := os.Getenv("SUBSEEK_NEIGHBORS_AFTER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Search.NeighborsAfter = n
		}
	}
	if v := os.Getenv("SUBSEEK_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.Concurrency = n
		}
	}
	if v := os.Getenv("SUBSEEK_CACHE_ENABLED"); v != "" {
		c.Cache.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("SUBSEEK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SUBSEEK_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	// Validate backend
	validBackends := map[string]bool{BackendEmbedded: true, BackendElasticsearch: true}
	if !validBackends[strings.ToLower(c.Backend)] {
		return fmt.Errorf("backend must be '%s' or '%s', got %s", BackendEmbedded, BackendElasticsearch, c.Backend)
	}

	if strings.ToLower(c.Backend) == BackendElasticsearch && len(c.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("elasticsearch.addresses must not be empty when backend is '%s'", BackendElasticsearch)
	}

	// Validate pagination
	if c.Search.PageSize < 1 {
		return fmt.Errorf("search.page_size must be at least 1, got %d", c.Search.PageSize)
	}
	if c.Search.MaxPageSize < c.Search.PageSize {
		return fmt.Errorf("search.max_page_size must be >= page_size, got %d < %d", c.Search.MaxPageSize, c.Search.PageSize)
	}

	// Validate snippet settings
	if c.Search.SnippetBudget < 1 {
		return fmt.Errorf("search.snippet_budget must be positive, got %d", c.Search.SnippetBudget)
	}
	if c.Search.PreTag == "" || c.Search.PostTag == "" {
		return fmt.Errorf("search.pre_tag and search.post_tag must not be empty")
	}
	if c.Search.NeighborsBefore < 0 || c.Search.NeighborsAfter < 0 {
		return fmt.Errorf("neighbor counts must be non-negative, got %d/%d", c.Search.NeighborsBefore, c.Search.NeighborsAfter)
	}
	if c.Search.FragmentSize < 1 {
		return fmt.Errorf("search.fragment_size must be positive, got %d", c.Search.FragmentSize)
	}
	if c.Search.NoMatchSize < 0 {
		return fmt.Errorf("search.no_match_size must be non-negative, got %d", c.Search.NoMatchSize)
	}

	// Validate planner settings
	if c.Search.Slop < 0 {
		return fmt.Errorf("search.slop must be non-negative, got %d", c.Search.Slop)
	}
	validFuzziness := map[string]bool{"": true, "auto": true, "0": true, "1": true, "2": true}
	if !validFuzziness[strings.ToLower(c.Search.Fuzziness)] {
		return fmt.Errorf("search.fuzziness must be 'AUTO', '0', '1', or '2', got %s", c.Search.Fuzziness)
	}

	if c.Search.Concurrency < 1 {
		return fmt.Errorf("search.concurrency must be at least 1, got %d", c.Search.Concurrency)
	}
	if c.Search.MaxVideos < 1 {
		return fmt.Errorf("search.max_videos must be at least 1, got %d", c.Search.MaxVideos)
	}

	// Validate cache settings
	if c.Cache.Enabled {
		if c.Cache.Size < 1 {
			return fmt.Errorf("cache.size must be at least 1 when enabled, got %d", c.Cache.Size)
		}
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("cache.ttl must be a duration (e.g. \"60s\"), got %s", c.Cache.TTL)
		}
	}

	// Validate durations
	if err := validDuration("server.read_timeout", c.Server.ReadTimeout); err != nil {
		return err
	}
	if err := validDuration("server.write_timeout", c.Server.WriteTimeout); err != nil {
		return err
	}
	if err := validDuration("server.shutdown_timeout", c.Server.ShutdownTimeout); err != nil {
		return err
	}
	if err := validDuration("elasticsearch.breaker_reset", c.Elasticsearch.BreakerReset); err != nil {
		return err
	}

	// Validate log level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CacheTTL returns the parsed cache TTL, defaulting to a minute.
func (c *Config) CacheTTL() time.Duration {
	return durationOr(c.Cache.TTL, time.Minute)
}

// BreakerReset returns the parsed circuit breaker reset timeout.
func (c *Config) BreakerReset() time.Duration {
	return durationOr(c.Elasticsearch.BreakerReset, 30*time.Second)
}

// ReadTimeout returns the parsed HTTP server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return durationOr(c.Server.ReadTimeout, 10*time.Second)
}

// WriteTimeout returns the parsed HTTP server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return durationOr(c.Server.WriteTimeout, 30*time.Second)
}

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return durationOr(c.Server.ShutdownTimeout, 10*time.Second)
}

// validDuration checks that v (when set) parses as a time.Duration.
func validDuration(name, v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.ParseDuration(v); err != nil {
		return fmt.Errorf("%s must be a duration (e.g. \"10s\"), got %s", name, v)
	}
	return nil
}

// durationOr parses s as a duration, returning fallback when unset or invalid.
func durationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
