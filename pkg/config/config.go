package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Enabled   bool          `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Run HTTP status server in service mode"`
		Listen    string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		OPMLTitle string        `yaml:"opml_title" json:"opml_title" jsonschema:"default=Feedkeeper Registry,description=Title of the exported OPML document"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Registry struct {
		Path     string `yaml:"path" json:"path" jsonschema:"default=feeds.yml,description=Path to the feed registry file"`
		LockPath string `yaml:"lock_path" json:"lock_path" jsonschema:"description=Lock file guarding maintenance cycles (default: registry path + .lock)"`
	} `yaml:"registry" json:"registry" jsonschema:"description=Feed registry storage"`

	Database struct {
		DSN             string        `yaml:"dsn" json:"dsn" jsonschema:"description=History database connection string (empty disables history)"`
		MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=4,description=Maximum number of open connections"`
		MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=2,description=Maximum number of idle connections"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=1h,description=Connection maximum lifetime"`
		Retention       time.Duration `yaml:"retention" json:"retention" jsonschema:"default=2160h,description=How long to keep history records"`
	} `yaml:"database" json:"database" jsonschema:"description=History database configuration"`

	Schedule struct {
		Interval   time.Duration `yaml:"interval" json:"interval" jsonschema:"default=168h,description=Maintenance cycle interval"`
		AutoAdd    bool          `yaml:"auto_add" json:"auto_add" jsonschema:"default=false,description=Enable discovery of new feeds in scheduled cycles"`
		RunOnStart bool          `yaml:"run_on_start" json:"run_on_start" jsonschema:"default=false,description=Run a cycle immediately on service start"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Maintenance MaintenanceConfig `yaml:"maintenance" json:"maintenance" jsonschema:"description=Maintenance cycle settings"`
	Probe       ProbeConfig       `yaml:"probe" json:"probe" jsonschema:"description=Feed probe settings"`
	Discovery   DiscoveryConfig   `yaml:"discovery" json:"discovery" jsonschema:"description=Feed discovery settings"`
	Search      SearchConfig      `yaml:"search" json:"search" jsonschema:"description=Search capability (OpenAI-compatible LLM) settings"`
}

// MaintenanceConfig holds maintenance cycle settings
type MaintenanceConfig struct {
	Keywords    []string `yaml:"keywords" json:"keywords" jsonschema:"description=Topic keywords used for repair and discovery queries"`
	MaxFailures int      `yaml:"max_failures" json:"max_failures" jsonschema:"default=3,minimum=1,description=Consecutive failures triggering repair"`
	MaxWorkers  int      `yaml:"max_workers" json:"max_workers" jsonschema:"default=8,minimum=1,description=Maximum concurrent probes"`
}

// ProbeConfig holds feed probe settings
type ProbeConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Timeout for a single feed probe"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Mozilla/5.0 (compatible; feedkeeper/1.0),description=User agent for HTTP requests"`
	MaxBodySize int64         `yaml:"max_body_size" json:"max_body_size" jsonschema:"default=10485760,description=Maximum feed body size in bytes"`
}

// DiscoveryConfig holds feed discovery settings
type DiscoveryConfig struct {
	TargetSize  int      `yaml:"target_size" json:"target_size" jsonschema:"default=20,minimum=0,description=Discovery runs only while the registry is below this size"`
	MaxPerCycle int      `yaml:"max_per_cycle" json:"max_per_cycle" jsonschema:"default=3,minimum=0,description=Maximum feeds added per cycle"`
	Languages   []string `yaml:"languages" json:"languages" jsonschema:"description=Languages to discover feeds for (e.g. en ja zh)"`

	MaxPerLanguage int `yaml:"max_per_language" json:"max_per_language" jsonschema:"default=8,minimum=0,description=Discovery skips a language once it has this many live feeds"`
}

// SearchConfig holds settings for the LLM-backed search capability
type SearchConfig struct {
	Endpoint      string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint (OpenAI API when empty)"`
	APIKey        string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model         string        `yaml:"model" json:"model" jsonschema:"description=Model name (search is disabled when empty)"`
	Temperature   float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.2,description=Temperature for response generation"`
	MaxTokens     int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=1000,description=Maximum tokens in response"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=Request timeout"`
	SystemPrompt  string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt for the LLM (optional)"`
	MaxCandidates int           `yaml:"max_candidates" json:"max_candidates" jsonschema:"default=5,minimum=1,description=Maximum candidates taken from a single search response"`
}

// Enabled reports whether search is configured. Empty endpoint means the default OpenAI API.
func (s SearchConfig) Enabled() bool {
	return s.Model != ""
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	cfg.Server.Enabled = true
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// registry
	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "feeds.yml"
	}
	if cfg.Registry.LockPath == "" {
		cfg.Registry.LockPath = cfg.Registry.Path + ".lock"
	}

	// database
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 4
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.Retention == 0 {
		cfg.Database.Retention = 90 * 24 * time.Hour
	}

	// schedule
	if cfg.Schedule.Interval == 0 {
		cfg.Schedule.Interval = 7 * 24 * time.Hour
	}

	// maintenance
	if cfg.Maintenance.MaxFailures == 0 {
		cfg.Maintenance.MaxFailures = 3
	}
	if cfg.Maintenance.MaxWorkers == 0 {
		cfg.Maintenance.MaxWorkers = 8
	}

	// probe
	if cfg.Probe.Timeout == 0 {
		cfg.Probe.Timeout = 15 * time.Second
	}
	if cfg.Probe.UserAgent == "" {
		cfg.Probe.UserAgent = "Mozilla/5.0 (compatible; feedkeeper/1.0)"
	}
	if cfg.Probe.MaxBodySize == 0 {
		cfg.Probe.MaxBodySize = 10 * 1024 * 1024
	}

	// discovery
	if cfg.Discovery.TargetSize == 0 {
		cfg.Discovery.TargetSize = 20
	}
	if cfg.Discovery.MaxPerCycle == 0 {
		cfg.Discovery.MaxPerCycle = 3
	}
	if cfg.Discovery.MaxPerLanguage == 0 {
		cfg.Discovery.MaxPerLanguage = 8
	}

	// search
	if cfg.Search.Temperature == 0 {
		cfg.Search.Temperature = 0.2
	}
	if cfg.Search.MaxTokens == 0 {
		cfg.Search.MaxTokens = 1000
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 60 * time.Second
	}
	if cfg.Search.MaxCandidates == 0 {
		cfg.Search.MaxCandidates = 5
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Maintenance.MaxFailures < 1 {
		return fmt.Errorf("maintenance.max_failures must be at least 1")
	}
	if cfg.Maintenance.MaxWorkers < 1 {
		return fmt.Errorf("maintenance.max_workers must be at least 1")
	}
	if cfg.Probe.Timeout < 100*time.Millisecond {
		return fmt.Errorf("probe.timeout must be at least 100ms")
	}
	if cfg.Discovery.TargetSize < 0 || cfg.Discovery.MaxPerCycle < 0 {
		return fmt.Errorf("discovery.target_size and discovery.max_per_cycle must be non-negative")
	}
	if cfg.Discovery.MaxPerLanguage < 0 {
		return fmt.Errorf("discovery.max_per_language must be non-negative")
	}
	if cfg.Search.Temperature < 0 || cfg.Search.Temperature > 2 {
		return fmt.Errorf("search.temperature must be between 0 and 2")
	}
	if cfg.Search.Endpoint != "" && cfg.Search.Model == "" {
		return fmt.Errorf("search.model is required when search.endpoint is set")
	}
	if cfg.Schedule.Interval < time.Minute {
		return fmt.Errorf("schedule.interval must be at least 1 minute")
	}
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetSearchConfig returns search configuration
func (c *Config) GetSearchConfig() SearchConfig {
	return c.Search
}
