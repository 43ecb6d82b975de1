package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wenyunvip/ai-daily-digest/internal/feeds"
)

const (
	configPathEnv    = "DIGEST_CONFIG"
	apiKeyEnv        = "MOONSHOT_API_KEY"
	oracleModelEnv   = "DIGEST_ORACLE_MODEL"
	oracleURLEnv     = "DIGEST_ORACLE_URL"
	cachePathEnv     = "DIGEST_CACHE_PATH"
	windowHoursEnv   = "AI_DIGEST_HOURS"
	smtpPasswordEnv  = "DIGEST_SMTP_PASSWORD"
	defaultWindow    = 48 * time.Hour
	defaultTopN      = 15
	defaultRetention = 30 * 24 * time.Hour
)

// Config holds everything the pipeline needs; it is built once at startup
// and passed in explicitly, never read from ambient state.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Cache     CacheConfig     `yaml:"cache"`
	Output    OutputConfig    `yaml:"output"`
	Email     EmailConfig     `yaml:"email"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FetchConfig bounds the feed fetch stage.
type FetchConfig struct {
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PipelineConfig sets the recency window and the top-N cut.
type PipelineConfig struct {
	Window time.Duration `yaml:"window"`
	TopN   int           `yaml:"topN"`
}

// OracleConfig describes the external scoring/summarization service.
type OracleConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	Timeout     time.Duration `yaml:"timeout"`
	BatchSize   int           `yaml:"batchSize"`
	MaxAttempts int           `yaml:"maxAttempts"`
	Parallelism int           `yaml:"parallelism"`
}

// CacheConfig locates the incremental cache and bounds its retention.
type CacheConfig struct {
	Path      string        `yaml:"path"`
	Retention time.Duration `yaml:"retention"`
}

// OutputConfig says where rendered digests land.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// EmailConfig wires the optional SMTP exporter.
type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// SchedulerConfig defines when recurring runs fire.
type SchedulerConfig struct {
	CronExpression string `yaml:"cronExpression"`
	Timezone       string `yaml:"timezone"`
}

// SourceConfig overrides the built-in feed registry.
type SourceConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Site string `yaml:"site"`
	Hint string `yaml:"hint"`
}

// Location resolves the scheduler timezone, reverting to UTC on failure.
func (s SchedulerConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", s.Timezone)
		return time.UTC
	}
	return loc
}

// FeedSources returns the configured sources, or the built-in registry
// when the config names none.
func (c Config) FeedSources() []feeds.Source {
	if len(c.Sources) == 0 {
		return feeds.Defaults
	}
	out := make([]feeds.Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		hint := feeds.FormatUnknown
		switch feeds.Format(s.Hint) {
		case feeds.FormatRSS, feeds.FormatAtom:
			hint = feeds.Format(s.Hint)
		}
		out = append(out, feeds.Source{Name: s.Name, URL: s.URL, Site: s.Site, Hint: hint})
	}
	return out
}

// Load reads YAML configuration (if present) and applies environment
// overrides on top of the defaults.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.Oracle.APIKey = v
	}
	if v := os.Getenv(oracleModelEnv); v != "" {
		c.Oracle.Model = v
	}
	if v := os.Getenv(oracleURLEnv); v != "" {
		c.Oracle.Endpoint = v
	}
	if v := os.Getenv(cachePathEnv); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Email.Password = v
	}
	if v := os.Getenv(windowHoursEnv); v != "" {
		if d, err := time.ParseDuration(v + "h"); err == nil && d > 0 {
			c.Pipeline.Window = d
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Fetch.Concurrency > 0 {
		base.Fetch.Concurrency = override.Fetch.Concurrency
	}
	if override.Fetch.Timeout > 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}

	if override.Pipeline.Window > 0 {
		base.Pipeline.Window = override.Pipeline.Window
	}
	if override.Pipeline.TopN > 0 {
		base.Pipeline.TopN = override.Pipeline.TopN
	}

	if override.Oracle.Endpoint != "" {
		base.Oracle.Endpoint = override.Oracle.Endpoint
	}
	if override.Oracle.Model != "" {
		base.Oracle.Model = override.Oracle.Model
	}
	if override.Oracle.APIKey != "" {
		base.Oracle.APIKey = override.Oracle.APIKey
	}
	if override.Oracle.Timeout > 0 {
		base.Oracle.Timeout = override.Oracle.Timeout
	}
	if override.Oracle.BatchSize > 0 {
		base.Oracle.BatchSize = override.Oracle.BatchSize
	}
	if override.Oracle.MaxAttempts > 0 {
		base.Oracle.MaxAttempts = override.Oracle.MaxAttempts
	}
	if override.Oracle.Parallelism > 0 {
		base.Oracle.Parallelism = override.Oracle.Parallelism
	}

	if override.Cache.Path != "" {
		base.Cache.Path = override.Cache.Path
	}
	if override.Cache.Retention > 0 {
		base.Cache.Retention = override.Cache.Retention
	}

	if override.Output.Dir != "" {
		base.Output = override.Output
	}

	if override.Email.Host != "" || override.Email.Enabled {
		base.Email = override.Email
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	stateDir := filepath.Join(home, ".ai-daily-digest")

	return Config{
		Logging: LoggingConfig{Level: "info"},
		Fetch: FetchConfig{
			Concurrency: 10,
			Timeout:     15 * time.Second,
		},
		Pipeline: PipelineConfig{
			Window: defaultWindow,
			TopN:   defaultTopN,
		},
		Oracle: OracleConfig{
			Endpoint:    "https://api.moonshot.cn/v1/chat/completions",
			Model:       "kimi-k2-5",
			Timeout:     2 * time.Minute,
			BatchSize:   10,
			MaxAttempts: 3,
			Parallelism: 2,
		},
		Cache: CacheConfig{
			Path:      filepath.Join(stateDir, "cache.db"),
			Retention: defaultRetention,
		},
		Output:    OutputConfig{Dir: stateDir},
		Scheduler: SchedulerConfig{CronExpression: "0 9 * * *", Timezone: "UTC"},
	}
}
