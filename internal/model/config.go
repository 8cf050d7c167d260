package model

import "time"

// Config is the complete runtime configuration.
// Field tags serve both viper (mapstructure) and `config show` (yaml).
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Source       SourceConfig      `yaml:"source" mapstructure:"source"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// HTTPConfig controls outbound requests to the content source
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// SourceConfig describes where profile content is read from
type SourceConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`   // e.g. https://www.reddit.com
	MaxItems int    `yaml:"max_items" mapstructure:"max_items"` // Combined post+comment cap
}

// CacheConfig controls the raw listing cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig limits requests per source domain
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LLMConfig selects and tunes the text generator
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"-" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// OutputConfig controls where and how personas are written
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Format  string `yaml:"format" mapstructure:"format"` // txt, json, yaml
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "persona/0.1 (+https://github.com/ppiankov/persona)",
			MaxBodyBytes: 5_000_000,
		},
		Source: SourceConfig{
			BaseURL:  "https://www.reddit.com",
			MaxItems: 100,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".persona-cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "",
			Timeout:     60,
			MaxTokens:   1000,
			Temperature: 0.7,
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: "txt",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
