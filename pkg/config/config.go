package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development"`
	Server      ServerConfig     `yaml:"server"`
	Logger      LoggerConfig     `yaml:"logger"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Ephemeris   EphemerisConfig  `yaml:"ephemeris"`
	Charts      ChartsConfig     `yaml:"charts"`
	Cache       CacheConfig      `yaml:"cache"`
	Redis       RedisConfig      `yaml:"redis"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	Stream      StreamConfig     `yaml:"stream"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	RateLimit       float64       `yaml:"rate_limit" default:"20"` // requests per second per client
	RateBurst       int           `yaml:"rate_burst" default:"40"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"json"`
	Output string `yaml:"output" default:"stdout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type EphemerisConfig struct {
	Provider string        `yaml:"provider" default:"approximate"` // approximate or http
	URL      string        `yaml:"url"`
	Timeout  time.Duration `yaml:"timeout" default:"3s"`
	Retries  int           `yaml:"retries" default:"2"`
	Backoff  time.Duration `yaml:"backoff" default:"100ms"`
}

type ChartsConfig struct {
	DefaultHouseSystem string        `yaml:"default_house_system" default:"W"`
	CalcTimeout        time.Duration `yaml:"calc_timeout" default:"5s"`
}

type CacheConfig struct {
	Backend      string        `yaml:"backend" default:"memory"` // memory or layered
	MemorySize   int           `yaml:"memory_size" default:"10000"`
	L1TTL        time.Duration `yaml:"l1_ttl" default:"10m"`
	NatalTTL     time.Duration `yaml:"natal_ttl" default:"168h"`
	TransitTTL   time.Duration `yaml:"transit_ttl" default:"1h"`
	CompositeTTL time.Duration `yaml:"composite_ttl" default:"168h"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size" default:"20"`
	Prefix   string `yaml:"prefix" default:"astrocore"`
}

type ClickHouseConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"astro"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	Table            string        `yaml:"table" default:"chart_points"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert" default:"true"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
}

type KafkaConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Brokers     []string `yaml:"brokers"`
	EventsTopic string   `yaml:"events_topic" default:"charts.computed"`
	Compression string   `yaml:"compression" default:"snappy"`
	Producer    struct {
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		Linger       time.Duration `yaml:"linger" default:"50ms"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
	Consumer struct {
		Enabled         bool          `yaml:"enabled"`
		PrecomputeTopic string        `yaml:"precompute_topic" default:"charts.precompute"`
		GroupID         string        `yaml:"group_id" default:"astrocore-precompute"`
		Workers         int           `yaml:"workers" default:"2"`
		BufferSize      int           `yaml:"buffer_size" default:"64"`
		RetryMax        int           `yaml:"retry_max" default:"3"`
		BackoffMin      time.Duration `yaml:"backoff_min" default:"100ms"`
		BackoffMax      time.Duration `yaml:"backoff_max" default:"5s"`
		DLQTopic        string        `yaml:"dlq_topic"`
	} `yaml:"consumer"`
}

type StreamConfig struct {
	Enabled         bool          `yaml:"enabled" default:"true"`
	DefaultInterval time.Duration `yaml:"default_interval" default:"60s"`
	MinInterval     time.Duration `yaml:"min_interval" default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file. Missing fields take their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(b)
}

func parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("EPHEMERIS_PROVIDER"); v != "" {
		c.Ephemeris.Provider = v
	}
	if v := getenv("EPHEMERIS_URL"); v != "" {
		c.Ephemeris.URL = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Ephemeris.Provider {
	case "approximate":
	case "http":
		if c.Ephemeris.URL == "" {
			return fmt.Errorf("ephemeris.url is required for the http provider")
		}
	default:
		return fmt.Errorf("ephemeris.provider must be 'approximate' or 'http', got '%s'", c.Ephemeris.Provider)
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "layered" {
		return fmt.Errorf("cache.backend must be 'memory' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Charts.CalcTimeout <= 0 {
		return fmt.Errorf("charts.calc_timeout must be positive")
	}
	if (c.Kafka.Enabled || c.Kafka.Consumer.Enabled) && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when the archive is enabled")
	}
	return nil
}
