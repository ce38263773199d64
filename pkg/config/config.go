package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"PowerCast/internal/domain/models"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"oneof=development staging production"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout" validate:"required"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Predictor struct {
		BaseURL     string        `yaml:"base_url" default:"http://localhost:5000" validate:"required,url"`
		PredictPath string        `yaml:"predict_path" default:"/predict" validate:"startswith=/"`
		Timeout     time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	} `yaml:"predictor"`
	Replay struct {
		AutoStart     bool                      `yaml:"auto_start" default:"true"`
		Interval      time.Duration             `yaml:"interval" default:"100ms" validate:"gt=0"`
		MaxDataPoints int                       `yaml:"max_data_points" default:"50" validate:"gte=1"`
		PrimaryLabel  string                    `yaml:"primary_label" default:"LGBM" validate:"required"`
		PrimaryColor  string                    `yaml:"primary_color" default:"rgba(54, 162, 235, 1)" validate:"required"`
		ActualKey     string                    `yaml:"actual_key" default:"global_active_power" validate:"required"`
		Metrics       []models.MetricDescriptor `yaml:"metrics" validate:"dive"`
	} `yaml:"replay"`
	Upload struct {
		MaxBytes     string  `yaml:"max_bytes" default:"10M"`
		Label        string  `yaml:"label" default:"Predictions"`
		Color        string  `yaml:"color" default:"rgba(75, 192, 192, 1)"`
		RateCapacity float64 `yaml:"rate_capacity" default:"5" validate:"gt=0"`
		RatePerSec   float64 `yaml:"rate_per_sec" default:"1" validate:"gt=0"`
	} `yaml:"upload"`
	Cache struct {
		Backend string        `yaml:"backend" default:"memory" validate:"oneof=none memory redis"`
		TTL     time.Duration `yaml:"ttl" default:"5m"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"powercast.frames"`
		LogTopic     string   `yaml:"log_topic"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
		BufferSize   int      `yaml:"buffer_size" default:"1000" validate:"gte=1"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
}

var validate = validator.New()

// Default returns a config populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	c.applyFallbacks()
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	// Defaults first so an explicit `false` in YAML survives.
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyFallbacks()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A missing file is not an error: defaults plus environment are used instead.
func LoadWithEnv(path string) (*Config, error) {
	var (
		c   *Config
		err error
	)
	if _, statErr := os.Stat(path); statErr == nil {
		c, err = Load(path)
	} else {
		c, err = Default()
	}
	if err != nil {
		return nil, err
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PREDICTOR_URL"); v != "" {
		c.Predictor.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("REPLAY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REPLAY_INTERVAL: %w", err)
		}
		c.Replay.Interval = d
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Backend = "redis"
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Enabled = true
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	return nil
}

func (c *Config) applyFallbacks() {
	if len(c.Replay.Metrics) == 0 {
		c.Replay.Metrics = models.DefaultMetrics()
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"*"}
	}
	c.Predictor.BaseURL = strings.TrimRight(c.Predictor.BaseURL, "/")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	seen := make(map[string]bool, len(c.Replay.Metrics))
	for _, m := range c.Replay.Metrics {
		if seen[m.Key()] {
			return fmt.Errorf("replay.metrics: duplicate metric %q", m.ID)
		}
		seen[m.Key()] = true
	}
	return nil
}
