// Package config loads docent configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then a .env
// file and process environment. Flag parsing lives in cmd/docent; this package is
// data only.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Transport kinds.
const (
	TransportMemory = "memory"
	TransportRedis  = "redis"
	TransportNATS   = "nats"
)

// Default configuration values.
const (
	DefaultPath           = "docent.yaml"
	DefaultTourSize       = 3
	DefaultArrivalTimeout = 30 * time.Second
	DefaultHomePosition   = "home"
	DefaultMovementTopic  = "movement"
	DefaultArrivedTopic   = "arrived"
	DefaultRedisAddr      = "localhost:6379"
	DefaultNATSURL        = "nats://localhost:4222"
	DefaultLLMBaseURL     = "https://api.openai.com/v1"
	DefaultLLMModel       = "gpt-4o-mini"
	DefaultTTSModel       = "tts-1"
	DefaultTTSVoice       = "nova"
	DefaultRecordDir      = "records"
	DefaultWebPort        = 8181
	DefaultTravelDelay    = 2 * time.Second
)

// Config holds all configuration for a docent process.
type Config struct {
	Tour      TourConfig      `yaml:"tour"`
	Transport TransportConfig `yaml:"transport"`
	LLM       LLMConfig       `yaml:"llm"`
	TTS       TTSConfig       `yaml:"tts"`
	Web       WebConfig       `yaml:"web"`
	Log       LogConfig       `yaml:"log"`
	Record    RecordConfig    `yaml:"record"`

	// CatalogPath points at a YAML exhibit list. Empty uses the built-in catalog.
	CatalogPath string `yaml:"catalog"`

	// Keywords overrides the classifier keyword sets, keyed by act name
	// ("END", "MOVE_ON", ...). Acts not listed keep their defaults.
	Keywords map[string][]string `yaml:"keywords"`
}

// TourConfig tunes the dialogue.
type TourConfig struct {
	// Size is the number of exhibits selected per fill.
	Size int `yaml:"size"`

	// ArrivalTimeout bounds the wait for an arrival notice. Zero waits forever.
	ArrivalTimeout time.Duration `yaml:"arrival_timeout"`

	// HomePosition is dispatched once when the tour ends.
	HomePosition string `yaml:"home_position"`

	// AllowRevisit lets the selector reuse exhibits once the catalog is exhausted.
	AllowRevisit bool `yaml:"allow_revisit"`

	// ListenTimeout bounds one console read. Zero waits forever.
	ListenTimeout time.Duration `yaml:"listen_timeout"`
}

// TransportConfig selects the movement bus.
type TransportConfig struct {
	Kind          string        `yaml:"kind"` // memory, redis, nats
	RedisAddr     string        `yaml:"redis_addr"`
	NATSURL       string        `yaml:"nats_url"`
	MovementTopic string        `yaml:"movement_topic"`
	ArrivedTopic  string        `yaml:"arrived_topic"`
	TravelDelay   time.Duration `yaml:"travel_delay"` // simulated robot only

	// TopicPrefix namespaces both topics so several robots can share a broker.
	TopicPrefix string `yaml:"topic_prefix"`
}

// LLMConfig points at an OpenAI-compatible chat endpoint.
type LLMConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"-"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`

	// FallbackModel, when set, is asked whenever Model fails.
	FallbackModel string `yaml:"fallback_model"`
}

// TTSConfig controls spoken output.
type TTSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	Voice   string `yaml:"voice"`

	// Player is the command used to play synthesized audio. The audio file path
	// is appended as the last argument.
	Player []string `yaml:"player"`
}

// WebConfig controls the live dashboard.
type WebConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// RecordConfig selects where finished sessions are written.
type RecordConfig struct {
	Kind string `yaml:"kind"` // file, redis, none
	Dir  string `yaml:"dir"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Tour: TourConfig{
			Size:           DefaultTourSize,
			ArrivalTimeout: DefaultArrivalTimeout,
			HomePosition:   DefaultHomePosition,
		},
		Transport: TransportConfig{
			Kind:          TransportMemory,
			RedisAddr:     DefaultRedisAddr,
			NATSURL:       DefaultNATSURL,
			MovementTopic: DefaultMovementTopic,
			ArrivedTopic:  DefaultArrivedTopic,
			TravelDelay:   DefaultTravelDelay,
		},
		LLM: LLMConfig{
			BaseURL: DefaultLLMBaseURL,
			Model:   DefaultLLMModel,
			Timeout: 30 * time.Second,
		},
		TTS: TTSConfig{
			Model:  DefaultTTSModel,
			Voice:  DefaultTTSVoice,
			Player: DefaultPlayer(),
		},
		Web: WebConfig{
			Port: DefaultWebPort,
		},
		Log: LogConfig{
			Level: "info",
		},
		Record: RecordConfig{
			Kind: "file",
			Dir:  DefaultRecordDir,
		},
	}
}

// DefaultPlayer returns the audio player command for the current OS.
func DefaultPlayer() []string {
	if runtime.GOOS == "darwin" {
		return []string{"afplay", "-r", "1.3"}
	}
	return []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"}
}

// Load builds a Config from defaults, the YAML file at path and the environment.
// A missing file is not an error when path is the default.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: decode %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
		// defaults only
	default:
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	// A missing .env is normal; the process environment still applies.
	_ = godotenv.Load()

	cfg.LoadEnvConfig()
	return cfg, nil
}

// LoadEnvConfig applies environment overrides.
func (c *Config) LoadEnvConfig() {
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("DOCENT_LLM_MODEL", c.LLM.Model)
	c.LLM.FallbackModel = getEnv("DOCENT_LLM_FALLBACK_MODEL", c.LLM.FallbackModel)
	c.Transport.Kind = getEnv("DOCENT_TRANSPORT", c.Transport.Kind)
	c.Transport.RedisAddr = getEnv("REDIS_ADDR", c.Transport.RedisAddr)
	c.Transport.NATSURL = getEnv("NATS_URL", c.Transport.NATSURL)
	c.Transport.TopicPrefix = getEnv("DOCENT_TOPIC_PREFIX", c.Transport.TopicPrefix)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Tour.Size = getEnvAsInt("DOCENT_TOUR_SIZE", c.Tour.Size)
	c.Web.Port = getEnvAsInt("DOCENT_WEB_PORT", c.Web.Port)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Tour.Size < 1 {
		return &ConfigError{Field: "tour.size", Message: "tour.size must be at least 1"}
	}
	if c.Tour.ArrivalTimeout < 0 {
		return &ConfigError{Field: "tour.arrival_timeout", Message: "tour.arrival_timeout must not be negative"}
	}
	if c.Tour.HomePosition == "" {
		return &ConfigError{Field: "tour.home_position", Message: "tour.home_position is required"}
	}

	switch c.Transport.Kind {
	case TransportMemory:
	case TransportRedis:
		if c.Transport.RedisAddr == "" {
			return &ConfigError{Field: "transport.redis_addr", Message: "REDIS_ADDR is required for the redis transport"}
		}
	case TransportNATS:
		if c.Transport.NATSURL == "" {
			return &ConfigError{Field: "transport.nats_url", Message: "NATS_URL is required for the nats transport"}
		}
	default:
		return &ConfigError{Field: "transport.kind", Message: fmt.Sprintf("unknown transport %q (want memory, redis or nats)", c.Transport.Kind)}
	}
	if c.Transport.MovementTopic == "" || c.Transport.ArrivedTopic == "" {
		return &ConfigError{Field: "transport", Message: "movement and arrived topics are required"}
	}

	if c.TTS.Enabled {
		if c.LLM.APIKey == "" {
			return &ConfigError{Field: "tts.enabled", Message: "OPENAI_API_KEY environment variable is required for voice output"}
		}
		if len(c.TTS.Player) == 0 {
			return &ConfigError{Field: "tts.player", Message: "tts.player command is required for voice output"}
		}
	}

	switch c.Record.Kind {
	case "", "none", "file", "redis":
	default:
		return &ConfigError{Field: "record.kind", Message: fmt.Sprintf("unknown record store %q (want file, redis or none)", c.Record.Kind)}
	}

	if c.Web.Enabled && (c.Web.Port <= 0 || c.Web.Port > 65535) {
		return &ConfigError{Field: "web.port", Message: fmt.Sprintf("invalid web port %d", c.Web.Port)}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
