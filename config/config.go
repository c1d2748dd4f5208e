package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every toggle the service honors. Values are resolved once at
// startup and threaded through constructors; leaf components never read the
// environment themselves.
type Config struct {
	Port string `yaml:"port"`

	// Log is the service's own structured logging.
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"` // empty = stdout only
	} `yaml:"log"`

	// RequestLog is the per-request JSON performance log.
	RequestLog struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`
	} `yaml:"request_log"`

	Pipeline struct {
		GapThreshold       float64 `yaml:"gap_threshold" validate:"gte=0"`
		MinDuration        float64 `yaml:"min_duration" validate:"gte=0"`
		SamplingIntervalMS int     `yaml:"sampling_interval_ms" validate:"gt=0"`
		MaxUploadMB        int     `yaml:"max_upload_mb" validate:"gt=0"`
	} `yaml:"pipeline"`

	Clips struct {
		Delivery string `yaml:"delivery" validate:"oneof=inline persisted"`
		Backend  string `yaml:"backend" validate:"oneof=local supabase"`
		Dir      string `yaml:"dir"`
		URLBase  string `yaml:"url_base"`
	} `yaml:"clips"`

	Engine struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gt=0"`
	} `yaml:"engine"`

	Telemetry struct {
		GPUEnabled bool   `yaml:"gpu_enabled"`
		DiskPath   string `yaml:"disk_path"`
	} `yaml:"telemetry"`

	Supabase struct {
		URL    string `yaml:"url"`
		Key    string `yaml:"key"`
		Bucket string `yaml:"bucket"`
	} `yaml:"supabase"`
}

// SamplingInterval returns the telemetry cadence as a duration.
func (c *Config) SamplingInterval() time.Duration {
	return time.Duration(c.Pipeline.SamplingIntervalMS) * time.Millisecond
}

// MaxUploadBytes returns the upload size cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Pipeline.MaxUploadMB) * 1024 * 1024
}

// Load builds the configuration: defaults, then an optional YAML file named
// by EMMA_WAVE_CONFIG, then environment overrides, then validation.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("EMMA_WAVE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Clips.Backend == "supabase" && (cfg.Supabase.URL == "" || cfg.Supabase.Key == "") {
		return nil, fmt.Errorf("supabase backend selected but SUPABASE_URL or SUPABASE_SERVICE_KEY is missing")
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Port = "7000"
	cfg.Log.Level = "info"
	cfg.RequestLog.Enabled = true
	cfg.RequestLog.Dir = "logs"
	cfg.Pipeline.GapThreshold = 0.5
	cfg.Pipeline.MinDuration = 0
	cfg.Pipeline.SamplingIntervalMS = 1000
	cfg.Pipeline.MaxUploadMB = 100
	cfg.Clips.Delivery = "persisted"
	cfg.Clips.Backend = "local"
	cfg.Clips.Dir = "saved_audio"
	cfg.Clips.URLBase = "http://localhost:7000/audio"
	cfg.Engine.URL = "http://localhost:8388"
	cfg.Engine.TimeoutSeconds = 300
	cfg.Telemetry.DiskPath = "/"
	cfg.Supabase.Bucket = "speaker-clips"
	return cfg
}

func applyEnv(cfg *Config) {
	cfg.Port = envStr("PORT", cfg.Port)
	cfg.Log.Level = envStr("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = envStr("LOG_FILE", cfg.Log.File)
	cfg.RequestLog.Enabled = envBool("REQUEST_LOGGING", cfg.RequestLog.Enabled)
	cfg.RequestLog.Dir = envStr("REQUEST_LOG_DIR", cfg.RequestLog.Dir)
	cfg.Pipeline.GapThreshold = envFloat("MERGE_GAP_THRESHOLD", cfg.Pipeline.GapThreshold)
	cfg.Pipeline.MinDuration = envFloat("MERGE_MIN_DURATION", cfg.Pipeline.MinDuration)
	cfg.Pipeline.SamplingIntervalMS = envInt("SAMPLING_INTERVAL_MS", cfg.Pipeline.SamplingIntervalMS)
	cfg.Pipeline.MaxUploadMB = envInt("MAX_UPLOAD_MB", cfg.Pipeline.MaxUploadMB)
	cfg.Clips.Delivery = envStr("CLIP_DELIVERY", cfg.Clips.Delivery)
	cfg.Clips.Backend = envStr("CLIP_BACKEND", cfg.Clips.Backend)
	cfg.Clips.Dir = envStr("CLIP_DIR", cfg.Clips.Dir)
	cfg.Clips.URLBase = envStr("CLIP_URL_BASE", cfg.Clips.URLBase)
	cfg.Engine.URL = envStr("ENGINE_URL", cfg.Engine.URL)
	cfg.Engine.TimeoutSeconds = envInt("ENGINE_TIMEOUT_SECONDS", cfg.Engine.TimeoutSeconds)
	cfg.Telemetry.GPUEnabled = envBool("USE_GPU", cfg.Telemetry.GPUEnabled)
	cfg.Telemetry.DiskPath = envStr("TELEMETRY_DISK_PATH", cfg.Telemetry.DiskPath)
	cfg.Supabase.URL = envStr("SUPABASE_URL", cfg.Supabase.URL)
	cfg.Supabase.Key = envStr("SUPABASE_SERVICE_KEY", cfg.Supabase.Key)
	cfg.Supabase.Bucket = envStr("SUPABASE_BUCKET", cfg.Supabase.Bucket)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
