package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all configurable game parameters.
type Config struct {
	CardWidth        int `json:"card_width"`
	CardHeight       int `json:"card_height"`
	RevealDurationMS int `json:"reveal_duration_ms"`
	DefaultCardCount int `json:"default_card_count"`
	MaxNameLength    int `json:"max_name_length"`
	HTTPPort         int `json:"http_port"`

	// ImageBaseURL is the root of the image service; card references are built from it.
	ImageBaseURL       string `json:"image_base_url"`
	ProviderTimeoutMS  int    `json:"provider_timeout_ms"`
	ProviderRatePerSec int    `json:"provider_rate_per_sec"`
	ProviderBurst      int    `json:"provider_burst"`

	LogLevel string `json:"log_level"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		CardWidth:          200,
		CardHeight:         300,
		RevealDurationMS:   1500,
		DefaultCardCount:   15,
		MaxNameLength:      24,
		HTTPPort:           8080,
		ImageBaseURL:       "https://picsum.photos",
		ProviderTimeoutMS:  5000,
		ProviderRatePerSec: 5,
		ProviderBurst:      5,
		LogLevel:           "info",
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config.json", "tag", "config", "err", err)
		}
	}

	overrideInt(&cfg.CardWidth, "CARD_WIDTH")
	overrideInt(&cfg.CardHeight, "CARD_HEIGHT")
	overrideInt(&cfg.RevealDurationMS, "REVEAL_DURATION_MS")
	overrideInt(&cfg.DefaultCardCount, "DEFAULT_CARD_COUNT")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.HTTPPort, "HTTP_PORT")
	overrideString(&cfg.ImageBaseURL, "IMAGE_BASE_URL")
	overrideInt(&cfg.ProviderTimeoutMS, "PROVIDER_TIMEOUT_MS")
	overrideInt(&cfg.ProviderRatePerSec, "PROVIDER_RATE_PER_SEC")
	overrideInt(&cfg.ProviderBurst, "PROVIDER_BURST")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")

	return cfg
}

// RevealDuration is how long two non-matching cards stay face up.
func (c *Config) RevealDuration() time.Duration {
	return time.Duration(c.RevealDurationMS) * time.Millisecond
}

// ProviderTimeout bounds a single image list request.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutMS) * time.Millisecond
}

// SlogLevel maps LogLevel to a slog.Level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid value for env override", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
