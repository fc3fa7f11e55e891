package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Clock presentation.
	Locale          string // BCP-47 or POSIX name; empty means detect from the host
	TimeFormat      string // "locale" or "fixed"
	LayoutCacheSize int

	// Preference persistence.
	PrefsDBPath string
	PrefsKey    string

	// Websocket sessions.
	WSMessageRate  float64 // inbound messages per second per session
	WSMessageBurst int

	// Kafka broadcast of readings (feature-flagged via KAFKA_ENABLED).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	timeFormat := sharedcfg.EnvOrDefault("CLOCK_TIME_FORMAT", "locale")
	if timeFormat != "locale" && timeFormat != "fixed" {
		return nil, fmt.Errorf("invalid CLOCK_TIME_FORMAT %q: want locale or fixed", timeFormat)
	}

	cacheSize, err := parsePositiveInt("LAYOUT_CACHE_SIZE", 64)
	if err != nil {
		return nil, err
	}

	rate, err := parsePositiveFloat("WS_MESSAGE_RATE", 20)
	if err != nil {
		return nil, err
	}

	burst, err := parsePositiveInt("WS_MESSAGE_BURST", 40)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Locale:          os.Getenv("CLOCK_LOCALE"),
		TimeFormat:      timeFormat,
		LayoutCacheSize: cacheSize,

		PrefsDBPath: sharedcfg.EnvOrDefault("PREFS_DB_PATH", "clockface.db"),
		PrefsKey:    sharedcfg.EnvOrDefault("PREFS_KEY", "clockPrefs"),

		WSMessageRate:  rate,
		WSMessageBurst: burst,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "clock-readings"),
	}

	if cfg.PrefsDBPath == "" {
		return nil, errors.New("PREFS_DB_PATH is required")
	}
	if cfg.PrefsKey == "" {
		return nil, errors.New("PREFS_KEY is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive finite number", key, s)
	}
	return f, nil
}
