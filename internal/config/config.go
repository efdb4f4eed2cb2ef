package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// UI modes for the presentation layer.
const (
	UITUI  = "tui"
	UILog  = "log"
	UINone = "none"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// External skimmer process.
	SkimmerCommand   []string
	SkimmerDir       string
	SkimmerStopGrace time.Duration

	MaxSpotAge       time.Duration
	DispatchInterval time.Duration
	DispatchMaxBatch int
	RefreshInterval  time.Duration

	UI              string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string
	ShutdownTimeout time.Duration

	// Optional Kafka export of applied spots. Disabled when KafkaBrokers is empty.
	KafkaBrokers   []string
	KafkaSpotTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	stopGrace, err := parseDuration("SKIMMER_STOP_GRACE", "5s", false)
	if err != nil {
		return nil, err
	}
	maxAge, err := parseDuration("MAX_SPOT_AGE", "30m", false)
	if err != nil {
		return nil, err
	}
	if maxAge < time.Minute {
		return nil, errors.New("MAX_SPOT_AGE must be at least 1m")
	}
	dispatchInterval, err := parseDuration("DISPATCH_INTERVAL", "100ms", false)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "30s", true)
	if err != nil {
		return nil, err
	}
	maxBatch, err := parsePositiveInt("DISPATCH_MAX_BATCH", 50)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		SkimmerCommand:   strings.Fields(sharedcfg.EnvOrDefault("SKIMMER_COMMAND", defaultSkimmerCommand())),
		SkimmerDir:       os.Getenv("SKIMMER_DIR"),
		SkimmerStopGrace: stopGrace,
		MaxSpotAge:       maxAge,
		DispatchInterval: dispatchInterval,
		DispatchMaxBatch: maxBatch,
		RefreshInterval:  refreshInterval,
		UI:               strings.ToLower(sharedcfg.EnvOrDefault("UI", UITUI)),
		HTTPAddr:         envOrDefaultAllowEmpty("HTTP_ADDR", ":8080"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:          sharedcfg.EnvOrDefault("LOG_FILE", "skimmer.log"),
		ShutdownTimeout:  shutdownTimeout,
		KafkaBrokers:     brokers,
		KafkaSpotTopic:   sharedcfg.EnvOrDefault("KAFKA_SPOT_TOPIC", "skcc-spots"),
	}

	if len(cfg.SkimmerCommand) == 0 {
		return nil, errors.New("SKIMMER_COMMAND is required")
	}
	switch cfg.UI {
	case UITUI, UILog, UINone:
	default:
		return nil, fmt.Errorf("invalid UI %q: want tui, log or none", cfg.UI)
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaSpotTopic == "" {
		return nil, errors.New("KAFKA_SPOT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether spots are exported to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func defaultSkimmerCommand() string {
	if runtime.GOOS == "windows" {
		return "skcc_skimmer.exe"
	}
	return "python3 -u skcc_skimmer.py"
}

// envOrDefaultAllowEmpty distinguishes an unset variable from one set to
// the empty string, which disables the feature.
func envOrDefaultAllowEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
