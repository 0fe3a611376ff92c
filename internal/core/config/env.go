package config

import (
	"log"
	"os"
	"strconv"
)

// Environment overrides use GAUGE_[SECTION]_[KEY] names and win over both
// defaults and the config file.
func applyEnvOverrides(cfg *Config) {
	setEnvInt("GAUGE_SCAN_WORKERS", &cfg.Scan.Workers)
	setEnvBool("GAUGE_SCAN_INCLUDE_TESTS", &cfg.Scan.IncludeTests)
	setEnvFloat64("GAUGE_SCAN_THROTTLE_FILES_PER_SEC", &cfg.Scan.ThrottleFilesPerSec)
	setEnvBool("GAUGE_SCAN_SKIP_GENERATED", &cfg.Scan.SkipGenerated)

	setEnvBool("GAUGE_HISTORY_ENABLED", &cfg.History.Enabled)
	setEnvString("GAUGE_HISTORY_PATH", &cfg.History.Path)

	setEnvInt("GAUGE_WATCH_DEBOUNCE_MS", &cfg.Watch.DebounceMS)

	setEnvBool("GAUGE_OBSERVABILITY_ENABLED", &cfg.Observability.Enabled)
	setEnvInt("GAUGE_OBSERVABILITY_PORT", &cfg.Observability.Port)
	setEnvString("GAUGE_OBSERVABILITY_OTLP_ENDPOINT", &cfg.Observability.OTLPEndpoint)
	setEnvBool("GAUGE_OBSERVABILITY_ENABLE_TRACING", &cfg.Observability.EnableTracing)
}

func setEnvString(key string, target *string) {
	if value := os.Getenv(key); value != "" {
		*target = value
		log.Printf("config: %s overridden from environment", key)
	}
}

func setEnvInt(key string, target *int) {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("config: ignoring %s: %v", key, err)
			return
		}
		*target = parsed
		log.Printf("config: %s overridden from environment", key)
	}
}

func setEnvBool(key string, target *bool) {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("config: ignoring %s: %v", key, err)
			return
		}
		*target = parsed
		log.Printf("config: %s overridden from environment", key)
	}
}

func setEnvFloat64(key string, target *float64) {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Printf("config: ignoring %s: %v", key, err)
			return
		}
		*target = parsed
		log.Printf("config: %s overridden from environment", key)
	}
}
