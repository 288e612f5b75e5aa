package config

import (
	"os"
	"strconv"
)

// Config holds the process configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN string

	// Composition
	StagesPath     string // empty uses the embedded stage table
	Seed           uint64 // 0 derives a seed from the clock
	Strict         bool   // duration mismatches abort the measure
	Language       string // breath instruction language, overrides the stage table
	BeatDurationMS int
	Momentum       int // starting countdown, 0 disables it

	// Duration-mismatch record
	ErrorStore   string // file, badger or memory
	ErrorLogPath string
	ErrorDBDir   string
}

func Load() *Config {
	return &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		Port:           getEnv("PORT", "8080"),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		StagesPath:     getEnv("STAGES_PATH", ""),
		Seed:           uint64(getEnvInt("SEED", 0)),
		Strict:         getEnv("STRICT_DURATIONS", "false") == "true",
		Language:       getEnv("LANGUAGE", ""),
		BeatDurationMS: getEnvInt("BEAT_DURATION_MS", 1000),
		Momentum:       getEnvInt("MOMENTUM", 500),
		ErrorStore:     getEnv("ERROR_STORE", "file"),
		ErrorLogPath:   getEnv("ERROR_LOG_PATH", "ERROR_LOG"),
		ErrorDBDir:     getEnv("ERROR_DB_DIR", ".tasteofcontrol/errors"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}

// IsProduction reports whether the process runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
