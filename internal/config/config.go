package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults used when the environment does not override them.
const (
	DefaultPort            = "8080"
	DefaultDownloadDir     = "downloads"
	DefaultMaxFilesToKeep  = 5
	DefaultCleanupInterval = 5 * time.Minute
)

// Config is the process configuration, read once at startup.
type Config struct {
	Port            string
	DownloadDir     string
	MaxFilesToKeep  int
	CleanupInterval time.Duration
}

// Load reads configuration from the environment, falling back to
// defaults. Call godotenv.Load first so a local .env file is honored.
func Load() *Config {
	cfg := &Config{
		Port:            envOr("PORT", DefaultPort),
		DownloadDir:     envOr("DOWNLOAD_FOLDER", DefaultDownloadDir),
		MaxFilesToKeep:  DefaultMaxFilesToKeep,
		CleanupInterval: DefaultCleanupInterval,
	}

	if v := os.Getenv("MAX_FILES_TO_KEEP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFilesToKeep = n
		}
	}
	if v := os.Getenv("CLEANUP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CleanupInterval = d
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
