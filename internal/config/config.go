package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string
	DBPath         string
	APIKey         string
	LogLevel       string
	LogFile        string
	MetricsEnabled bool
}

func Load() *Config {
	return &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "/data/cafes.db"),
		APIKey:         getEnv("CAFE_API_KEY", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
		MetricsEnabled: getBool("METRICS_ENABLED", true),
	}
}

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment
// and then calls Load. Variables already set in the environment win over the
// file. A missing file is not an error.
func LoadEnvFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return Load(), nil
}

// EnvFile is the dotenv file named by ENV_FILE, defaulting to ".env".
func EnvFile() string {
	return getEnv("ENV_FILE", ".env")
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
