package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port         string
	DBPath       string
	GeminiURL    string
	GeminiKey    string
	GeminiModel  string
	OpenFoodURL  string
	APIToken     string
	Timezone     string
	RemoteLookup bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("KALTRACK_PORT", "8080"),
		DBPath:       getEnv("KALTRACK_DB_PATH", ""),
		GeminiURL:    getEnv("KALTRACK_GEMINI_URL", "https://generativelanguage.googleapis.com"),
		GeminiKey:    getEnv("KALTRACK_GEMINI_KEY", ""),
		GeminiModel:  getEnv("KALTRACK_GEMINI_MODEL", "gemini-2.0-flash"),
		OpenFoodURL:  getEnv("KALTRACK_OPENFOOD_URL", "https://world.openfoodfacts.org"),
		APIToken:     getEnv("KALTRACK_API_TOKEN", ""),
		Timezone:     getEnv("KALTRACK_TIMEZONE", "Europe/Berlin"),
		RemoteLookup: getEnv("KALTRACK_REMOTE_LOOKUP", "true") != "false",
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("KALTRACK_DB_PATH is required")
	}
	if c.APIToken == "" {
		return fmt.Errorf("KALTRACK_API_TOKEN is required")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
