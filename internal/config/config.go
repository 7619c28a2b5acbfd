package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is built once at process start and passed explicitly into the
// constructors that need it. There is no package-level mutable state.
type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	Debug       bool
}

// fileConfig is the optional YAML config file shape. File values fill in
// where the environment is silent; the environment always wins.
type fileConfig struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	CORSOrigins string `yaml:"cors_origins"`
	TablePrefix string `yaml:"table_prefix"`
}

// Load builds the configuration from the environment plus the optional
// config file named by CONFIG_FILE
func Load() (*Config, error) {
	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", fallback(file.Port, "8080")),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", file.DatabaseURL),
		CORSOrigins: getEnv("CORS_ORIGINS", fallback(file.CORSOrigins, "http://localhost:3000")),
		TablePrefix: getEnv("TABLE_PREFIX", fallback(file.TablePrefix, tablePrefixFor(env))),
		Debug:       getEnv("DEBUG", defaultDebug(env)) == "true",
	}, nil
}

func defaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// tablePrefixFor keeps each environment's rows in its own table
func tablePrefixFor(env string) string {
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func fallback(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}
