package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/ashishacharya123/pkms-todos/internal/constants"
)

type Config struct {
	DBDriver   string `toml:"db_driver"`
	DBPath     string `toml:"db_path"`
	DBHost     string `toml:"db_host"`
	DBPort     string `toml:"db_port"`
	DBUser     string `toml:"db_user"`
	DBPassword string `toml:"db_password"`
	DBName     string `toml:"db_name"`
	GinMode    string `toml:"gin_mode"`
	ServerAddr string `toml:"server_addr"`
	APIURL     string `toml:"api_url"`
	PageSize   int    `toml:"page_size"`
	LogLevel   string `toml:"log_level"`
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBPath:     getEnv("DB_PATH", "todos.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "pkms"),
		DBPassword: getEnv("DB_PASSWORD", "pkms"),
		DBName:     getEnv("DB_NAME", "pkms"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		ServerAddr: getEnv("SERVER_ADDR", constants.DefaultServerAddr),
		APIURL:     getEnv("TODO_API_URL", constants.DefaultAPIURL),
		PageSize:   getEnvInt("TODO_PAGE_SIZE", constants.DefaultPageSize),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}
}

// LoadFile loads the environment configuration and overlays the TOML file at
// path on top of it. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.PageSize < constants.MinPageSize || c.PageSize > constants.MaxPageSize {
		c.PageSize = constants.DefaultPageSize
	}
	if c.APIURL == "" {
		c.APIURL = constants.DefaultAPIURL
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value < constants.MinPageSize || value > constants.MaxPageSize {
		return defaultValue
	}
	return value
}
