package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	StringsPaths  []string `toml:"strings"`
	MaxLineLength int      `toml:"max_line_length"`
	AllowDraft    bool     `toml:"allow_draft"`
	WorkerCount   int      `toml:"worker_count"`
	LogLevel      string   `toml:"log_level"`
	DatabaseURL   string   `toml:"database_url"`
	Neo4jURI      string   `toml:"neo4j_uri"`
	Neo4jUser     string   `toml:"neo4j_user"`
	Neo4jPassword string   `toml:"neo4j_password"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxLineLength: 100,
		WorkerCount:   8,
		LogLevel:      "info",
		DatabaseURL:   "postgres://localhost:5432/cards?sslmode=disable",
		Neo4jURI:      "bolt://localhost:7687",
		Neo4jUser:     "neo4j",
		Neo4jPassword: "password",
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the default config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "cdb-transformer", "config.toml")
}

// Load layers the defaults, a TOML file, a .env file and the environment.
// An explicit path must exist; the default path is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = GetConfigFilePath()
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("Loaded config file")
	} else if explicit {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CDBT_STRINGS"); v != "" {
		c.StringsPaths = filepath.SplitList(v)
	}
	c.MaxLineLength = getEnvInt("CDBT_MAX_LINE_LENGTH", c.MaxLineLength)
	c.AllowDraft = getEnvBool("CDBT_ALLOW_DRAFT", c.AllowDraft)
	c.WorkerCount = getEnvInt("CDBT_WORKER_COUNT", c.WorkerCount)
	c.LogLevel = getEnv("CDBT_LOG_LEVEL", c.LogLevel)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.Neo4jURI = getEnv("NEO4J_URI", c.Neo4jURI)
	c.Neo4jUser = getEnv("NEO4J_USER", c.Neo4jUser)
	c.Neo4jPassword = getEnv("NEO4J_PASSWORD", c.Neo4jPassword)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-integer environment value")
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-boolean environment value")
		return fallback
	}
	return b
}
