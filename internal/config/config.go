// Package config loads the settings of the httpxd command from the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jcrtools/httpx"
	"github.com/joho/godotenv"
)

// Config holds the settings of the httpxd command.
type Config struct {
	Addr           string
	PathPrefix     string
	AllowedOrigins []string
	MaxAge         int
	JWTSecret      string // empty => diagnostic endpoint is unauthenticated
	LogLevel       slog.Level
	CookiePath     string
}

// Load reads the configuration from the environment.
// Variables defined in the specified files (".env" if none) are added to
// the environment first; missing files are ignored, and variables already
// present in the environment take precedence.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	// godotenv.Load gives up at the first file it cannot open.
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	c := &Config{
		Addr:           getEnv("HTTPX_ADDR", ":4502"),
		PathPrefix:     getEnv("HTTPX_PATH_PREFIX", httpx.DefaultPathPrefix),
		AllowedOrigins: getEnvList("HTTPX_ALLOWED_ORIGINS", "*"),
		JWTSecret:      getEnv("HTTPX_JWT_SECRET", ""),
		CookiePath:     getEnv("HTTPX_COOKIE_PATH", "/"),
	}
	maxAge, err := getEnvInt("HTTPX_MAX_AGE", 0)
	if err != nil {
		return nil, fmt.Errorf("config: HTTPX_MAX_AGE: %w", err)
	}
	c.MaxAge = maxAge
	level := getEnv("HTTPX_LOG_LEVEL", "info")
	if err := c.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("config: HTTPX_LOG_LEVEL: %w", err)
	}
	return c, nil
}

// Responder returns the configuration of the preflight responder that
// guards the diagnostic endpoint. Settings that aren't exposed through the
// environment keep their default values (see [httpx.DefaultConfig]).
func (c *Config) Responder(logger *slog.Logger) httpx.Config {
	cfg := httpx.DefaultConfig()
	cfg.PathPrefix = c.PathPrefix
	cfg.Origins = c.AllowedOrigins
	cfg.MaxAgeInSeconds = c.MaxAge
	cfg.Logger = logger
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// getEnvList splits a comma-separated value, dropping empty elements.
func getEnvList(key, def string) []string {
	var res []string
	for elem := range strings.SplitSeq(getEnv(key, def), ",") {
		if elem = strings.TrimSpace(elem); elem != "" {
			res = append(res, elem)
		}
	}
	return res
}
