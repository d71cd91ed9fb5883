// internal/config/config.go
//
// Process configuration for the mines authority and its clients.
// Responsibilities:
//   - Load an optional .env file (godotenv) without overriding the real environment.
//   - Read every setting from the environment with a default.
//   - Hand typed sub-configs to the packages that need them.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Liquidine/bp-r3f/internal/httpserver"
	"github.com/Liquidine/bp-r3f/internal/remote"
)

// Store backends accepted in STORE.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config is everything the binary reads from its environment.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // "console" for human-readable output, anything else for JSON
	Env       string // "production" enables secure cookies

	ClientOrigin   string
	SessionSecret  string
	MaxDimension   int
	RequestTimeout time.Duration

	Store  string
	DBPath string

	MinesAPIBase    string
	MinesAPITimeout time.Duration
}

// Load reads the given .env files (".env" when none) and then the environment.
// A missing file is not an error.
func Load(files ...string) Config {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("read .env")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() Config {
	port := getEnv("PORT", "5175")
	return Config{
		Port:      port,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),
		Env:       getEnv("APP_ENV", "development"),

		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		SessionSecret:  getEnv("SESSION_SECRET", "dev_secret_change_me"),
		MaxDimension:   envInt("MAX_DIMENSION", 64),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 10*time.Second),

		Store:  strings.ToLower(getEnv("STORE", StoreMemory)),
		DBPath: getEnv("DB_PATH", "./data/mines.db"),

		MinesAPIBase:    getEnv("MINES_API_BASE", "http://localhost:"+port+"/mines"),
		MinesAPITimeout: envDuration("MINES_API_TIMEOUT", 5*time.Second),
	}
}

// Production reports whether APP_ENV is "production".
func (c Config) Production() bool { return c.Env == "production" }

// Level parses LogLevel, falling back to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Server returns the authority's HTTP settings.
func (c Config) Server() httpserver.Config {
	return httpserver.Config{
		ClientOrigin:   c.ClientOrigin,
		SessionSecret:  c.SessionSecret,
		MaxDimension:   c.MaxDimension,
		RequestTimeout: c.RequestTimeout,
		SecureCookies:  c.Production(),
	}
}

// Remote returns the settings of a client talking to MINES_API_BASE, which
// defaults to this process's own authority.
func (c Config) Remote() remote.Config {
	return remote.Config{BaseURL: c.MinesAPIBase, Timeout: c.MinesAPITimeout}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Int("default", def).Msg("not an integer; using default")
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Dur("default", def).Msg("not a duration; using default")
		return def
	}
	return d
}
