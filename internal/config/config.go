// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// envPrefix is prepended to every variable name below.
const envPrefix = "RETROTRACKER_"

// Store backends for the metadata cache and upstream tokens.
const (
	StoreSQLite   = "sqlite"
	StoreJSONFile = "jsonfile"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordAppID   string `env:"DISCORD_APP_ID"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"`

	DBPath    string        `env:"DB_PATH" envDefault:"retrotracker.db"`
	Store     string        `env:"STORE" envDefault:"sqlite"`
	CacheFile string        `env:"CACHE_FILE" envDefault:"cache_api.json"`
	TokenFile string        `env:"TOKEN_FILE" envDefault:"igdb_token.json"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"168h"`

	IGDBClientID     string `env:"IGDB_CLIENT_ID"`
	IGDBClientSecret string `env:"IGDB_CLIENT_SECRET"`
	IGDBBaseURL      string `env:"IGDB_BASE_URL" envDefault:"https://api.igdb.com/v4"`
	TwitchTokenURL   string `env:"TWITCH_TOKEN_URL" envDefault:"https://id.twitch.tv/oauth2/token"`
	RAWGKey          string `env:"RAWG_KEY"`
	RAWGBaseURL      string `env:"RAWG_BASE_URL" envDefault:"https://api.rawg.io"`
	HLTBBaseURL      string `env:"HLTB_BASE_URL" envDefault:"https://howlongtobeat.com"`
	SheetURL         string `env:"SHEET_URL"`

	SecretKeyHex string        `env:"SECRET_KEY"`
	ListenAddr   string        `env:"LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"20s"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`

	// SecretKey is the decoded SecretKeyHex; nil when no key is configured.
	SecretKey []byte
}

// HasIGDBCredentials returns true when both the IGDB client id and secret are set.
// Without them the IGDB source is left out of the resolver.
func (c *Config) HasIGDBCredentials() bool {
	return c.IGDBClientID != "" && c.IGDBClientSecret != ""
}

// HasRAWGKey returns true when a RAWG API key is configured.
func (c *Config) HasRAWGKey() bool {
	return c.RAWGKey != ""
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration from RETROTRACKER_* environment variables and
// returns a validated Config. Only RETROTRACKER_DISCORD_TOKEN is required;
// upstream credentials are optional and disable their source when absent.
func Load() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DiscordToken == "" {
		return nil, errors.New(envPrefix + "DISCORD_TOKEN is required")
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if cfg.Store != StoreSQLite && cfg.Store != StoreJSONFile {
		return nil, fmt.Errorf("%sSTORE must be %q or %q, got %q", envPrefix, StoreSQLite, StoreJSONFile, cfg.Store)
	}

	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("%sCACHE_TTL must be positive, got %s", envPrefix, cfg.CacheTTL)
	}

	if cfg.SecretKeyHex != "" {
		key, err := hex.DecodeString(cfg.SecretKeyHex)
		if err != nil {
			return nil, fmt.Errorf("%sSECRET_KEY is not valid hex: %w", envPrefix, err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("%sSECRET_KEY must decode to 32 bytes, got %d", envPrefix, len(key))
		}
		cfg.SecretKey = key
	}

	return &cfg, nil
}
