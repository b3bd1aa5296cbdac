// internal/config/config.go
//
// Environment-driven configuration for the Gamegrid server and CLI.
// `.env` is loaded first (development); real environment variables win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/robalobadob/gamegrid/internal/game"
	"github.com/robalobadob/gamegrid/internal/grid"
	"github.com/robalobadob/gamegrid/internal/igdb"
)

const devSecret = "dev_secret_change_me"

type Server struct {
	Port         string
	ClientOrigin string
	Production   bool // NODE_ENV=production: secure cookies
}

type Log struct {
	Level  string
	Format string // "json" or "console"
}

type Database struct {
	URL string
}

type Auth struct {
	JWTSecret     string
	JWTExpiryDays int
	CookieName    string
}

type Refresh struct {
	Interval       time.Duration
	CategoriesFile string
}

// Config is the full runtime configuration.
type Config struct {
	Server   Server
	Log      Log
	Database Database
	Auth     Auth
	IGDB     igdb.Config
	Refresh  Refresh
	Grid     grid.Options
	Rules    game.Rules
}

// HasIGDB reports whether upstream credentials are configured.
func (c *Config) HasIGDB() bool {
	return c.IGDB.ClientID != "" && c.IGDB.ClientSecret != ""
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() (*Config, error) {
	var errs []error
	p := parser{errs: &errs}

	cfg := &Config{
		Server: Server{
			Port:         getEnv("PORT", "5175"),
			ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
			Production:   os.Getenv("NODE_ENV") == "production",
		},
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Database: Database{
			URL: getEnv("DATABASE_URL", "./data/gamegrid.db"),
		},
		Auth: Auth{
			JWTSecret:     getEnv("JWT_SECRET", devSecret),
			JWTExpiryDays: p.int("JWT_EXPIRES_DAYS", 14),
			CookieName:    getEnv("COOKIE_NAME", "gamegrid_token"),
		},
		IGDB: igdb.Config{
			ClientID:     os.Getenv("IGDB_CLIENT_ID"),
			ClientSecret: os.Getenv("IGDB_CLIENT_SECRET"),
			BaseURL:      getEnv("IGDB_BASE_URL", igdb.DefaultBaseURL),
			TokenURL:     getEnv("IGDB_TOKEN_URL", igdb.DefaultTokenURL),
			MaxGames:     p.int("IGDB_MAX_GAMES", igdb.DefaultMaxGames),
			PageSize:     p.int("IGDB_PAGE_SIZE", igdb.DefaultPageSize),
			RatePerSec:   p.float("IGDB_RATE_PER_SEC", igdb.DefaultRate),
		},
		Refresh: Refresh{
			Interval:       p.duration("REFRESH_INTERVAL", 24*time.Hour),
			CategoriesFile: os.Getenv("CATEGORIES_FILE"),
		},
		Grid: grid.Options{
			Size:        p.int("GRID_SIZE", grid.DefaultSize),
			MaxAttempts: p.int("GRID_MAX_ATTEMPTS", grid.DefaultMaxAttempts),
			SearchWidth: p.int("GRID_SEARCH_WIDTH", grid.DefaultSearchWidth),
		},
		Rules: game.Rules{
			Lives:               p.int("GAME_LIVES", game.DefaultLives),
			ConsumeOnEveryGuess: p.bool("RULE_CONSUME_ON_EVERY_GUESS", true),
			LockCellOnAnyGuess:  p.bool("RULE_LOCK_CELL_ON_ANY_GUESS", false),
		},
	}

	if err := cfg.Grid.Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Rules.Lives <= 0 {
		errs = append(errs, fmt.Errorf("GAME_LIVES must be positive, got %d", cfg.Rules.Lives))
	}
	if cfg.Server.Production && cfg.Auth.JWTSecret == devSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if f := strings.ToLower(cfg.Log.Format); f != "json" && f != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// parser collects conversion errors instead of stopping at the first one.
type parser struct{ errs *[]error }

func (p parser) int(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return n
}

func (p parser) float(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return f
}

func (p parser) bool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return b
}

func (p parser) duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return d
}
