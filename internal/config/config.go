package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type RosterScope string

const (
	// ScopeAll lists every active cadet in any group chat.
	ScopeAll RosterScope = "all"
	// ScopeGroup lists only members of the requesting chat.
	ScopeGroup RosterScope = "group"
)

type Config struct {
	BotToken    string
	DatabaseURL string
	AdminIDs    []int64
	Location    *time.Location
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string

	CutoffHour          int
	RedisURL            string
	ActivityCacheTTL    time.Duration
	DBTimeout           time.Duration
	RosterScope         RosterScope
	RosterGaugeInterval time.Duration
}

// Load reads an optional .env and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("tz", "Asia/Singapore")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("env", "dev")
	v.SetDefault("cutoff_hour", 21)
	v.SetDefault("activity_cache_ttl", "10m")
	v.SetDefault("db_timeout", "5s")
	v.SetDefault("roster_scope", string(ScopeAll))
	v.SetDefault("roster_gauge_interval", "1m")
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	loc, err := time.LoadLocation(v.GetString("tz"))
	if err != nil {
		return nil, fmt.Errorf("TZ: %w", err)
	}

	adminIDs, err := parseIDs(v.GetString("admin_ids"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	cutoff, err := strconv.Atoi(strings.TrimSpace(v.GetString("cutoff_hour")))
	if err != nil || cutoff < 0 || cutoff > 23 {
		return nil, fmt.Errorf("CUTOFF_HOUR must be an hour 0-23, got %q", v.GetString("cutoff_hour"))
	}

	cfg := &Config{
		BotToken:    v.GetString("bot_token"),
		DatabaseURL: v.GetString("database_url"),
		AdminIDs:    adminIDs,
		Location:    loc,
		HTTPAddr:    v.GetString("http_addr"),
		LogLevel:    v.GetString("log_level"),
		Env:         strings.ToLower(v.GetString("env")),
		SentryDSN:   v.GetString("sentry_dsn"),
		CutoffHour:  cutoff,
		RedisURL:    v.GetString("redis_url"),
		RosterScope: RosterScope(strings.ToLower(v.GetString("roster_scope"))),
	}
	if cfg.ActivityCacheTTL, err = duration(v, "activity_cache_ttl"); err != nil {
		return nil, err
	}
	if cfg.DBTimeout, err = duration(v, "db_timeout"); err != nil {
		return nil, err
	}
	if cfg.RosterGaugeInterval, err = duration(v, "roster_gauge_interval"); err != nil {
		return nil, err
	}

	switch cfg.RosterScope {
	case ScopeAll, ScopeGroup:
	default:
		return nil, fmt.Errorf("ROSTER_SCOPE must be %q or %q", ScopeAll, ScopeGroup)
	}
	return cfg, nil
}

// Validate checks what `serve` needs; the database is optional with the in-memory store.
func (c *Config) Validate(needDB bool) error {
	if c.BotToken == "" {
		return errors.New("required env BOT_TOKEN is empty")
	}
	if needDB && c.DatabaseURL == "" {
		return errors.New("required env DATABASE_URL is empty")
	}
	return nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", strings.ToUpper(key), v.GetString(key))
	}
	return d, nil
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
