package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Setenv("TZ", "")
	t.Setenv("BOT_TOKEN", "token")

	cfg, err := fromViper(newViper())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Location.String() != "Asia/Singapore" {
		t.Fatalf("location = %s", cfg.Location)
	}
	if cfg.CutoffHour != 21 || cfg.RosterScope != ScopeAll {
		t.Fatalf("cutoff=%d scope=%s", cfg.CutoffHour, cfg.RosterScope)
	}
	if cfg.ActivityCacheTTL != 10*time.Minute || cfg.DBTimeout != 5*time.Second || cfg.RosterGaugeInterval != time.Minute {
		t.Fatalf("durations = %v %v %v", cfg.ActivityCacheTTL, cfg.DBTimeout, cfg.RosterGaugeInterval)
	}
	if err := cfg.Validate(false); err != nil {
		t.Fatalf("memory mode should not need a database: %v", err)
	}
	if err := cfg.Validate(true); err == nil {
		t.Fatal("expected DATABASE_URL to be required")
	}
}

func TestOverrides(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("ADMIN_IDS", "11, 22")
	t.Setenv("CUTOFF_HOUR", "19")
	t.Setenv("ROSTER_SCOPE", "Group")
	t.Setenv("DB_TIMEOUT", "2s")

	cfg, err := fromViper(newViper())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CutoffHour != 19 || cfg.RosterScope != ScopeGroup || cfg.DBTimeout != 2*time.Second {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if !cfg.IsAdmin(22) || cfg.IsAdmin(33) {
		t.Fatalf("admin ids = %v", cfg.AdminIDs)
	}
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"CUTOFF_HOUR":        "24",
		"ROSTER_SCOPE":       "everyone",
		"ADMIN_IDS":          "12,abc",
		"ACTIVITY_CACHE_TTL": "soon",
		"TZ":                 "Mars/Olympus",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := fromViper(newViper()); err == nil {
				t.Fatalf("%s=%s accepted", key, val)
			}
		})
	}
}
