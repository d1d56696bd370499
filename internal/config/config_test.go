package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:          "8080",
		SQLiteDBPath:  t.TempDir() + "/networth.db",
		SessionSecret: strings.Repeat("s", 32),
		SessionTTL:    24 * time.Hour,
		LogLevel:      slog.LevelInfo,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"non-numeric port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"empty db path", func(c *Config) { c.SQLiteDBPath = "" }, "database path"},
		{"short secret", func(c *Config) { c.SessionSecret = "short" }, "SESSION_SECRET"},
		{"tiny ttl", func(c *Config) { c.SessionTTL = time.Second }, "session TTL"},
		{"huge ttl", func(c *Config) { c.SessionTTL = 60 * 24 * time.Hour }, "session TTL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig(t)
			tc.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	c := validConfig(t)
	c.Port = "nope"
	c.SessionSecret = ""
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid port") || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Fatalf("expected both problems reported, got %q", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
