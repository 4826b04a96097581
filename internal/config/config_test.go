package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL_MINUTES", "")
	t.Setenv("REMEMBER_ME_TTL_MINUTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != "8090" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.SessionTTL != 1440*time.Minute {
		t.Fatalf("unexpected session ttl: %s", cfg.SessionTTL)
	}
	if cfg.RememberMeTTL != 10080*time.Minute {
		t.Fatalf("unexpected remember-me ttl: %s", cfg.RememberMeTTL)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("unexpected rate limit: %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TTL_MINUTES", "30")
	t.Setenv("REMEMBER_ME_TTL_MINUTES", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("unexpected session ttl: %s", cfg.SessionTTL)
	}
	if cfg.RememberMeTTL != 2*time.Hour {
		t.Fatalf("unexpected remember-me ttl: %s", cfg.RememberMeTTL)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a bad port")
	}
}

func TestMinutesIgnoresNonPositive(t *testing.T) {
	t.Setenv("SOME_TTL_MINUTES", "-5")
	if got := Minutes("SOME_TTL_MINUTES", 60); got != time.Hour {
		t.Fatalf("expected fallback, got %s", got)
	}
}
