package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("unexpected default port: %q", cfg.Port)
	}
	if cfg.MongoDatabase != "draftpress" {
		t.Errorf("unexpected default database: %q", cfg.MongoDatabase)
	}
	if cfg.SchedulerInterval != 5*time.Minute {
		t.Errorf("unexpected scheduler interval: %v", cfg.SchedulerInterval)
	}
	if cfg.MaxPending != 15 || cfg.BatchMaxPending != 8 || cfg.BatchMaxTopics != 10 {
		t.Errorf("unexpected pipeline limits: %d/%d/%d", cfg.MaxPending, cfg.BatchMaxPending, cfg.BatchMaxTopics)
	}
	if cfg.DuplicateWindowHours != 72 {
		t.Errorf("unexpected duplicate window: %d", cfg.DuplicateWindowHours)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SCHEDULER_INTERVAL", "90s")
	t.Setenv("AI_TEMPERATURE", "0.4")
	t.Setenv("MAX_PENDING_SUGGESTIONS", "5")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("PORT override ignored: %q", cfg.Port)
	}
	if cfg.SchedulerInterval != 90*time.Second {
		t.Errorf("SCHEDULER_INTERVAL override ignored: %v", cfg.SchedulerInterval)
	}
	if cfg.AITemperature != 0.4 {
		t.Errorf("AI_TEMPERATURE override ignored: %v", cfg.AITemperature)
	}
	if cfg.MaxPending != 5 {
		t.Errorf("MAX_PENDING_SUGGESTIONS override ignored: %d", cfg.MaxPending)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("AI_MAX_TOKENS", "not-a-number")
	t.Setenv("MONGO_TIMEOUT", "soon")

	cfg := Load()

	if cfg.AIMaxTokens != 4000 {
		t.Errorf("invalid int must fall back to default, got %d", cfg.AIMaxTokens)
	}
	if cfg.MongoTimeout != 10*time.Second {
		t.Errorf("invalid duration must fall back to default, got %v", cfg.MongoTimeout)
	}
}

func TestValidateProductionRequiresAdminKey(t *testing.T) {
	cfg := &Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Error("production without admin API key must fail validation")
	}

	cfg.AdminAPIKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
