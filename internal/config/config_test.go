package config

import (
	"os"
	"testing"
)

// unset clears a variable for the test and restores it afterwards.
func unset(t *testing.T, name string) {
	t.Helper()
	t.Setenv(name, "")
	os.Unsetenv(name)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"BOT_TOKEN", "ADMIN_USERNAME", "ADMIN_CONTACT", "AUDITS_FILE",
		"DATABASE_URL", "PORT", "DEBUG", "FOLLOW_UP_DELAY_HOURS",
	} {
		unset(t, name)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.TelegramToken != "123:abc" {
		t.Errorf("TelegramToken = %q", cfg.TelegramToken)
	}
	if cfg.AdminUsername != "" {
		t.Errorf("AdminUsername should default to empty, got %q", cfg.AdminUsername)
	}
	if cfg.AdminContact != "@KamilTGMarketer" {
		t.Errorf("AdminContact = %q", cfg.AdminContact)
	}
	if cfg.AuditsPath != "audits.json" {
		t.Errorf("AuditsPath = %q", cfg.AuditsPath)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.FollowUpDelayHours != 48 {
		t.Errorf("FollowUpDelayHours = %d", cfg.FollowUpDelayHours)
	}
}

func TestFromEnv_MissingTokenFails(t *testing.T) {
	clearEnv(t)

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error without BOT_TOKEN")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_USERNAME", "@KamilTGMarketer")
	t.Setenv("AUDITS_FILE", "/data/audits.json")
	t.Setenv("DATABASE_URL", "postgres://localhost/audits")
	t.Setenv("PORT", "9090")
	t.Setenv("FOLLOW_UP_DELAY_HOURS", "2")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.AdminUsername != "@KamilTGMarketer" {
		t.Errorf("AdminUsername = %q", cfg.AdminUsername)
	}
	if cfg.AuditsPath != "/data/audits.json" {
		t.Errorf("AuditsPath = %q", cfg.AuditsPath)
	}
	if cfg.DBConnString != "postgres://localhost/audits" {
		t.Errorf("DBConnString = %q", cfg.DBConnString)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.FollowUpDelayHours != 2 {
		t.Errorf("FollowUpDelayHours = %d", cfg.FollowUpDelayHours)
	}
}

func TestFromEnv_InvalidFollowUpDelayFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("FOLLOW_UP_DELAY_HOURS", "soon")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("an unparseable delay must not fail startup: %v", err)
	}
	if cfg.FollowUpDelayHours != 48 {
		t.Errorf("FollowUpDelayHours = %d, want the default 48", cfg.FollowUpDelayHours)
	}
}
