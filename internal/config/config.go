package config

import (
	"os"
	"strconv"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const defaultFollowUpDelayHours = 48

// Config holds runtime configuration loaded from the environment.
type Config struct {
	TelegramToken string `env:"BOT_TOKEN,required"`

	// AdminUsername gates the admin surface. Empty means admin access is
	// always denied (fail closed).
	AdminUsername string `env:"ADMIN_USERNAME"`

	// AdminContact receives a notification for every new audit request.
	AdminContact string `env:"ADMIN_CONTACT" envDefault:"@KamilTGMarketer"`

	// AuditsPath is the JSON file used by the file-backed request store.
	// DATABASE_URL, when set, switches the store to Postgres instead.
	AuditsPath   string `env:"AUDITS_FILE" envDefault:"audits.json"`
	DBConnString string `env:"DATABASE_URL"`

	HTTPPort int  `env:"PORT" envDefault:"8080"`
	Debug    bool `env:"DEBUG" envDefault:"false"`

	// Parsed separately: an unparseable value falls back to the default
	// with a warning instead of failing startup.
	FollowUpDelayHours int `env:"-"`
}

// FromEnv loads configuration from a .env file (if present) and the
// environment. BOT_TOKEN is required; everything else has a default.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.FollowUpDelayHours = intEnv("FOLLOW_UP_DELAY_HOURS", defaultFollowUpDelayHours)
	return c, nil
}

// intEnv reads an integer variable, falling back to def on missing or
// invalid values. Invalid values are logged once, never fatal.
func intEnv(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("var", name).Str("value", raw).Int("default", def).
			Msg("invalid integer value, falling back to default")
		return def
	}
	return v
}
