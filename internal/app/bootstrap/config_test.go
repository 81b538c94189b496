package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "devhub",
		MongoMaxPoolSize:  100,
		MongoMinPoolSize:  10,
		SessionKey:        "test-session-key-for-testing-only",
		SessionName:       "devhub-session",
		SessionMaxAge:     time.Hour,
		ChatMaxMessageLen: 2000,
		ChatTimezone:      "UTC",
		InviteRateLimit:   30,
		InviteRateWindow:  time.Minute,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, "invalid MongoDB URI"},
		{"no database", func(c *AppConfig) { c.MongoDatabase = "" }, "mongo_database"},
		{"pool sizes inverted", func(c *AppConfig) { c.MongoMinPoolSize = 200 }, "mongo_min_pool_size"},
		{"short jwt secret", func(c *AppConfig) { c.JWTSecret = "short" }, "jwt_secret"},
		{"long jwt secret", func(c *AppConfig) { c.JWTSecret = strings.Repeat("k", 32) }, ""},
		{"unknown timezone", func(c *AppConfig) { c.ChatTimezone = "Mars/Olympus_Mons" }, "chat_timezone"},
		{"named timezone", func(c *AppConfig) { c.ChatTimezone = "America/New_York" }, ""},
		{"negative message len", func(c *AppConfig) { c.ChatMaxMessageLen = -1 }, "chat_max_message_len"},
		{"rate limit without window", func(c *AppConfig) { c.InviteRateWindow = 0 }, "invite_rate_window"},
		{"rate limit disabled", func(c *AppConfig) { c.InviteRateLimit = 0; c.InviteRateWindow = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(&config.CoreConfig{}, cfg, zap.NewNop())
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tt.wantErr != "" && err == nil:
				t.Errorf("expected error containing %q", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
