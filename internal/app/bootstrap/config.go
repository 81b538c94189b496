// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minJWTSecretLen is the shortest accepted HMAC secret.
const minJWTSecretLen = 32

// appConfigKeys defines the configuration keys for devhub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: DEVHUB_MONGO_URI, DEVHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "devhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "devhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: "", Desc: "HMAC secret for bearer tokens (blank disables bearer auth)"},
	{Name: "jwt_issuer", Default: "devhub", Desc: "Expected issuer of bearer tokens"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL (OAuth callback, websocket origin)"},

	// Chat
	{Name: "chat_max_message_len", Default: 2000, Desc: "Maximum message length in characters"},
	{Name: "chat_timezone", Default: "UTC", Desc: "IANA timezone for day grouping and time labels"},
	{Name: "change_streams", Default: true, Desc: "Watch message inserts so every instance pushes updates (needs a replica set)"},

	// Invite throttling
	{Name: "invite_rate_limit", Default: 30, Desc: "Invites allowed per user per window (0 disables)"},
	{Name: "invite_rate_window", Default: "1m", Desc: "Invite rate-limit window"},

	// Store deadlines
	{Name: "store_timeout_read", Default: "5s", Desc: "Deadline for single-document reads"},
	{Name: "store_timeout_write", Default: "5s", Desc: "Deadline for single-document writes"},
	{Name: "store_timeout_list", Default: "10s", Desc: "Deadline for multi-query reads"},
	{Name: "store_timeout_snapshot", Default: "10s", Desc: "Deadline for one chat snapshot reload"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, DEVHUB_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "DEVHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		BaseURL: appValues.String("base_url"),

		ChatMaxMessageLen: appValues.Int("chat_max_message_len"),
		ChatTimezone:      appValues.String("chat_timezone"),
		ChangeStreams:     appValues.Bool("change_streams"),

		InviteRateLimit:  appValues.Int("invite_rate_limit"),
		InviteRateWindow: appValues.Duration("invite_rate_window", time.Minute),

		StoreTimeoutRead:     appValues.Duration("store_timeout_read", 5*time.Second),
		StoreTimeoutWrite:    appValues.Duration("store_timeout_write", 5*time.Second),
		StoreTimeoutList:     appValues.Duration("store_timeout_list", 10*time.Second),
		StoreTimeoutSnapshot: appValues.Duration("store_timeout_snapshot", 10*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if appCfg.JWTSecret != "" && len(appCfg.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("jwt_secret must be at least %d characters", minJWTSecretLen)
	}
	if _, err := time.LoadLocation(appCfg.ChatTimezone); err != nil {
		return fmt.Errorf("invalid chat_timezone %q: %w", appCfg.ChatTimezone, err)
	}
	if appCfg.ChatMaxMessageLen < 0 {
		return fmt.Errorf("chat_max_message_len must not be negative")
	}
	if appCfg.InviteRateLimit < 0 {
		return fmt.Errorf("invite_rate_limit must not be negative")
	}
	if appCfg.InviteRateLimit > 0 && appCfg.InviteRateWindow <= 0 {
		return fmt.Errorf("invite_rate_window must be positive when invite_rate_limit is set")
	}
	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		logger.Warn("Google OAuth is half configured; sign-in is disabled until both client id and secret are set")
	}
	return nil
}
