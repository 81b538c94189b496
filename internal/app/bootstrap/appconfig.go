// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration (ports, TLS, log level).
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: devhub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Bearer tokens for API and websocket clients. Disabled when JWTSecret is empty.
	JWTSecret string
	JWTIssuer string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Public URL of this service; OAuth callbacks and websocket origin checks use it.
	BaseURL string

	// Chat
	ChatMaxMessageLen int
	ChatTimezone      string // IANA name used for day grouping and time labels
	ChangeStreams     bool   // fan out message inserts from other instances

	// Invite throttling
	InviteRateLimit  int
	InviteRateWindow time.Duration

	// Store deadlines applied by handlers
	StoreTimeoutRead     time.Duration
	StoreTimeoutWrite    time.Duration
	StoreTimeoutList     time.Duration
	StoreTimeoutSnapshot time.Duration
}
