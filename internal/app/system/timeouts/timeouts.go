// Package timeouts holds the deadlines HTTP handlers and workers put on
// store calls. The core services never set their own deadlines; the
// caller's context decides.
//
//   - Ping: health checks
//   - Read: single-document reads and small lookups (team by id, user by email)
//   - Write: single-document mutations (create team, invite, send)
//   - List: multi-query reads (visible teams plus member summaries)
//   - Snapshot: reloading a channel's ordered message list for a subscriber
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing     = 2 * time.Second
	DefaultRead     = 5 * time.Second
	DefaultWrite    = 5 * time.Second
	DefaultList     = 10 * time.Second
	DefaultSnapshot = 10 * time.Second
)

var mu sync.RWMutex

var (
	ping     = DefaultPing
	read     = DefaultRead
	write    = DefaultWrite
	list     = DefaultList
	snapshot = DefaultSnapshot
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Read returns the timeout for single-document reads.
func Read() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return read
}

// Write returns the timeout for single-document mutations.
func Write() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return write
}

// List returns the timeout for reads that span several queries.
func List() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return list
}

// Snapshot returns the timeout for one subscriber snapshot reload.
func Snapshot() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return snapshot
}

// Config holds timeout values. Zero values keep the current setting.
type Config struct {
	Ping     time.Duration
	Read     time.Duration
	Write    time.Duration
	List     time.Duration
	Snapshot time.Duration
}

// Configure overrides timeouts. Call during startup, before the handler
// is built.
//
//	timeouts.Configure(timeouts.Config{Read: appCfg.StoreTimeoutRead})
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Read > 0 {
		read = cfg.Read
	}
	if cfg.Write > 0 {
		write = cfg.Write
	}
	if cfg.List > 0 {
		list = cfg.List
	}
	if cfg.Snapshot > 0 {
		snapshot = cfg.Snapshot
	}
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	read = DefaultRead
	write = DefaultWrite
	list = DefaultList
	snapshot = DefaultSnapshot
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:     ping,
		Read:     read,
		Write:    write,
		List:     list,
		Snapshot: snapshot,
	}
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was the reason the context ended.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.List(), h.Log, "list visible teams")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
