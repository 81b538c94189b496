// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/devhub/internal/app/chat"
	"github.com/dalemusser/devhub/internal/app/store/oauthstate"
	"github.com/dalemusser/devhub/internal/app/system/metrics"
	"github.com/dalemusser/devhub/internal/app/system/ratelimit"
	"github.com/dalemusser/devhub/internal/app/system/timeouts"
	"github.com/dalemusser/devhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// stateCleanupInterval is how often expired OAuth states are swept. The
// TTL index removes them too, but only once a minute at best.
const stateCleanupInterval = 15 * time.Minute

// runtime holds the long-lived pieces built in Startup and used by
// BuildHandler and Shutdown.
type runtime struct {
	hub           *chat.Hub
	metrics       *metrics.Metrics
	registry      *prometheus.Registry
	location      *time.Location
	inviteLimiter *ratelimit.Limiter
	watcher       *workers.ChangeStreamWatcher
	stateCleanup  *workers.StateCleanup
}

var (
	rtMu sync.Mutex
	rt   *runtime
)

func currentRuntime() *runtime {
	rtMu.Lock()
	defer rtMu.Unlock()
	return rt
}

// Startup applies deadlines, registers metrics, and starts the background
// workers. It runs after the schema is in place and before the handler is
// built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Read:     appCfg.StoreTimeoutRead,
		Write:    appCfg.StoreTimeoutWrite,
		List:     appCfg.StoreTimeoutList,
		Snapshot: appCfg.StoreTimeoutSnapshot,
	})

	loc, err := time.LoadLocation(appCfg.ChatTimezone)
	if err != nil {
		return err
	}

	m := metrics.New()
	registry := prometheus.NewRegistry()
	if err := m.Register(registry); err != nil {
		return err
	}

	r := &runtime{
		hub:      chat.NewHub(),
		metrics:  m,
		registry: registry,
		location: loc,
	}

	if appCfg.InviteRateLimit > 0 {
		r.inviteLimiter = ratelimit.New(appCfg.InviteRateLimit, appCfg.InviteRateWindow)
	}

	if appCfg.ChangeStreams {
		r.watcher = workers.NewChangeStreamWatcher(deps.MongoDatabase, r.hub, logger, 0)
		r.watcher.Start()
	}

	r.stateCleanup = workers.NewStateCleanup(oauthstate.New(deps.MongoDatabase), logger, stateCleanupInterval)
	r.stateCleanup.Start()

	rtMu.Lock()
	rt = r
	rtMu.Unlock()

	logger.Info("devhub started",
		zap.String("env", coreCfg.Env),
		zap.String("chat_timezone", loc.String()),
		zap.Bool("change_streams", appCfg.ChangeStreams),
		zap.Int("invite_rate_limit", appCfg.InviteRateLimit))
	return nil
}
