// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	"github.com/dalemusser/devhub/internal/app/chat"
	"github.com/dalemusser/devhub/internal/app/directory"
	authgooglefeature "github.com/dalemusser/devhub/internal/app/features/authgoogle"
	apierrors "github.com/dalemusser/devhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/devhub/internal/app/features/health"
	logoutfeature "github.com/dalemusser/devhub/internal/app/features/logout"
	teamchatfeature "github.com/dalemusser/devhub/internal/app/features/teamchat"
	teamsfeature "github.com/dalemusser/devhub/internal/app/features/teams"
	userinfofeature "github.com/dalemusser/devhub/internal/app/features/userinfo"
	"github.com/dalemusser/devhub/internal/app/invitations"
	"github.com/dalemusser/devhub/internal/app/resolver"
	messagestore "github.com/dalemusser/devhub/internal/app/store/messages"
	"github.com/dalemusser/devhub/internal/app/store/oauthstate"
	teamstore "github.com/dalemusser/devhub/internal/app/store/teams"
	userstore "github.com/dalemusser/devhub/internal/app/store/users"
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. The session manager and bearer-token
// verifier form the identity boundary; every route except /health,
// /metrics and /auth/* needs a principal.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r0 := currentRuntime()
	if r0 == nil {
		return nil, errors.New("bootstrap: Startup has not run")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	if appCfg.JWTSecret != "" {
		verifier, err := auth.NewTokenVerifier(appCfg.JWTSecret, appCfg.JWTIssuer)
		if err != nil {
			return nil, err
		}
		sessionMgr.SetTokenVerifier(verifier)
	}

	db := deps.MongoDatabase
	teams := teamstore.New(db)
	users := userstore.New(db)
	messages := messagestore.New(db)

	dirSvc := directory.NewService(teams, users, r0.metrics, logger)
	inviteSvc := invitations.NewService(teams, users, r0.metrics, logger)
	res := resolver.New(users, r0.metrics)
	chatSvc := chat.NewService(teams, messages, r0.hub, appCfg.ChatMaxMessageLen, r0.metrics, logger)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(sessionMgr.LoadPrincipal)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.WriteError(w, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", metrics.Handler(r0.registry))

	// Authentication
	googleHandler := authgooglefeature.NewHandler(sessionMgr, oauthstate.New(db), users,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

	// Signed-in API
	r.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)
		userinfofeature.MountRoutes(pr, userinfofeature.NewHandler(users, logger))
	})

	teamsHandler := teamsfeature.NewHandler(dirSvc, inviteSvc, res, logger)
	teamsRouter := teamsfeature.Routes(teamsHandler, sessionMgr, r0.inviteLimiter)

	chatHandler := teamchatfeature.NewHandler(chatSvc, res, r0.location, appCfg.BaseURL, logger)
	teamsRouter.Mount("/{id}/messages", teamchatfeature.Routes(chatHandler, sessionMgr))

	r.Mount("/teams", teamsRouter)

	return r, nil
}
