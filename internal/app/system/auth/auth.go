// internal/app/system/auth/auth.go
// Package auth is the boundary to the external identity provider. It turns
// a session cookie or a bearer token into a Principal in the request
// context. The core services trust that Principal as-is.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Principal                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// Principal is the already-authenticated caller.
type Principal struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photo_url"`
}

type ctxKey string

const principalKey ctxKey = "principal"

// WithContext returns ctx carrying p.
func WithContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.ID != ""
}

// CurrentPrincipal returns the principal of the request and a found flag.
func CurrentPrincipal(r *http.Request) (Principal, bool) {
	return FromContext(r.Context())
}

// WithPrincipal returns r with p in its context. Handlers under test use
// it to skip the session middleware.
func WithPrincipal(r *http.Request, p Principal) *http.Request {
	return r.WithContext(WithContext(r.Context(), p))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey   = "is_authenticated"
	userIDKey   = "user_id"
	userNameKey = "user_name"
	emailKey    = "user_email"
	photoKey    = "user_photo"
)

// SessionManager owns the cookie store and the optional bearer-token
// verifier.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	tokens *TokenVerifier
	log    *zap.Logger
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are Secure + SameSite=None; over plain http in dev they are Lax.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		return nil, errors.New("session name is empty")
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetTokenVerifier enables "Authorization: Bearer" principals.
func (sm *SessionManager) SetTokenVerifier(v *TokenVerifier) {
	sm.tokens = v
}

// Store exposes the underlying cookie store.
func (sm *SessionManager) Store() *sessions.CookieStore {
	return sm.store
}

// GetSession returns the named session. On a decode error a fresh session
// is still returned alongside the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// IsStaleCookie reports whether err is a cookie that failed to decode,
// typically one signed with a rotated key.
func IsStaleCookie(err error) bool {
	var scErr securecookie.Error
	return errors.As(err, &scErr) && scErr.IsDecode()
}

// SignIn records p in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, p Principal) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		if IsStaleCookie(err) {
			sm.log.Warn("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			sm.log.Error("session store error during sign-in, using fresh session", zap.Error(err))
		}
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = p.ID
	sess.Values[userNameKey] = p.DisplayName
	sess.Values[emailKey] = p.Email
	sess.Values[photoKey] = p.PhotoURL
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session decode failed during sign-out", zap.Error(err))
	}
	opts := *sm.store.Options
	opts.MaxAge = -1
	sess.Options = &opts
	return sess.Save(r, w)
}

// LoadPrincipal puts the caller's principal into the request context when
// a valid bearer token or session cookie is present. A bearer token that
// fails verification is answered with 401; a missing one is not.
func (sm *SessionManager) LoadPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := bearerToken(r); ok && sm.tokens != nil {
			p, err := sm.tokens.Verify(raw)
			if err != nil {
				sm.log.Debug("bearer token rejected", zap.Error(err))
				writeUnauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, WithPrincipal(r, p))
			return
		}

		sess, _ := sm.GetSession(r)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			p := Principal{
				ID:          getString(sess, userIDKey),
				DisplayName: getString(sess, userNameKey),
				Email:       getString(sess, emailKey),
				PhotoURL:    getString(sess, photoKey),
			}
			if p.ID != "" {
				r = WithPrincipal(r, p)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests without a principal.
//   - HTML: 303 redirect to /auth/google?return=...
//   - API:  401 Unauthorized
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentPrincipal(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		if wantsHTML(r) {
			ret := url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, "/auth/google?return="+ret, http.StatusSeeOther)
			return
		}
		writeUnauthorized(w, "sign in required")
	})
}

// helpers

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:]), true
	}
	// Browsers cannot set headers on websocket upgrades.
	if t := r.URL.Query().Get("access_token"); t != "" && isWebsocketUpgrade(r) {
		return t, true
	}
	return "", false
}

func isWebsocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

// writeUnauthorized answers 401 in the same JSON shape the API uses for
// every other error.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": "unauthorized", "message": msg},
	})
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
