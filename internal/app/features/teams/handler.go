// internal/app/features/teams/handler.go
package teams

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/devhub/internal/app/directory"
	"github.com/dalemusser/devhub/internal/app/invitations"
	"github.com/dalemusser/devhub/internal/app/resolver"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// Handler is the shared dependency container for the team directory and
// invitation endpoints.
type Handler struct {
	Directory *directory.Service
	Invites   *invitations.Service
	Resolver  *resolver.Resolver
	Log       *zap.Logger
}

// NewHandler constructs a teams Handler. It is called from the bootstrap
// BuildHandler function once the services are built.
func NewHandler(dir *directory.Service, inv *invitations.Service, res *resolver.Resolver, logger *zap.Logger) *Handler {
	return &Handler{
		Directory: dir,
		Invites:   inv,
		Resolver:  res,
		Log:       logger,
	}
}

// decode reads a JSON body into v. It reports false after answering 400.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeBadRequest(w, "request body must be a JSON object")
		return false
	}
	return true
}
