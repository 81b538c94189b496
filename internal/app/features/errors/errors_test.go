package errors_test

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/devhub/internal/app/chat"
	apierrors "github.com/dalemusser/devhub/internal/app/features/errors"
	teamstore "github.com/dalemusser/devhub/internal/app/store/teams"
	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/testutil"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperr.Validation("create team", "team name is required"), 400, "validation"},
		{"not member", apperr.Invalid("send", chat.ErrNotMember), 403, "not_member"},
		{"already member", apperr.AlreadyMember("invite", "u2"), 409, "already_member"},
		{"already invited", apperr.AlreadyInvited("invite", "u2"), 409, "already_invited"},
		{"user not found", apperr.UserNotFound("invite by email", "x@y.z"), 404, "user_not_found"},
		{"team not found", apperr.NotFound("get team", "team"), 404, "not_found"},
		{"not invited", apperr.Precondition("accept invite", teamstore.ErrNotInvited), 409, "not_invited"},
		{"store", apperr.Store("send", stderrors.New("boom")), 503, "store_unavailable"},
		{"plain", stderrors.New("surprise"), 500, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := apierrors.Classify(tt.err)
			if status != tt.status || code != tt.code {
				t.Errorf("Classify() = %d %q, want %d %q", status, code, tt.status, tt.code)
			}
		})
	}
}

func TestWrite_JSONBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/teams/x/invites", nil)

	apierrors.Write(rec, req, zap.NewNop(), apperr.AlreadyInvited("invite", "u2"))

	testutil.AssertStatus(t, rec, http.StatusConflict)
	var body apierrors.Body
	testutil.DecodeJSON(t, rec, &body)
	if body.Error.Code != "already_invited" {
		t.Errorf("code = %q", body.Error.Code)
	}
	if !strings.Contains(body.Error.Message, "u2") {
		t.Errorf("message = %q, want user id", body.Error.Message)
	}
}

func TestWrite_StoreCauseNotExposed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/teams", nil)

	apierrors.Write(rec, req, zap.NewNop(), apperr.Store("list teams", stderrors.New("dial tcp 10.1.2.3:27017")))

	testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)
	if strings.Contains(rec.Body.String(), "10.1.2.3") {
		t.Errorf("store cause leaked: %s", rec.Body.String())
	}
}
