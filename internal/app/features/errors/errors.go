// internal/app/features/errors/errors.go
// Package errors writes API failures as JSON and maps the service error
// kinds onto HTTP status codes.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/devhub/internal/app/chat"
	teamstore "github.com/dalemusser/devhub/internal/app/store/teams"
	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Body is the error envelope: {"error":{"code":"...","message":"..."}}.
type Body struct {
	Error Detail `json:"error"`
}

type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error with an explicit status and code.
func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, Body{Error: Detail{Code: code, Message: msg}})
}

// BadRequest is a 400 for malformed requests that never reached a service.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, "bad_request", msg)
}

// Classify returns the status and code for err.
//
//	Validation          400 (403 when the cause is chat.ErrNotMember)
//	AlreadyMember       409
//	AlreadyInvited      409
//	UserNotFound        404
//	NotFound            404
//	Precondition        409 ("not_invited" when the invite is gone)
//	Store               503
//	anything else       500
func Classify(err error) (status int, code string) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		if stderrors.Is(err, chat.ErrNotMember) {
			return http.StatusForbidden, "not_member"
		}
		return http.StatusBadRequest, "validation"
	case apperr.KindAlreadyMember:
		return http.StatusConflict, "already_member"
	case apperr.KindAlreadyInvited:
		return http.StatusConflict, "already_invited"
	case apperr.KindUserNotFound:
		return http.StatusNotFound, "user_not_found"
	case apperr.KindNotFound:
		return http.StatusNotFound, "not_found"
	case apperr.KindPrecondition:
		if stderrors.Is(err, teamstore.ErrNotInvited) {
			return http.StatusConflict, "not_invited"
		}
		return http.StatusConflict, "precondition_failed"
	case apperr.KindStore:
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// Write maps err to a JSON response. Store and unclassified failures are
// logged with the request path; their causes are not sent to the client.
func Write(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, code := Classify(err)

	msg := "internal error"
	var ae *apperr.Error
	if stderrors.As(err, &ae) {
		msg = ae.Message()
	}

	if status >= 500 {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", code),
			zap.Error(err))
	}
	WriteError(w, status, code, msg)
}
