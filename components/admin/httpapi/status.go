package httpapi

import (
	"errors"
	"net/http"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/components/admin/commands"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// StatusFor maps a command error to an HTTP status.
func StatusFor(err error) int {
	var reqErr *tuvibe.RequestError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, admin.ErrUnknownScreen):
		return http.StatusNotFound
	case errors.Is(err, admin.ErrUnsupportedAction), errors.Is(err, commands.ErrMissingID):
		return http.StatusBadRequest
	case errors.Is(err, admin.ErrNotConfirmed), errors.Is(err, admin.ErrActionInFlight):
		return http.StatusConflict
	case errors.Is(err, tuvibe.ErrMissingCredential):
		return http.StatusUnauthorized
	case tuvibe.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &reqErr):
		if reqErr.Kind == tuvibe.KindRejected && reqErr.Status >= 400 && reqErr.Status < 500 {
			return reqErr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON body written for failed requests.
func ErrorBody(err error) map[string]string {
	return map[string]string{"error": tuvibe.Message(err)}
}
