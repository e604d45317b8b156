package httpx

import (
	"errors"
	"net/http"

	"github.com/menuforge/menuforge/internal/shared"
)

// ErrValidation marks malformed or invalid request payloads.
var ErrValidation = errors.New("validation failed")

// RespondError maps domain errors to HTTP responses using RFC7807. Internal
// details (failed cascade steps, storage errors) never reach the client; the
// operator reads those from the logs.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrMissingCredential), errors.Is(err, shared.ErrInvalidCredential):
		Problem(w, http.StatusUnauthorized, "Unauthorized", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrPermissionDenied), errors.Is(err, shared.ErrOwnAccount):
		Problem(w, http.StatusForbidden, "Forbidden", shared.UserSafeMessage(err))
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInvalidRole):
		Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
	}
}
