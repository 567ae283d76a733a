package httpx

import (
	"errors"
	"net/http"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

// RespondError maps domain errors to HTTP error envelopes.
func RespondError(w http.ResponseWriter, err error) {
	var denial *shared.PermissionError
	if errors.As(err, &denial) {
		Forbidden(w, denial.Reason)
		return
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrDuplicate):
		Error(w, http.StatusConflict, "Conflict", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrValidation):
		Error(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "Unauthorized", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrUnauthenticated):
		Unauthorized(w)
	default:
		Error(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
