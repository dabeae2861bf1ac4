package http

import (
	"errors"
	"net/http"

	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
)

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownInstruction):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrMissingSigner):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrAddressCollision):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrPollIDMismatch),
		errors.Is(err, domain.ErrAddressMismatch),
		errors.Is(err, domain.ErrAccountDiscriminatorMismatch),
		errors.Is(err, domain.ErrAccountOwnedByWrongProgram),
		errors.Is(err, domain.ErrAccountDidNotDeserialize),
		errors.Is(err, domain.ErrArithmeticOverflow):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrLedgerConflict):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
