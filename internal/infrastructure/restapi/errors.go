package restapi

import (
	"context"
	"errors"
	"net/http"

	"basebridge/internal/domain/entity"
)

// statusFor maps a session operation error to an HTTP status. Input errors
// are checked before ErrTransferFailed, which wraps them.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrActionInFlight):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInvalidRecipient),
		errors.Is(err, entity.ErrInvalidAmount),
		errors.Is(err, entity.ErrInvalidTransferMode),
		errors.Is(err, entity.ErrInvalidSettings),
		errors.Is(err, entity.ErrWalletNotConnected):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, entity.ErrProviderRequestFailed),
		errors.Is(err, entity.ErrTransferFailed),
		errors.Is(err, entity.ErrRateFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
