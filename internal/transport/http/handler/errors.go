package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

const (
	msgInvalidBody    = "Invalid request body"
	msgInvalidOTP     = "Invalid or expired OTP"
	msgInvalidToken   = "Invalid token"
	msgInvalidRefresh = "Invalid refresh token"
	msgSendFailed     = "Failed to send OTP"
	msgInternal       = "Internal server error"
)

// writeServiceError maps a service error to its HTTP status and body.
// invalidMsg is the message used for a rejected credential.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, invalidMsg string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: ve.Message, Fields: ve.Fields})
	case errors.Is(err, domain.ErrInvalidCredential):
		writeError(w, http.StatusBadRequest, invalidMsg)
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, MessageEnvelope{
			Error:  "User with this email already exists",
			Fields: map[string]string{"email": "User with this email already exists."},
		})
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusInternalServerError, msgSendFailed)
	default:
		log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
