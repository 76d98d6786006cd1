package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/application/auth"
	"github.com/jeeva2692001/mindkonnect/internal/domain"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/logger"
	"github.com/jeeva2692001/mindkonnect/internal/transport/http/middleware"
)

// AuthHandler handles the public login flows plus logout.
type AuthHandler struct {
	svc auth.Service
	log *zap.Logger
}

func NewAuthHandler(svc auth.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: logger.OrNop(log)}
}

func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req auth.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	exists, err := h.svc.CheckEmail(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, msgInvalidBody)
		return
	}
	writeJSON(w, http.StatusOK, ExistsEnvelope{Exists: exists})
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.SendOTP(r.Context(), req, meta(r)); err != nil {
		writeServiceError(w, h.log, err, msgInvalidBody)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent successfully"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyOTP(r.Context(), req, meta(r))
	if err != nil {
		writeServiceError(w, h.log, err, msgInvalidOTP)
		return
	}
	out := ExistsEnvelope{Exists: res.Exists}
	if res.Tokens != nil {
		out.Access, out.Refresh = res.Tokens.Access, res.Tokens.Refresh
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	pair, err := h.svc.Register(r.Context(), req, meta(r))
	if err != nil {
		writeServiceError(w, h.log, err, msgInvalidBody)
		return
	}
	writeJSON(w, http.StatusCreated, tokens(pair))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req auth.TokenRequest
	if !decode(w, r, &req) {
		return
	}
	pair, err := h.svc.Refresh(r.Context(), req, meta(r))
	if err != nil {
		writeServiceError(w, h.log, err, msgInvalidRefresh)
		return
	}
	writeJSON(w, http.StatusOK, tokens(pair))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req auth.TokenRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Logout(r.Context(), claims.UserID, req, meta(r)); err != nil {
		writeServiceError(w, h.log, err, msgInvalidToken)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Logout successful"})
}

// BlacklistToken revokes a refresh token without requiring an access token.
func (h *AuthHandler) BlacklistToken(w http.ResponseWriter, r *http.Request) {
	var req auth.TokenRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RevokeToken(r.Context(), req, meta(r)); err != nil {
		writeServiceError(w, h.log, err, msgInvalidToken)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Token blacklisted"})
}

// decode reads a JSON body into v, writing a 400 on malformed input.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

func meta(r *http.Request) domain.RequestMeta {
	return domain.RequestMeta{IP: middleware.ClientIPFromContext(r.Context())}
}
