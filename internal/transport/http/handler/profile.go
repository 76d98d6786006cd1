package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/application/user"
	"github.com/jeeva2692001/mindkonnect/internal/domain"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/logger"
	"github.com/jeeva2692001/mindkonnect/internal/transport/http/middleware"
)

// ProfileHandler handles the authenticated profile endpoints.
type ProfileHandler struct {
	svc user.Service
	log *zap.Logger
}

func NewProfileHandler(svc user.Service, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, log: logger.OrNop(log)}
}

func (h *ProfileHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := subject(w, r)
	if !ok {
		return
	}
	u, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, msgInvalidToken)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := subject(w, r)
	if !ok {
		return
	}
	var req domain.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), userID, req, meta(r))
	if err != nil {
		writeServiceError(w, h.log, err, msgInvalidToken)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{Message: "Profile updated successfully", User: u})
}

func (h *ProfileHandler) ActivityLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := subject(w, r)
	if !ok {
		return
	}
	logs, err := h.svc.ListActivity(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, msgInvalidToken)
		return
	}
	if logs == nil {
		logs = []domain.ActivityLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func subject(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return claims.UserID, true
}
