package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// TokenEnvelope wraps a freshly minted token pair.
type TokenEnvelope struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ExistsEnvelope answers check-email, and verify-otp for unknown identities.
type ExistsEnvelope struct {
	Exists  bool   `json:"exists"`
	Access  string `json:"access,omitempty"`
	Refresh string `json:"refresh,omitempty"`
}

// ProfileEnvelope wraps the result of a profile update.
type ProfileEnvelope struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

func tokens(p *domain.TokenPair) TokenEnvelope {
	return TokenEnvelope{Access: p.Access, Refresh: p.Refresh}
}
