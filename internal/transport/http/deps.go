package http

import (
	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/application/auth"
	"github.com/jeeva2692001/mindkonnect/internal/application/user"
	"github.com/jeeva2692001/mindkonnect/internal/transport/http/middleware"
)

// Deps holds the services and infrastructure the router wires into handlers.
type Deps struct {
	Auth          auth.Service
	Profile       user.Service
	Authenticator middleware.Authenticator
	Limiter       middleware.Limiter
	Logger        *zap.Logger
}
