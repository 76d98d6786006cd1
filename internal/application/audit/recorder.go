// Package audit records security-relevant transitions to the activity log.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/id"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/logger"
)

// Audit detail strings recorded with each action.
const (
	DetailOTPRequested      = "OTP requested for login"
	DetailOTPExpired        = "OTP expired or invalid"
	DetailOTPMismatch       = "Invalid OTP"
	DetailLoginSuccess      = "User logged in successfully"
	DetailRegisterSuccess   = "User registered successfully"
	DetailLogoutSuccess     = "User logged out successfully"
	DetailProfileUpdate     = "User updated profile"
	DetailLogoutInvalid     = "Logout with invalid token"
	DetailLogoutForeignUser = "Logout with token of another user"
	DetailRefreshFailed     = "Refresh token rejected"
	DetailTokenRevoked      = "Refresh token revoked"
)

// LogStore persists activity-log entries.
type LogStore interface {
	Append(ctx context.Context, entry *domain.ActivityLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error)
}

// EventPublisher forwards security events to an external channel.
type EventPublisher interface {
	Publish(ctx context.Context, entry *domain.ActivityLog) error
}

type ServiceDeps struct {
	Store     LogStore
	Publisher EventPublisher // optional
	Logger    *zap.Logger
	Now       func() time.Time
}

// Recorder appends activity-log entries. Recording never fails the caller's
// request; errors are logged and swallowed.
type Recorder struct {
	store     LogStore
	publisher EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewRecorder(d ServiceDeps) *Recorder {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Recorder{
		store:     d.Store,
		publisher: d.Publisher,
		log:       logger.OrNop(d.Logger),
		now:       d.Now,
	}
}

// Record appends an entry for userID. An empty userID means the identity
// could not be resolved: the event is logged and published but not stored.
func (r *Recorder) Record(ctx context.Context, userID string, action domain.Action, ip, details string) {
	ts := r.now().UTC()
	entry := &domain.ActivityLog{
		LogID:     id.NewAt(ts),
		UserID:    userID,
		Action:    action,
		Timestamp: ts,
		IPAddress: ip,
		Details:   details,
	}
	fields := []zap.Field{
		zap.String("user_id", userID),
		zap.String("action", string(action)),
		zap.String("ip", ip),
	}

	if userID != "" {
		if err := r.store.Append(ctx, entry); err != nil {
			r.log.Error("audit append failed", append(fields, zap.Error(err))...)
		}
	}
	if action.Security() {
		r.log.Warn("security event", append(fields, zap.String("details", details))...)
		if r.publisher != nil {
			if err := r.publisher.Publish(ctx, entry); err != nil {
				r.log.Error("security event publish failed", append(fields, zap.Error(err))...)
			}
		}
	}
}

// List returns up to limit entries for userID, newest first. limit is
// clamped to domain.MaxActivityPage.
func (r *Recorder) List(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 || limit > domain.MaxActivityPage {
		limit = domain.MaxActivityPage
	}
	return r.store.ListByUser(ctx, userID, limit)
}
