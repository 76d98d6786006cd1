package domain

import "time"

// Action identifies a security-relevant transition recorded in the activity log.
type Action string

const (
	ActionOTPRequest      Action = "otp_request"
	ActionOTPFailed       Action = "otp_failed"
	ActionLoginSuccess    Action = "login_success"
	ActionRegisterSuccess Action = "register_success"
	ActionLogoutSuccess   Action = "logout_success"
	ActionLogoutFailed    Action = "logout_failed"
	ActionRefreshFailed   Action = "refresh_failed"
	ActionProfileUpdate   Action = "profile_update"
)

// Security reports whether the action is a failure worth alerting on.
func (a Action) Security() bool {
	switch a {
	case ActionOTPFailed, ActionLogoutFailed, ActionRefreshFailed:
		return true
	}
	return false
}

// ActivityLog is an append-only audit entry.
// PK: user_id, SK: log_id (ULID, so lexical order is time order).
type ActivityLog struct {
	LogID     string    `json:"-" dynamodbav:"log_id"`
	UserID    string    `json:"-" dynamodbav:"user_id"`
	Action    Action    `json:"action" dynamodbav:"action"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
	IPAddress string    `json:"ip_address" dynamodbav:"ip_address"`
	Details   string    `json:"details" dynamodbav:"details"`
}

// MaxActivityPage caps how many entries a single listing returns.
const MaxActivityPage = 50
