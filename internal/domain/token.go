package domain

import "time"

// TokenPair is what a successful login, registration or refresh hands back.
type TokenPair struct {
	UserID           string
	Access           string
	Refresh          string
	IssuedAt         time.Time
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// RequestMeta carries per-request facts the flows need for auditing.
type RequestMeta struct {
	IP string
}
