// Package session mints, refreshes and revokes access/refresh token pairs.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
	jwtinfra "github.com/jeeva2692001/mindkonnect/internal/infrastructure/jwt"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/logger"
)

// TokenSigner signs and verifies JWTs.
type TokenSigner interface {
	Sign(userID string, typ jwtinfra.TokenType) (string, *jwtinfra.Claims, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

// Blacklist is the revocation set of refresh-token ids.
type Blacklist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	Contains(ctx context.Context, jti string) (bool, error)
}

// RevokeOutcome reports what Revoke did with a presented token.
type RevokeOutcome int

const (
	Revoked RevokeOutcome = iota
	AlreadyRevoked
	Expired
	Invalid
)

func (o RevokeOutcome) String() string {
	switch o {
	case Revoked:
		return "revoked"
	case AlreadyRevoked:
		return "already_revoked"
	case Expired:
		return "expired"
	default:
		return "invalid"
	}
}

type ServiceDeps struct {
	Signer    TokenSigner
	Blacklist Blacklist
	Logger    *zap.Logger
	Now       func() time.Time
}

// Issuer is the session token state machine. Access tokens are stateless;
// refresh tokens are single-use and revocable through the blacklist.
type Issuer struct {
	signer    TokenSigner
	blacklist Blacklist
	log       *zap.Logger
	now       func() time.Time
}

func NewIssuer(d ServiceDeps) *Issuer {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Issuer{
		signer:    d.Signer,
		blacklist: d.Blacklist,
		log:       logger.OrNop(d.Logger),
		now:       d.Now,
	}
}

// Issue mints a fresh access/refresh pair for userID.
func (s *Issuer) Issue(_ context.Context, userID string) (*domain.TokenPair, error) {
	access, ac, err := s.signer.Sign(userID, jwtinfra.TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, rc, err := s.signer.Sign(userID, jwtinfra.TokenRefresh)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		UserID:           userID,
		Access:           access,
		Refresh:          refresh,
		IssuedAt:         ac.IssuedAt.Time,
		AccessExpiresAt:  ac.ExpiresAt.Time,
		RefreshExpiresAt: rc.ExpiresAt.Time,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. Blacklisted tokens are
// rejected and the presented token is blacklisted on success, so each refresh
// token mints at most one pair. The new pair is signed before rotating, so a
// signing failure leaves the presented token usable.
func (s *Issuer) Refresh(ctx context.Context, token string) (*domain.TokenPair, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", domain.ErrInvalidToken)
	}
	if claims.TokenType != jwtinfra.TokenRefresh {
		return nil, fmt.Errorf("refresh with %s token: %w", claims.TokenType, domain.ErrInvalidToken)
	}

	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if revoked {
		s.log.Warn("revoked refresh token presented",
			zap.String("user_id", claims.UserID), zap.String("jti", claims.ID))
		return nil, fmt.Errorf("refresh: %w", domain.ErrInvalidToken)
	}

	pair, err := s.Issue(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	// Rotate. Add only succeeds for one of several concurrent refreshes; the
	// losers drop their unreturned pair.
	added, err := s.blacklist.Add(ctx, claims.ID, s.remaining(claims))
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !added {
		return nil, fmt.Errorf("refresh raced: %w", domain.ErrInvalidToken)
	}
	return pair, nil
}

// Revoke blacklists a refresh token until it would have expired. Tokens that
// are already revoked, expired or unreadable are logged and reported through
// the outcome; they are not errors.
func (s *Issuer) Revoke(ctx context.Context, token string) (RevokeOutcome, *jwtinfra.Claims, error) {
	claims, err := s.signer.Verify(token)
	switch {
	case errors.Is(err, jwtinfra.ErrTokenExpired):
		s.log.Info("revoke: token already expired", zap.String("user_id", claims.UserID))
		return Expired, claims, nil
	case err != nil:
		s.log.Warn("revoke: unreadable token", zap.Error(err))
		return Invalid, nil, nil
	case claims.TokenType != jwtinfra.TokenRefresh:
		s.log.Warn("revoke: not a refresh token",
			zap.String("user_id", claims.UserID), zap.String("token_type", string(claims.TokenType)))
		return Invalid, claims, nil
	}

	added, err := s.blacklist.Add(ctx, claims.ID, s.remaining(claims))
	if err != nil {
		return Invalid, claims, fmt.Errorf("revoke: %w", err)
	}
	if !added {
		s.log.Info("revoke: token already revoked",
			zap.String("user_id", claims.UserID), zap.String("jti", claims.ID))
		return AlreadyRevoked, claims, nil
	}
	return Revoked, claims, nil
}

// Authenticate verifies a bearer access token. Refresh tokens are rejected.
func (s *Issuer) Authenticate(token string) (*jwtinfra.Claims, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", domain.ErrUnauthorized)
	}
	if claims.TokenType != jwtinfra.TokenAccess {
		return nil, fmt.Errorf("authenticate with %s token: %w", claims.TokenType, domain.ErrUnauthorized)
	}
	return claims, nil
}

// Subject returns the user id of an authentic token, expired or not, or ""
// when the token cannot be attributed.
func (s *Issuer) Subject(token string) string {
	claims, err := s.signer.Verify(token)
	if err != nil && !errors.Is(err, jwtinfra.ErrTokenExpired) {
		return ""
	}
	return claims.UserID
}

func (s *Issuer) remaining(c *jwtinfra.Claims) time.Duration {
	if c.ExpiresAt == nil {
		return time.Second
	}
	return c.ExpiresAt.Sub(s.now())
}
