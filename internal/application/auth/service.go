// Package auth implements the passwordless login flows: email check, OTP
// issue and verification, registration, token refresh and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/application/audit"
	"github.com/jeeva2692001/mindkonnect/internal/application/otp"
	"github.com/jeeva2692001/mindkonnect/internal/application/session"
	"github.com/jeeva2692001/mindkonnect/internal/domain"
	jwtinfra "github.com/jeeva2692001/mindkonnect/internal/infrastructure/jwt"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/id"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/logger"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/validate"
)

type EmailRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// TokenRequest carries a refresh token, for refresh, logout and revoke.
type TokenRequest struct {
	Refresh string `json:"refresh"`
}

// VerifyResult is the outcome of a successful OTP verification. Tokens is
// nil when no identity exists for the email yet.
type VerifyResult struct {
	Exists bool
	Tokens *domain.TokenPair
}

// --- collaborators ---

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

type OTPEngine interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) (otp.Result, error)
}

type OTPSender interface {
	SendOTP(ctx context.Context, email, code string) error
}

type Sessions interface {
	Issue(ctx context.Context, userID string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, token string) (*domain.TokenPair, error)
	Revoke(ctx context.Context, token string) (session.RevokeOutcome, *jwtinfra.Claims, error)
	Subject(token string) string
}

type Auditor interface {
	Record(ctx context.Context, userID string, action domain.Action, ip, details string)
}

type Service interface {
	CheckEmail(ctx context.Context, req EmailRequest) (bool, error)
	SendOTP(ctx context.Context, req EmailRequest, meta domain.RequestMeta) error
	VerifyOTP(ctx context.Context, req VerifyOTPRequest, meta domain.RequestMeta) (*VerifyResult, error)
	Register(ctx context.Context, req domain.RegisterRequest, meta domain.RequestMeta) (*domain.TokenPair, error)
	Refresh(ctx context.Context, req TokenRequest, meta domain.RequestMeta) (*domain.TokenPair, error)
	Logout(ctx context.Context, userID string, req TokenRequest, meta domain.RequestMeta) error
	RevokeToken(ctx context.Context, req TokenRequest, meta domain.RequestMeta) error
}

type ServiceDeps struct {
	Users    UserStore
	OTP      OTPEngine
	Sender   OTPSender
	Sessions Sessions
	Audit    Auditor
	Logger   *zap.Logger
}

type service struct {
	users    UserStore
	otp      OTPEngine
	sender   OTPSender
	sessions Sessions
	audit    Auditor
	log      *zap.Logger
}

func NewService(d ServiceDeps) Service {
	return &service{
		users:    d.Users,
		otp:      d.OTP,
		sender:   d.Sender,
		sessions: d.Sessions,
		audit:    d.Audit,
		log:      logger.OrNop(d.Logger),
	}
}

// CheckEmail reports whether an identity is registered for the email. The
// address is validated before any lookup.
func (s *service) CheckEmail(ctx context.Context, req EmailRequest) (bool, error) {
	email, err := checkEmail(req.Email)
	if err != nil {
		return false, err
	}
	u, err := s.lookup(ctx, email)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// SendOTP issues a fresh code for the email, replacing any pending one, and
// emails it. The code is stored before delivery and stays valid when
// delivery fails.
func (s *service) SendOTP(ctx context.Context, req EmailRequest, meta domain.RequestMeta) error {
	email, err := checkEmail(req.Email)
	if err != nil {
		return err
	}

	code, err := s.otp.Issue(ctx, email)
	if err != nil {
		return err
	}

	u, err := s.lookup(ctx, email)
	if err != nil {
		s.log.Warn("send-otp: user lookup failed", zap.Error(err))
	}
	if u != nil {
		s.audit.Record(ctx, u.UserID, domain.ActionOTPRequest, meta.IP, audit.DetailOTPRequested)
	}

	if err := s.sender.SendOTP(ctx, email, code); err != nil {
		s.log.Error("send-otp: delivery failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("send otp to %s: %w", email, domain.ErrDeliveryFailed)
	}
	s.log.Info("send-otp: code sent", zap.String("email", email))
	return nil
}

// VerifyOTP consumes a matching code. With an existing identity it logs the
// user in; otherwise it reports Exists=false so the client can register.
func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest, meta domain.RequestMeta) (*VerifyResult, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.OTP) == "" {
		return nil, domain.NewValidationError("Email and OTP are required", missing(req))
	}
	email, err := checkEmail(req.Email)
	if err != nil {
		return nil, err
	}

	// Resolve the identity before touching the code, so a lookup failure
	// leaves the code unconsumed.
	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	res, err := s.otp.Verify(ctx, email, strings.TrimSpace(req.OTP))
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		s.log.Info("verify-otp: rejected", zap.String("email", email), zap.String("reason", string(res.Reason)))
		if u != nil {
			detail := audit.DetailOTPMismatch
			if res.Reason == otp.ReasonExpiredOrMissing {
				detail = audit.DetailOTPExpired
			}
			s.audit.Record(ctx, u.UserID, domain.ActionOTPFailed, meta.IP, detail)
		}
		return nil, domain.ErrInvalidOTP
	}

	if u == nil {
		s.log.Info("verify-otp: verified, no account", zap.String("email", email))
		return &VerifyResult{Exists: false}, nil
	}

	pair, err := s.sessions.Issue(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, u.UserID, domain.ActionLoginSuccess, meta.IP, audit.DetailLoginSuccess)
	s.log.Info("verify-otp: logged in", zap.String("user_id", u.UserID))
	return &VerifyResult{Exists: true, Tokens: pair}, nil
}

// Register creates the identity and logs it in. It does not re-check an OTP.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest, meta domain.RequestMeta) (*domain.TokenPair, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	u := &domain.User{
		UserID:       id.New(),
		Email:        domain.NormalizeEmail(req.Email),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MobileNumber: req.MobileNumber,
		DateOfBirth:  req.DateOfBirth,
		NHSNumber:    req.NHSNumber,
		NHSConsent:   req.NHSConsent,
		AuthMethod:   domain.AuthMethodEmailOTP,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	pair, err := s.sessions.Issue(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, u.UserID, domain.ActionRegisterSuccess, meta.IP, audit.DetailRegisterSuccess)
	s.log.Info("register: user created", zap.String("user_id", u.UserID))
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. Rejections are audited
// when the token can be attributed to a user.
func (s *service) Refresh(ctx context.Context, req TokenRequest, meta domain.RequestMeta) (*domain.TokenPair, error) {
	if strings.TrimSpace(req.Refresh) == "" {
		return nil, domain.FieldError("refresh", "Refresh token is required")
	}
	pair, err := s.sessions.Refresh(ctx, req.Refresh)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredential) {
			if sub := s.sessions.Subject(req.Refresh); sub != "" {
				s.audit.Record(ctx, sub, domain.ActionRefreshFailed, meta.IP, audit.DetailRefreshFailed)
			}
		}
		s.log.Info("refresh: rejected", zap.Error(err))
		return nil, err
	}
	return pair, nil
}

// Logout revokes the caller's refresh token. A token that belongs to someone
// else, or cannot be read, is rejected and audited.
func (s *service) Logout(ctx context.Context, userID string, req TokenRequest, meta domain.RequestMeta) error {
	if strings.TrimSpace(req.Refresh) == "" {
		return domain.FieldError("refresh", "Refresh token is required")
	}

	switch sub := s.sessions.Subject(req.Refresh); {
	case sub == "":
		s.audit.Record(ctx, userID, domain.ActionLogoutFailed, meta.IP, audit.DetailLogoutInvalid)
		return domain.ErrInvalidToken
	case sub != userID:
		s.audit.Record(ctx, userID, domain.ActionLogoutFailed, meta.IP, audit.DetailLogoutForeignUser)
		return domain.ErrInvalidToken
	}

	outcome, _, err := s.sessions.Revoke(ctx, req.Refresh)
	if err != nil {
		return err
	}
	if outcome == session.Invalid {
		s.audit.Record(ctx, userID, domain.ActionLogoutFailed, meta.IP, audit.DetailLogoutInvalid)
		return domain.ErrInvalidToken
	}
	s.audit.Record(ctx, userID, domain.ActionLogoutSuccess, meta.IP, audit.DetailLogoutSuccess)
	s.log.Info("logout", zap.String("user_id", userID), zap.Stringer("outcome", outcome))
	return nil
}

// RevokeToken blacklists a refresh token without an access token. Already
// revoked and expired tokens count as success.
func (s *service) RevokeToken(ctx context.Context, req TokenRequest, meta domain.RequestMeta) error {
	if strings.TrimSpace(req.Refresh) == "" {
		return domain.FieldError("refresh", "Refresh token is required")
	}
	outcome, claims, err := s.sessions.Revoke(ctx, req.Refresh)
	if err != nil {
		return err
	}
	if outcome == session.Invalid {
		return domain.ErrInvalidToken
	}
	if outcome == session.Revoked {
		s.audit.Record(ctx, claims.UserID, domain.ActionLogoutSuccess, meta.IP, audit.DetailTokenRevoked)
	}
	return nil
}

// lookup returns the user for email, or nil when none is registered.
func (s *service) lookup(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// checkEmail validates raw and returns it normalized.
func checkEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", domain.FieldError("email", "Email is required")
	}
	if !validate.Email(email) {
		return "", domain.FieldError("email", "Invalid email format")
	}
	return domain.NormalizeEmail(email), nil
}

func missing(req VerifyOTPRequest) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "This field is required."
	}
	if strings.TrimSpace(req.OTP) == "" {
		fields["otp"] = "This field is required."
	}
	return fields
}
