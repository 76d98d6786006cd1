// Package user implements the authenticated profile flows.
package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/application/audit"
	"github.com/jeeva2692001/mindkonnect/internal/domain"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/logger"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/validate"
)

// Stored attribute names used in partial update maps.
const (
	fieldFirstName    = "first_name"
	fieldLastName     = "last_name"
	fieldMobileNumber = "mobile_number"
	fieldDateOfBirth  = "date_of_birth"
	fieldNHSNumber    = "nhs_number"
)

type Service interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest, meta domain.RequestMeta) (*domain.User, error)
	ListActivity(ctx context.Context, userID string) ([]domain.ActivityLog, error)
}

type userStore interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	UpdateByEmail(ctx context.Context, email string, updates map[string]interface{}) (*domain.User, error)
}

type activityLog interface {
	Record(ctx context.Context, userID string, action domain.Action, ip, details string)
	List(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error)
}

type ServiceDeps struct {
	UserRepo userStore
	Activity activityLog
	Logger   *zap.Logger
}

type service struct {
	repo     userStore
	activity activityLog
	log      *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:     deps.UserRepo,
		activity: deps.Activity,
		log:      logger.OrNop(deps.Logger),
	}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile applies the fields present in req. An empty update returns
// the current profile without writing or auditing.
func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest, meta domain.RequestMeta) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates[fieldFirstName] = *req.FirstName
	}
	if req.LastName != nil {
		updates[fieldLastName] = *req.LastName
	}
	if req.MobileNumber != nil {
		updates[fieldMobileNumber] = *req.MobileNumber
	}
	if req.DateOfBirth != nil {
		updates[fieldDateOfBirth] = *req.DateOfBirth
	}
	if req.NHSNumber != nil {
		updates[fieldNHSNumber] = *req.NHSNumber
	}
	if len(updates) == 0 {
		return u, nil
	}

	updated, err := s.repo.UpdateByEmail(ctx, u.Email, updates)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, domain.ActionProfileUpdate, meta.IP, audit.DetailProfileUpdate)
	s.log.Info("profile updated", zap.String("user_id", userID), zap.Int("fields", len(updates)))
	return updated, nil
}

// ListActivity returns the most recent entries for userID, newest first.
func (s *service) ListActivity(ctx context.Context, userID string) ([]domain.ActivityLog, error) {
	return s.activity.List(ctx, userID, domain.MaxActivityPage)
}
