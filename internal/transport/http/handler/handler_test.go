package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jeeva2692001/mindkonnect/internal/application/auth"
	"github.com/jeeva2692001/mindkonnect/internal/domain"
	jwtinfra "github.com/jeeva2692001/mindkonnect/internal/infrastructure/jwt"
	"github.com/jeeva2692001/mindkonnect/internal/transport/http/middleware"
)

// --- mocks ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) CheckEmail(ctx context.Context, req auth.EmailRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}
func (m *mockAuthSvc) SendOTP(ctx context.Context, req auth.EmailRequest, meta domain.RequestMeta) error {
	return m.Called(ctx, req, meta).Error(0)
}
func (m *mockAuthSvc) VerifyOTP(ctx context.Context, req auth.VerifyOTPRequest, meta domain.RequestMeta) (*auth.VerifyResult, error) {
	args := m.Called(ctx, req, meta)
	if r, _ := args.Get(0).(*auth.VerifyResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) Register(ctx context.Context, req domain.RegisterRequest, meta domain.RequestMeta) (*domain.TokenPair, error) {
	args := m.Called(ctx, req, meta)
	if p, _ := args.Get(0).(*domain.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) Refresh(ctx context.Context, req auth.TokenRequest, meta domain.RequestMeta) (*domain.TokenPair, error) {
	args := m.Called(ctx, req, meta)
	if p, _ := args.Get(0).(*domain.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) Logout(ctx context.Context, userID string, req auth.TokenRequest, meta domain.RequestMeta) error {
	return m.Called(ctx, userID, req, meta).Error(0)
}
func (m *mockAuthSvc) RevokeToken(ctx context.Context, req auth.TokenRequest, meta domain.RequestMeta) error {
	return m.Called(ctx, req, meta).Error(0)
}

type mockProfileSvc struct{ mock.Mock }

func (m *mockProfileSvc) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProfileSvc) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest, meta domain.RequestMeta) (*domain.User, error) {
	args := m.Called(ctx, userID, req, meta)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProfileSvc) ListActivity(ctx context.Context, userID string) ([]domain.ActivityLog, error) {
	args := m.Called(ctx, userID)
	logs, _ := args.Get(0).([]domain.ActivityLog)
	return logs, args.Error(1)
}

// --- helpers ---

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	if userID != "" {
		req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsKey, &jwtinfra.Claims{UserID: userID}))
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

var pair = &domain.TokenPair{UserID: "u1", Access: "acc", Refresh: "ref"}

// --- auth handlers ---

func TestCheckEmail(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("CheckEmail", mock.Anything, auth.EmailRequest{Email: "a@b.com"}).Return(true, nil)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.CheckEmail, map[string]string{"email": "a@b.com"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["exists"])
}

func TestCheckEmail_ValidationError(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("CheckEmail", mock.Anything, mock.Anything).Return(false, domain.FieldError("email", "Invalid email format"))
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.CheckEmail, map[string]string{"email": "bad"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Invalid email format", body["error"])
	assert.Contains(t, body["fields"], "email")
}

func TestMalformedBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, nil)
	rr := postJSON(t, h.SendOTP, "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgInvalidBody, decodeBody(t, rr)["error"])
}

func TestSendOTP(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SendOTP", mock.Anything, auth.EmailRequest{Email: "a@b.com"}, mock.Anything).Return(nil)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.SendOTP, map[string]string{"email": "a@b.com"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OTP sent successfully", decodeBody(t, rr)["message"])
}

func TestSendOTP_DeliveryFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SendOTP", mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrDeliveryFailed)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.SendOTP, map[string]string{"email": "a@b.com"}, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, msgSendFailed, decodeBody(t, rr)["error"])
}

func TestVerifyOTP_NoAccount(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, auth.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"}, mock.Anything).
		Return(&auth.VerifyResult{Exists: false}, nil)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.VerifyOTP, map[string]string{"email": "a@b.com", "otp": "123456"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, false, body["exists"])
	assert.NotContains(t, body, "access")
}

func TestVerifyOTP_LoggedIn(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything, mock.Anything).
		Return(&auth.VerifyResult{Exists: true, Tokens: pair}, nil)
	h := NewAuthHandler(svc, nil)

	body := decodeBody(t, postJSON(t, h.VerifyOTP, map[string]string{"email": "a@b.com", "otp": "123456"}, ""))
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, "acc", body["access"])
	assert.Equal(t, "ref", body["refresh"])
}

func TestVerifyOTP_Rejected(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidOTP)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.VerifyOTP, map[string]string{"email": "a@b.com", "otp": "000000"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgInvalidOTP, decodeBody(t, rr)["error"])
}

func TestRegister_Created(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(pair, nil)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.Register, map[string]string{"email": "a@b.com"}, "")
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "acc", decodeBody(t, rr)["access"])
}

func TestRegister_Conflict(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.Register, map[string]string{"email": "a@b.com"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["fields"], "email")
}

func TestRefresh_Rejected(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Refresh", mock.Anything, auth.TokenRequest{Refresh: "old"}, mock.Anything).Return(nil, domain.ErrInvalidToken)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.Refresh, map[string]string{"refresh": "old"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgInvalidRefresh, decodeBody(t, rr)["error"])
}

func TestRefresh_BlacklistDown(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Refresh", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrDependency)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.Refresh, map[string]string{"refresh": "old"}, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, msgInternal, decodeBody(t, rr)["error"])
}

func TestLogout(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Logout", mock.Anything, "u1", auth.TokenRequest{Refresh: "ref"}, mock.Anything).Return(nil)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.Logout, map[string]string{"refresh": "ref"}, "u1")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Logout successful", decodeBody(t, rr)["message"])
}

func TestLogout_InvalidToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Logout", mock.Anything, "u1", mock.Anything, mock.Anything).Return(domain.ErrInvalidToken)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.Logout, map[string]string{"refresh": "someone-elses"}, "u1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgInvalidToken, decodeBody(t, rr)["error"])
}

func TestLogout_NoClaims(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, nil)
	rr := postJSON(t, h.Logout, map[string]string{"refresh": "ref"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBlacklistToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RevokeToken", mock.Anything, auth.TokenRequest{Refresh: "ref"}, mock.Anything).Return(nil)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(t, h.BlacklistToken, map[string]string{"refresh": "ref"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

// --- profile handlers ---

func TestUserInfo(t *testing.T) {
	svc := &mockProfileSvc{}
	svc.On("GetProfile", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Email: "a@b.com", AuthMethod: domain.AuthMethodEmailOTP}, nil)
	h := NewProfileHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsKey, &jwtinfra.Claims{UserID: "u1"}))
	rr := httptest.NewRecorder()
	h.UserInfo(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "a@b.com", body["email"])
	assert.NotContains(t, body, "auth_method")
}

func TestUpdateProfile(t *testing.T) {
	svc := &mockProfileSvc{}
	svc.On("UpdateProfile", mock.Anything, "u1", mock.Anything, mock.Anything).Return(&domain.User{UserID: "u1", FirstName: "Augusta"}, nil)
	h := NewProfileHandler(svc, nil)

	rr := postJSON(t, h.UpdateProfile, map[string]string{"first_name": "Augusta"}, "u1")
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Profile updated successfully", body["message"])
	assert.Equal(t, "Augusta", body["user"].(map[string]interface{})["first_name"])
}

func TestUpdateProfile_Invalid(t *testing.T) {
	svc := &mockProfileSvc{}
	svc.On("UpdateProfile", mock.Anything, "u1", mock.Anything, mock.Anything).
		Return(nil, domain.NewValidationError("Invalid input", map[string]string{"mobile_number": "Mobile number must be in the format +<digits>."}))
	h := NewProfileHandler(svc, nil)

	rr := postJSON(t, h.UpdateProfile, map[string]string{"mobile_number": "07"}, "u1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["fields"], "mobile_number")
}

func TestActivityLogs_EmptyIsArray(t *testing.T) {
	svc := &mockProfileSvc{}
	svc.On("ListActivity", mock.Anything, "u1").Return(nil, nil)
	h := NewProfileHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsKey, &jwtinfra.Claims{UserID: "u1"}))
	rr := httptest.NewRecorder()
	h.ActivityLogs(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

// --- health ---

func TestHealthPing(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/health-check/{action}", NewHealthHandler().Ping)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health-check/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", decodeBody(t, rr)["message"])

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health-check/other", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
