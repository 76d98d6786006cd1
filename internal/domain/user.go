package domain

import (
	"strings"
	"time"
)

// AuthMethod is how an identity proves itself. Email OTP is the only
// supported method; there is no password variant.
type AuthMethod string

const AuthMethodEmailOTP AuthMethod = "email_otp"

func (m AuthMethod) Valid() bool { return m == AuthMethodEmailOTP }

// DateLayout is the wire and storage format of date_of_birth.
const DateLayout = "2006-01-02"

// User is a registered identity. Email is the natural key; UserID is the
// stable id carried in tokens.
type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Email        string     `json:"email" dynamodbav:"email"`
	FirstName    string     `json:"first_name" dynamodbav:"first_name"`
	LastName     string     `json:"last_name" dynamodbav:"last_name"`
	MobileNumber string     `json:"mobile_number" dynamodbav:"mobile_number"`
	DateOfBirth  string     `json:"date_of_birth" dynamodbav:"date_of_birth"` // YYYY-MM-DD
	NHSNumber    string     `json:"nhs_number" dynamodbav:"nhs_number"`
	NHSConsent   bool       `json:"nhs_consent" dynamodbav:"nhs_consent"`
	AuthMethod   AuthMethod `json:"-" dynamodbav:"auth_method"`
	CreatedAt    time.Time  `json:"-" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"-" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	FirstName    string `json:"first_name" validate:"required,max=50"`
	LastName     string `json:"last_name" validate:"required,max=50"`
	MobileNumber string `json:"mobile_number" validate:"required,max=15,mobile"`
	DateOfBirth  string `json:"date_of_birth" validate:"required,date"`
	NHSNumber    string `json:"nhs_number" validate:"omitempty,max=10"`
	NHSConsent   bool   `json:"nhs_consent"`
}

// UpdateProfileRequest is a partial update. Email and nhs_consent are read-only.
type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name" validate:"omitnil,min=1,max=50"`
	LastName     *string `json:"last_name" validate:"omitnil,min=1,max=50"`
	MobileNumber *string `json:"mobile_number" validate:"omitnil,max=15,mobile"`
	DateOfBirth  *string `json:"date_of_birth" validate:"omitnil,date"`
	NHSNumber    *string `json:"nhs_number" validate:"omitnil,max=10"`
}

// NormalizeEmail trims surrounding space and lowercases the address so that
// lookups and OTP keys agree regardless of how the client typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
