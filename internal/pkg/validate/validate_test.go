package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

func validRegister() domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:        "a@b.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		MobileNumber: "+447123456789",
		DateOfBirth:  "1990-12-10",
	}
}

func TestMobile(t *testing.T) {
	assert.True(t, Mobile("+447123456789"))
	for _, bad := range []string{"447123456789", "+44 7123456789", "", "+", "+44-7123", "+44712345678a"} {
		assert.False(t, Mobile(bad), bad)
	}
}

func TestStruct_RegisterRequest_Valid(t *testing.T) {
	assert.NoError(t, Struct(validRegister()))
}

func TestStruct_RegisterRequest_MobileRejected(t *testing.T) {
	for _, bad := range []string{"447123456789", "+44 7123456789", ""} {
		req := validRegister()
		req.MobileNumber = bad

		err := Struct(req)
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve), bad)
		assert.Contains(t, ve.Fields, "mobile_number")
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	}
}

func TestStruct_FieldNamesAreJSONNames(t *testing.T) {
	err := Struct(domain.RegisterRequest{Email: "not-an-email", DateOfBirth: "10/12/1990"})

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Enter a valid email address.", ve.Fields["email"])
	assert.Equal(t, "Date must be in the format YYYY-MM-DD.", ve.Fields["date_of_birth"])
	assert.Equal(t, "This field is required.", ve.Fields["first_name"])
	assert.Contains(t, ve.Fields, "last_name")
	assert.NotContains(t, ve.Fields, "nhs_number")
}

func TestStruct_UpdateProfile_NilFieldsSkipped(t *testing.T) {
	assert.NoError(t, Struct(domain.UpdateProfileRequest{}))

	empty := ""
	err := Struct(domain.UpdateProfileRequest{FirstName: &empty})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "first_name")
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("a@b.com"))
	assert.False(t, Email("a@"))
	assert.False(t, Email(""))
}
