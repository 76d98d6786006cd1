package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

// mobilePattern is a plus sign followed by digits only. No spaces or dashes.
var mobilePattern = regexp.MustCompile(`^\+\d+$`)

// v is the package-level singleton validator. Custom tags and the JSON
// tag-name hook are registered once in init().
var v = validator.New(validator.WithRequiredStructEnabled())

func init() {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	mustRegister("mobile", func(fl validator.FieldLevel) bool {
		return Mobile(fl.Field().String())
	})
	mustRegister("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.DateLayout, fl.Field().String())
		return err == nil
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %q: %v", tag, err))
	}
}

// Mobile reports whether s is a phone number of the form +<digits>.
func Mobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// Struct validates the given struct using its validate tags. Failures come
// back as a *domain.ValidationError keyed by JSON field name.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = message(fe)
		}
	}
	return domain.NewValidationError("validation failed", fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "mobile":
		return "Mobile number must be in the format +<digits>."
	case "date":
		return "Date must be in the format YYYY-MM-DD."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}

// Email reports whether s is a structurally valid email address.
func Email(s string) bool {
	return v.Var(s, "required,email") == nil
}
