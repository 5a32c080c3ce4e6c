package handler

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"userauth/internal/auth"
)

var phonePattern = regexp.MustCompile(`^05\d{8}$`)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator with the strongpassword and
// phone05 tags registered. Field names in errors are the JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return auth.IsStrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("phone05", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// validationMessage turns a validation failure into the client message.
// missing is used when any required field is absent.
func validationMessage(err error, missing string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error: invalid request"
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return missing
		}
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "email":
		return "Invalid email address."
	case "phone05":
		return "Invalid phone number format. Must be 05xxxxxxxx."
	case "strongpassword":
		return "Validation error: password is not strong enough"
	default:
		return "Validation error: " + fe.Field() + " is invalid"
	}
}
