package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"

	"github.com/skilllink/skilllink/pkg/errorbank"
)

// Module provides the request validator to the Fx graph.
var Module = fx.Provide(New)

// Validator validates request payloads and reports every violated
// constraint in a single error rather than stopping at the first.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom rules registered.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("password", passwordRule); err != nil {
		return nil, err
	}
	return &Validator{validate: v}, nil
}

// Validate implements echo.Validator. Violations are aggregated into one
// bad_request AppError carrying a message per failed field.
func (v *Validator) Validate(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, messageFor(fe))
	}
	return errorbank.BadRequest("validation failed", errorbank.WithDetail("errors", messages))
}

// passwordRule requires at least one lowercase letter, one uppercase letter
// and one digit.
func passwordRule(fl validator.FieldLevel) bool {
	var lower, upper, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

func messageFor(fe validator.FieldError) string {
	field := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "password":
		return fmt.Sprintf("%s must contain at least one lowercase letter, one uppercase letter, and one number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// fieldName lowercases the first rune of the struct field so messages read
// like the JSON payload ("deliveryTime", not "DeliveryTime").
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "field"
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
