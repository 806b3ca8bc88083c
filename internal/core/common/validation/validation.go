package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	errors "github.com/frahmantamala/expense-tracker/internal"
)

const (
	NameMinLength     = 3
	NameMaxLength     = 35
	PasswordMaxBytes  = 72
	MaxMonetaryAmount = 9999999999.99
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case nil:
			return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
		case string:
			if strings.TrimSpace(v) == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || *v == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case *float64:
			if v == nil {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int, code errors.ErrorCode) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if utf8.RuneCountInString(v) < min {
				message := fmt.Sprintf("%s must be at least %d characters", name, min)
				return errors.NewValidationFieldError(name, message, code)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int, code errors.ErrorCode) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if utf8.RuneCountInString(v) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", name, max)
				return errors.NewValidationFieldError(name, message, code)
			}
		}
		return nil
	})
	return fv
}

// MaxBytes bounds the encoded length, not the rune count.
func (fv *FieldValidator) MaxBytes(max int, code errors.ErrorCode) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) > max {
				message := fmt.Sprintf("%s must not exceed %d bytes", name, max)
				return errors.NewValidationFieldError(name, message, code)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) LettersAndSpaces(code errors.ErrorCode) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			for _, r := range v {
				if !unicode.IsLetter(r) && r != ' ' {
					message := fmt.Sprintf("%s may only contain letters and spaces", name)
					return errors.NewValidationFieldError(name, message, code)
				}
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Contains(substr string, code errors.ErrorCode) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if !strings.Contains(v, substr) {
				message := fmt.Sprintf("%s must contain %q", name, substr)
				return errors.NewValidationFieldError(name, message, code)
			}
		}
		return nil
	})
	return fv
}

// Finite rejects NaN, infinities and values that overflow NUMERIC(12,2).
func (fv *FieldValidator) Finite(code errors.ErrorCode) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case *float64:
			if v == nil {
				return nil
			}
			f = *v
		default:
			return nil
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > MaxMonetaryAmount {
			message := fmt.Sprintf("%s is out of range", name)
			return errors.NewValidationFieldError(name, message, code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every field and stops at the first failure per field.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
			} else {
				validationErrors = append(validationErrors, errors.ValidationError{
					Field:   field.FieldName,
					Message: appErr.Message,
					Code:    string(appErr.Code),
				})
			}
			break
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// NullNotAllowed is returned when a partial update sends null for a non-nullable field.
func NullNotAllowed(field string) *errors.AppError {
	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
		WithDetails(errors.ValidationErrors{Errors: []errors.ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("%s cannot be null", field),
			Code:    string(errors.ErrCodeNullNotAllowed),
		}}})
}

// NormalizeEmail trims and lower-cases an address before it is validated or stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (v *ValidationBuilder) Name(name string) *ValidationBuilder {
	v.Field("name", name).
		Required().
		MinLength(NameMinLength, errors.ErrCodeInvalidName).
		MaxLength(NameMaxLength, errors.ErrCodeInvalidName).
		LettersAndSpaces(errors.ErrCodeInvalidName)
	return v
}

func (v *ValidationBuilder) Email(email string) *ValidationBuilder {
	v.Field("email", email).
		Required().
		Contains("@", errors.ErrCodeInvalidEmail)
	return v
}

func (v *ValidationBuilder) Password(password string) *ValidationBuilder {
	v.Field("password", password).
		Required().
		MaxBytes(PasswordMaxBytes, errors.ErrCodeInvalidPassword)
	return v
}

func (v *ValidationBuilder) Budget(budget float64) *ValidationBuilder {
	v.Field("budget", budget).Finite(errors.ErrCodeInvalidBudget)
	return v
}

func ValidateName(name string) *errors.AppError {
	return NewValidator().Name(name).Validate()
}

func ValidateEmail(email string) *errors.AppError {
	return NewValidator().Email(email).Validate()
}

func ValidatePassword(password string) *errors.AppError {
	return NewValidator().Password(password).Validate()
}

func ValidateExpenseAmount(amount *float64) *errors.AppError {
	validator := NewValidator()
	validator.Field("amount", amount).
		Required().
		Finite(errors.ErrCodeInvalidAmount)
	return validator.Validate()
}
