package usecase

import (
	"errors"

	"StockDash/internal/domain/models"

	"github.com/go-playground/validator/v10"
)

// MissingDatesMessage is shown when either boundary date is empty.
const MissingDatesMessage = "Please select both start and end dates"

// ValidationError is a recoverable input problem. The prediction service is never contacted.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var rangeValidator = validator.New()

// ValidateDateRange accepts a range iff both dates are non-empty. Format and
// ordering are left to the prediction service.
func ValidateDateRange(r models.DateRange) error {
	err := rangeValidator.Struct(r)
	if err == nil {
		return nil
	}
	ve := &ValidationError{Message: MissingDatesMessage}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			ve.Fields = append(ve.Fields, fe.Field())
		}
	}
	return ve
}
