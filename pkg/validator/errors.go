package validator

import (
	"fmt"
	"strings"

	goValidator "github.com/go-playground/validator/v10"
)

// ValidatorError represents an error response from the deploy.json validator.
type ValidatorError struct {
	Errors []ValidatorErrorItem
}

type ValidatorErrorItem struct {
	Message     string
	FailedField string
	Namespace   string
}

// Allow ValidatorError to satisfy error interface.
func (err *ValidatorError) Error() string {
	var messages []string
	for _, e := range err.Errors {
		messages = append(messages, e.Namespace+": "+Describe(e.FailedField))
	}
	return "invalid deploy.json\n  " + strings.Join(messages, "\n  ")
}

// HandleValidatorError parses validation error into a ValidatorError.
func HandleValidatorError(errs error) error {
	verrs, ok := errs.(goValidator.ValidationErrors)
	if !ok {
		return errs
	}

	validationErrors := &ValidatorError{}
	for _, err := range verrs {
		validationErrors.Errors = append(validationErrors.Errors, ValidatorErrorItem{
			Message:     err.Error(),
			FailedField: err.Field(),
			Namespace:   trimRoot(err.Namespace()),
		})
	}

	return validationErrors
}

// Describe returns the human description of a config field.
func Describe(field string) string {
	if d, ok := FieldDescriptions[field]; ok {
		return d
	}
	return fmt.Sprintf("has an invalid value for %q", field)
}

func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
