package planner

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/pkg/errors"
)

// NewValidator returns a validator that reports fields by their JSON names
// and knows the activity level vocabulary.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("activity", validateActivity)
	return validate
}

func validateActivity(fl validator.FieldLevel) bool {
	_, ok := diet.ActivityMultiplier(diet.ActivityLevel(fl.Field().String()))
	return ok
}

// validationError converts validator output into the API error shape
func validationError(err error) *errors.AppError {
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return errors.NewValidationError(err.Error())
	}

	fields := make([]errors.ValidationError, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", field, e.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, e.Param())
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", field, e.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		case "activity":
			message = fmt.Sprintf("%s must be one of [%s %s %s]", field, diet.ActivityLow, diet.ActivityMedium, diet.ActivityHigh)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		fields = append(fields, errors.ValidationError{
			Field:   field,
			Value:   e.Value(),
			Tag:     e.Tag(),
			Message: message,
		})
	}
	return errors.NewValidationErrors(fields)
}
