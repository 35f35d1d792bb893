package helper

import (
	"fmt"

	logger "pet-emergency-api/src/infrastructure/logger"

	"github.com/go-playground/validator/v10"
)

// Validator translates validator.FieldError values into user-facing messages
type Validator interface {
	GetErrorMsg(fe validator.FieldError) string
}

type validatorHelper struct {
	Logger *logger.Logger
}

func NewValidator(loggerInstance *logger.Logger) Validator {
	return &validatorHelper{Logger: loggerInstance}
}

func (v *validatorHelper) GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("Should be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("Should be less than %s characters long", fe.Param())
	case "oneof":
		return fmt.Sprintf("Should be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Should be greater than %s", fe.Param())
	}
	return "Unknown error"
}
