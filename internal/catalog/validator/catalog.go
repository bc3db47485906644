package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"salonbook/pkg/model"
	"salonbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CatalogValidator struct {
	validate *validator.Validate
}

func NewCatalogValidator() *CatalogValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &CatalogValidator{validate: v}
}

func (v *CatalogValidator) ValidateBranch(b *model.Branch) error {
	return v.validateStruct(b)
}

func (v *CatalogValidator) ValidateService(s *model.SalonService) error {
	return v.validateStruct(s)
}

func (v *CatalogValidator) ValidateStylist(s *model.Stylist) error {
	return v.validateStruct(s)
}

func (v *CatalogValidator) ValidateAvailability(u *model.StylistAvailabilityUpdate) error {
	return v.validateStruct(u)
}

func (v *CatalogValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors
	for _, err := range errs {
		message := validation.Message(err)
		switch err.Tag() {
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid ID", err.Field())
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}
	return validationErrors
}
