package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"salonbook/pkg/logger"
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

func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, e := range v {
		details[e.Field] = e.Message
	}
	return details
}

type AppointmentValidator struct {
	validate *validator.Validate
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	if err := validation.Register(v); err != nil {
		log.Fatal("Failed to register appointment validators", "error", err)
	}

	return &AppointmentValidator{validate: v}
}

func (v *AppointmentValidator) ValidatePayload(p *model.AppointmentPayload) error {
	if err := v.validateStruct(p); err != nil {
		return err
	}
	return validateConsistency(p)
}

func (v *AppointmentValidator) ValidateStatusUpdate(u *model.AppointmentStatusUpdate) error {
	return v.validateStruct(u)
}

func (v *AppointmentValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// validateConsistency checks what struct tags cannot express: unique services,
// assignments that point at selected services, and totals that match the items.
func validateConsistency(p *model.AppointmentPayload) error {
	var errs ValidationErrors

	selected := make(map[string]bool, len(p.Services))
	var cost float64
	var duration int
	for _, svc := range p.Services {
		if selected[svc.ID] {
			errs = append(errs, ValidationError{Field: "services", Message: "duplicate service " + svc.ID})
		}
		selected[svc.ID] = true
		cost += svc.Price
		duration += svc.Duration
	}

	assigned := make(map[string]bool, len(p.StylistAssignments))
	for _, a := range p.StylistAssignments {
		if !selected[a.ServiceID] {
			errs = append(errs, ValidationError{Field: "stylist_assignments", Message: "service " + a.ServiceID + " is not part of the appointment"})
		}
		if assigned[a.ServiceID] {
			errs = append(errs, ValidationError{Field: "stylist_assignments", Message: "service " + a.ServiceID + " is assigned twice"})
		}
		assigned[a.ServiceID] = true
	}

	if !floatEqual(cost, p.TotalCost) {
		errs = append(errs, ValidationError{Field: "total_cost", Message: fmt.Sprintf("must equal the sum of service prices (%.2f)", cost)})
	}
	if duration != p.TotalDuration {
		errs = append(errs, ValidationError{Field: "total_duration", Message: fmt.Sprintf("must equal the sum of service durations (%d)", duration)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func floatEqual(a, b float64) bool {
	const epsilon = 0.005
	d := a - b
	return d < epsilon && d > -epsilon
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors
	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldPath(err),
			Message: validation.Message(err),
		})
	}
	return validationErrors
}

// fieldPath drops the struct name so nested fields read "services[0].id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
