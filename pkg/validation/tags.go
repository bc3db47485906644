// Package validation holds the custom validator tags shared by the booking and appointment services.
package validation

import (
	"fmt"
	"strings"
	"time"

	"salonbook/pkg/config"

	"github.com/go-playground/validator/v10"
)

const (
	TagBookingDate = "booking_date"
	TagBookingTime = "booking_time"
)

// Register installs the booking tags on v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagBookingDate, validateBookingDate); err != nil {
		return fmt.Errorf("failed to register %q validator: %w", TagBookingDate, err)
	}
	if err := v.RegisterValidation(TagBookingTime, validateBookingTime); err != nil {
		return fmt.Errorf("failed to register %q validator: %w", TagBookingTime, err)
	}
	return nil
}

func validateBookingDate(fl validator.FieldLevel) bool {
	return IsBookingDate(fl.Field().String())
}

func validateBookingTime(fl validator.FieldLevel) bool {
	return IsBookingTime(fl.Field().String())
}

func IsBookingDate(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != len(config.DateLayout) {
		return false
	}
	_, err := time.Parse(config.DateLayout, s)
	return err == nil
}

func IsBookingTime(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != len(config.TimeLayout) {
		return false
	}
	_, err := time.Parse(config.TimeLayout, s)
	return err == nil
}

// Message turns a failed tag into a human readable sentence.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "e164":
		return fmt.Sprintf("%s must be a phone number in E.164 format", fe.Field())
	case "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	case TagBookingDate:
		return fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", fe.Field())
	case TagBookingTime:
		return fmt.Sprintf("%s must be in HH:MM 24-hour format", fe.Field())
	}
	return fe.Error()
}
