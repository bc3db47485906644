package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	ErrSlotTaken = errors.New("stylist is already booked for this time")

	ErrLockHeld = errors.New("appointment slot lock is held")

	ErrInvalidTransition = errors.New("invalid appointment status transition")

	ErrStatusChanged = errors.New("appointment status changed concurrently")
)
