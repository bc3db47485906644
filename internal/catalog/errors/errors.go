package errors

import "errors"

var (
	ErrBranchNotFound = errors.New("branch not found")

	ErrServiceNotFound = errors.New("service not found")

	ErrStylistNotFound = errors.New("stylist not found")

	ErrInvalidID = errors.New("invalid catalog ID format")
)
