package model

// ClientIdentity is who a booking session books for.
type ClientIdentity struct {
	ClientID  string `json:"client_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Contact   string `json:"contact"`
}

type StartSessionRequest struct {
	ClientID  string `json:"client_id" validate:"omitempty,max=100"`
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"omitempty,max=50"`
	Contact   string `json:"contact" validate:"required,min=6,max=32"`
}

type SetBranchRequest struct {
	BranchID string `json:"branch_id" validate:"required,max=100"`
}

type SetDateTimeRequest struct {
	Date string `json:"date" validate:"required,booking_date"`
	Time string `json:"time" validate:"required,booking_time"`
}

type AssignStylistRequest struct {
	StylistID string `json:"stylist_id" validate:"required,max=100"`
}

type SetNotesRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

type CommitResult struct {
	AppointmentID string `json:"appointment_id"`
	SessionID     string `json:"session_id"`
	// SessionReleased is false when the session could not be reset after the
	// appointment was created; it frees itself once the commit claim expires.
	SessionReleased bool `json:"session_released"`
}
