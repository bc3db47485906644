package model

import "time"

type StylistAssignment struct {
	ServiceID   string `json:"service_id" bson:"service_id" validate:"required"`
	StylistID   string `json:"stylist_id" bson:"stylist_id" validate:"required"`
	StylistName string `json:"stylist_name" bson:"stylist_name"`
	FirstName   string `json:"first_name" bson:"first_name"`
	LastName    string `json:"last_name" bson:"last_name"`
}

// AppointmentPayload is the finalized booking handed to the appointments service.
type AppointmentPayload struct {
	ClientID           string              `json:"client_id" validate:"required,max=100"`
	ClientFirstName    string              `json:"client_first_name" validate:"required,min=1,max=50"`
	ClientLastName     string              `json:"client_last_name" validate:"omitempty,max=50"`
	ClientContact      string              `json:"client_contact" validate:"required,e164"`
	BranchID           string              `json:"branch_id" validate:"required"`
	BranchName         string              `json:"branch_name"`
	Services           []ServiceItem       `json:"services" validate:"required,min=1,dive"`
	StylistAssignments []StylistAssignment `json:"stylist_assignments" validate:"omitempty,dive"`
	Date               string              `json:"date" validate:"required,booking_date"`
	Time               string              `json:"time" validate:"required,booking_time"`
	TotalCost          float64             `json:"total_cost" validate:"gte=0"`
	TotalDuration      int                 `json:"total_duration" validate:"gte=0"`
	Status             string              `json:"status" validate:"required,oneof=pending confirmed"`
	CreatedBy          string              `json:"created_by" validate:"required"`
	Notes              string              `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type Appointment struct {
	ID                 string              `json:"id,omitempty" bson:"_id,omitempty"`
	ClientID           string              `json:"client_id" bson:"client_id"`
	ClientFirstName    string              `json:"client_first_name" bson:"client_first_name"`
	ClientLastName     string              `json:"client_last_name" bson:"client_last_name"`
	ClientContact      string              `json:"client_contact" bson:"client_contact"`
	BranchID           string              `json:"branch_id" bson:"branch_id"`
	BranchName         string              `json:"branch_name" bson:"branch_name"`
	Services           []ServiceItem       `json:"services" bson:"services"`
	StylistAssignments []StylistAssignment `json:"stylist_assignments" bson:"stylist_assignments"`
	StylistIDs         []string            `json:"stylist_ids" bson:"stylist_ids"`
	Date               string              `json:"date" bson:"date"`
	Time               string              `json:"time" bson:"time"`
	StartTime          time.Time           `json:"start_time" bson:"start_time"`
	EndTime            time.Time           `json:"end_time" bson:"end_time"`
	TotalCost          float64             `json:"total_cost" bson:"total_cost"`
	TotalDuration      int                 `json:"total_duration" bson:"total_duration"`
	Status             string              `json:"status" bson:"status"`
	CreatedBy          string              `json:"created_by" bson:"created_by"`
	Notes              string              `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt          time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" bson:"updated_at"`
}

type AppointmentStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled no_show"`
}

// AppointmentLock is an advisory lock held while a stylist slot is checked and written.
type AppointmentLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// AppointmentEvent is the Kafka message body for appointment lifecycle events.
type AppointmentEvent struct {
	AppointmentID  string    `json:"appointment_id"`
	BranchID       string    `json:"branch_id"`
	ClientID       string    `json:"client_id"`
	StylistIDs     []string  `json:"stylist_ids"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
