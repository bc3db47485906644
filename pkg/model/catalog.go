package model

import "time"

type Branch struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Address   string    `json:"address" bson:"address" validate:"required,min=2,max=200"`
	City      string    `json:"city" bson:"city" validate:"required,min=2,max=50"`
	Hours     string    `json:"hours" bson:"hours" validate:"omitempty,max=100"`
	IsActive  bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// SalonService is a bookable offering of a branch.
type SalonService struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BranchID    string    `json:"branch_id" bson:"branch_id" validate:"required,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Price       float64   `json:"price" bson:"price" validate:"gte=0"`
	Duration    int       `json:"duration" bson:"duration" validate:"gte=0,max=720"`
	Category    string    `json:"category" bson:"category" validate:"required,min=2,max=50"`
	Description string    `json:"description,omitempty" bson:"description" validate:"omitempty,max=500"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type Stylist struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BranchID    string    `json:"branch_id" bson:"branch_id" validate:"required,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	FirstName   string    `json:"first_name" bson:"first_name" validate:"required,min=1,max=50"`
	LastName    string    `json:"last_name" bson:"last_name" validate:"required,min=1,max=50"`
	Rating      float64   `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	IsAvailable bool      `json:"is_available" bson:"is_available"`
	ServiceIDs  []string  `json:"service_ids" bson:"service_ids" validate:"omitempty,dive,mongodb"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type StylistAvailabilityUpdate struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}
