package model

type BranchRef struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
}

type ServiceItem struct {
	ID       string  `json:"id" bson:"id" validate:"required"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price" validate:"gte=0"`
	Duration int     `json:"duration" bson:"duration" validate:"gte=0"`
	Category string  `json:"category" bson:"category"`
}

type StylistRef struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// BookingSelection accumulates the choices of one booking attempt.
type BookingSelection struct {
	Branch             *BranchRef            `json:"branch,omitempty"`
	Date               string                `json:"date,omitempty"`
	Time               string                `json:"time,omitempty"`
	Services           []ServiceItem         `json:"services"`
	StylistAssignments map[string]StylistRef `json:"stylist_assignments"`
	CurrentStep        int                   `json:"current_step"`
	Notes              string                `json:"notes,omitempty"`
}

type Totals struct {
	TotalPrice    float64 `json:"total_price"`
	TotalDuration int     `json:"total_duration"`
}
