package config

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Appointment statuses.
const (
	Pending   = "pending"
	Confirmed = "confirmed"
	Completed = "completed"
	Cancelled = "cancelled"
	NoShow    = "no_show"
)

// Kafka event types.
const (
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentStatusChanged = "appointment.status_changed"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)
