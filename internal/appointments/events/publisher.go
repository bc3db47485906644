// Package events publishes appointment lifecycle events to Kafka.
package events

import (
	"context"
	"fmt"
	"time"

	"salonbook/pkg/config"
	"salonbook/pkg/kafka"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"
)

const (
	SchemaVersion = "1"
	Source        = "appointments-service"
)

type Publisher interface {
	PublishCreated(ctx context.Context, a *model.Appointment) error
	PublishStatusChanged(ctx context.Context, a *model.Appointment, previous string) error
}

// MessageWriter is the part of *kafka.Producer the publisher needs.
type MessageWriter interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) Publisher {
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) PublishCreated(ctx context.Context, a *model.Appointment) error {
	return p.publish(ctx, config.EventAppointmentCreated, NewEvent(a, ""))
}

func (p *kafkaPublisher) PublishStatusChanged(ctx context.Context, a *model.Appointment, previous string) error {
	return p.publish(ctx, config.EventAppointmentStatusChanged, NewEvent(a, previous))
}

// publish keys messages by appointment id so every event of one appointment
// lands on the same partition in order.
func (p *kafkaPublisher) publish(ctx context.Context, eventType string, event model.AppointmentEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.AppointmentID).
		WithValue(event).
		WithEventType(eventType).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}
	if err := p.writer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

func NewEvent(a *model.Appointment, previous string) model.AppointmentEvent {
	return model.AppointmentEvent{
		AppointmentID:  a.ID,
		BranchID:       a.BranchID,
		ClientID:       a.ClientID,
		StylistIDs:     append([]string(nil), a.StylistIDs...),
		Date:           a.Date,
		Time:           a.Time,
		Status:         a.Status,
		PreviousStatus: previous,
		OccurredAt:     time.Now().UTC(),
	}
}
