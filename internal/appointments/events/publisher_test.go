package events

import (
	"context"
	"errors"
	"testing"

	"salonbook/pkg/config"
	"salonbook/pkg/kafka"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) Publish(_ context.Context, msg kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msg)
	return nil
}

func sampleAppointment() *model.Appointment {
	return &model.Appointment{
		ID:         "665f1c2a9b1e8a0012345678",
		BranchID:   "b1",
		ClientID:   "client-1",
		StylistIDs: []string{"st1"},
		Date:       "2025-03-10",
		Time:       "10:30",
		Status:     config.Confirmed,
	}
}

func TestPublishCreated(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	if err := p.PublishCreated(ctx, sampleAppointment()); err != nil {
		t.Fatalf("PublishCreated: %v", err)
	}
	if len(w.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.messages))
	}

	msg := w.messages[0]
	if msg.Key != "665f1c2a9b1e8a0012345678" {
		t.Errorf("key = %q", msg.Key)
	}
	if got := msg.GetEventType(); got != config.EventAppointmentCreated {
		t.Errorf("event type = %q", got)
	}
	if got := msg.GetCorrelationID(); got != "req-42" {
		t.Errorf("correlation id = %q", got)
	}
	if msg.Headers[kafka.HeaderSource] != Source || msg.Headers[kafka.HeaderSchemaVersion] != SchemaVersion {
		t.Errorf("headers = %v", msg.Headers)
	}

	var event model.AppointmentEvent
	if err := msg.DecodeValue(&event); err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if event.AppointmentID != "665f1c2a9b1e8a0012345678" || event.Status != config.Confirmed || event.PreviousStatus != "" {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestPublishStatusChanged(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w)

	a := sampleAppointment()
	a.Status = config.Completed
	if err := p.PublishStatusChanged(context.Background(), a, config.Confirmed); err != nil {
		t.Fatalf("PublishStatusChanged: %v", err)
	}

	var event model.AppointmentEvent
	if err := w.messages[0].DecodeValue(&event); err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if event.Status != config.Completed || event.PreviousStatus != config.Confirmed {
		t.Errorf("unexpected event: %+v", event)
	}
	if got := w.messages[0].GetEventType(); got != config.EventAppointmentStatusChanged {
		t.Errorf("event type = %q", got)
	}
}

func TestPublish_WriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaPublisher(&recordingWriter{err: boom})

	err := p.PublishCreated(context.Background(), sampleAppointment())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}
