package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	appointmentserrors "salonbook/internal/appointments/errors"
	"salonbook/internal/appointments/events"
	"salonbook/internal/appointments/repository"
	"salonbook/internal/appointments/validator"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/metrics"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("salonbook.internal.appointments.service")

const releaseTimeout = 5 * time.Second

// transitions lists the statuses each status may move to.
var transitions = map[string][]string{
	config.Pending:   {config.Confirmed, config.Cancelled},
	config.Confirmed: {config.Completed, config.Cancelled, config.NoShow},
}

type AppointmentService interface {
	Create(ctx context.Context, payload *model.AppointmentPayload) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	ListByBranch(ctx context.Context, branchID, date string) ([]*model.Appointment, error)
	ListByStylist(ctx context.Context, stylistID, date string) ([]*model.Appointment, error)
	ListByClient(ctx context.Context, clientID string) ([]*model.Appointment, error)
	UpdateStatus(ctx context.Context, id string, update *model.AppointmentStatusUpdate) (*model.Appointment, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	locks     repository.LockRepository
	publisher events.Publisher
	validator *validator.AppointmentValidator
	metrics   *metrics.AppointmentMetrics
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	locks repository.LockRepository,
	publisher events.Publisher,
	validator *validator.AppointmentValidator,
	m *metrics.AppointmentMetrics,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		locks:     locks,
		publisher: publisher,
		validator: validator,
		metrics:   m,
		cfg:       cfg,
	}
}

func (s *appointmentService) Create(ctx context.Context, payload *model.AppointmentPayload) (appt *model.Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointments.create", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	defer func() {
		s.metrics.ObserveCreated(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "create failed")
		}
	}()

	s.applyDefaults(payload)
	s.sanitize(payload)
	if err := s.validate(payload); err != nil {
		return nil, err
	}

	appt, err = newAppointment(payload)
	if err != nil {
		return nil, apperrors.Validation("Invalid appointment time", map[string]any{"error": err.Error()})
	}
	span.SetAttributes(
		attribute.String("appointment.branch_id", appt.BranchID),
		attribute.String("appointment.date", appt.Date),
		attribute.StringSlice("appointment.stylist_ids", appt.StylistIDs),
	)

	lockIDs, err := s.acquireSlotLocks(ctx, appt.StylistIDs, appt.Date)
	if err != nil {
		return nil, err
	}
	defer s.releaseSlotLocks(ctx, lockIDs)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyAvailability(sessCtx, appt); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, appt); err != nil {
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create appointment",
			"branch_id", appt.BranchID,
			"date", appt.Date,
			"time", appt.Time,
			"error", err,
		)
		return nil, err
	}

	span.SetAttributes(attribute.String("appointment.id", appt.ID))
	s.cfg.Log.Info("Appointment created successfully",
		"id", appt.ID,
		"branch_id", appt.BranchID,
		"client_id", appt.ClientID,
		"start_time", appt.StartTime,
	)

	if pubErr := s.publisher.PublishCreated(ctx, appt); pubErr != nil {
		s.cfg.Log.Warn("Failed to publish appointment created event", "id", appt.ID, "error", pubErr)
	}
	return appt, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(id, err)
	}
	return appt, nil
}

func (s *appointmentService) ListByBranch(ctx context.Context, branchID, date string) ([]*model.Appointment, error) {
	if branchID == "" {
		return nil, apperrors.InvalidInput("Branch ID cannot be empty")
	}
	if err := checkDate(date); err != nil {
		return nil, err
	}

	appts, err := s.repo.FindByBranch(ctx, branchID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to list branch appointments", "branch_id", branchID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}
	return appts, nil
}

func (s *appointmentService) ListByStylist(ctx context.Context, stylistID, date string) ([]*model.Appointment, error) {
	if stylistID == "" {
		return nil, apperrors.InvalidInput("Stylist ID cannot be empty")
	}
	if err := checkDate(date); err != nil {
		return nil, err
	}

	appts, err := s.repo.FindByStylist(ctx, stylistID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to list stylist appointments", "stylist_id", stylistID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}
	return appts, nil
}

func (s *appointmentService) ListByClient(ctx context.Context, clientID string) ([]*model.Appointment, error) {
	if clientID == "" {
		return nil, apperrors.InvalidInput("Client ID cannot be empty")
	}

	appts, err := s.repo.FindByClient(ctx, clientID)
	if err != nil {
		s.cfg.Log.Error("Failed to list client appointments", "client_id", clientID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}
	return appts, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, id string, update *model.AppointmentStatusUpdate) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		return nil, validationError("Invalid status update", err)
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(id, err)
	}

	from, to := appt.Status, update.Status
	if !CanTransition(from, to) {
		return nil, apperrors.Wrap(appointmentserrors.ErrInvalidTransition, apperrors.CodeValidation,
			fmt.Sprintf("Cannot change appointment status from %s to %s", from, to),
			http.StatusUnprocessableEntity,
		).WithDetails(map[string]any{"from": from, "to": to})
	}

	if err := s.repo.UpdateStatus(ctx, id, from, to); err != nil {
		return nil, s.mapRepoError(id, err)
	}

	s.metrics.ObserveTransition(from, to)
	s.cfg.Log.Info("Appointment status updated", "id", id, "from", from, "to", to)

	appt.Status = to
	appt.UpdatedAt = time.Now().UTC()
	if pubErr := s.publisher.PublishStatusChanged(ctx, appt, from); pubErr != nil {
		s.cfg.Log.Warn("Failed to publish appointment status event", "id", id, "error", pubErr)
	}
	return appt, nil
}

// CanTransition reports whether an appointment in status from may move to to.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// --- Helpers ---

func (s *appointmentService) applyDefaults(p *model.AppointmentPayload) {
	if p.Status == "" {
		p.Status = config.Pending
	}
	if p.CreatedBy == "" {
		p.CreatedBy = p.ClientID
	}
}

func (s *appointmentService) sanitize(p *model.AppointmentPayload) {
	p.ClientID = strings.TrimSpace(p.ClientID)
	p.ClientFirstName = sanitizer.SanitizeName(p.ClientFirstName)
	p.ClientLastName = sanitizer.SanitizeName(p.ClientLastName)
	if phone := sanitizer.SanitizePhone(p.ClientContact); phone != "" {
		p.ClientContact = phone
	}
	p.BranchID = strings.TrimSpace(p.BranchID)
	p.BranchName = sanitizer.SanitizeName(p.BranchName)
	p.Notes = sanitizer.SanitizeNotes(p.Notes)
	for i := range p.StylistAssignments {
		p.StylistAssignments[i].ServiceID = strings.TrimSpace(p.StylistAssignments[i].ServiceID)
		p.StylistAssignments[i].StylistID = strings.TrimSpace(p.StylistAssignments[i].StylistID)
	}
}

func (s *appointmentService) validate(p *model.AppointmentPayload) error {
	if err := s.validator.ValidatePayload(p); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "client_id", p.ClientID, "error", err)
		return validationError("Appointment validation failed", err)
	}
	return nil
}

func validationError(message string, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return apperrors.Validation(message, ve.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

// newAppointment builds the stored form of p. Date and time are read as UTC
// wall-clock values of the branch.
func newAppointment(p *model.AppointmentPayload) (*model.Appointment, error) {
	start, err := time.ParseInLocation(config.DateLayout+" "+config.TimeLayout, p.Date+" "+p.Time, time.UTC)
	if err != nil {
		return nil, err
	}

	return &model.Appointment{
		ClientID:           p.ClientID,
		ClientFirstName:    p.ClientFirstName,
		ClientLastName:     p.ClientLastName,
		ClientContact:      p.ClientContact,
		BranchID:           p.BranchID,
		BranchName:         p.BranchName,
		Services:           append([]model.ServiceItem(nil), p.Services...),
		StylistAssignments: append([]model.StylistAssignment(nil), p.StylistAssignments...),
		StylistIDs:         stylistIDs(p.StylistAssignments),
		Date:               p.Date,
		Time:               p.Time,
		StartTime:          start,
		EndTime:            start.Add(time.Duration(p.TotalDuration) * time.Minute),
		TotalCost:          p.TotalCost,
		TotalDuration:      p.TotalDuration,
		Status:             p.Status,
		CreatedBy:          p.CreatedBy,
		Notes:              p.Notes,
	}, nil
}

// stylistIDs returns the distinct assigned stylists in sorted order, which is
// also the order their slot locks are taken in.
func stylistIDs(assignments []model.StylistAssignment) []string {
	seen := make(map[string]bool, len(assignments))
	ids := []string{}
	for _, a := range assignments {
		if !seen[a.StylistID] {
			seen[a.StylistID] = true
			ids = append(ids, a.StylistID)
		}
	}
	sort.Strings(ids)
	return ids
}

func checkDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(config.DateLayout, date); err != nil || len(date) != len(config.DateLayout) {
		return apperrors.InvalidInput("date must use the YYYY-MM-DD format")
	}
	return nil
}

func (s *appointmentService) verifyAvailability(ctx context.Context, appt *model.Appointment) error {
	for _, stylistID := range appt.StylistIDs {
		existing, err := s.repo.FindByStylist(ctx, stylistID, appt.Date)
		if err != nil {
			return apperrors.Internal("Failed to check existing appointments", err)
		}
		for _, other := range existing {
			if overlaps(other.StartTime, other.EndTime, appt.StartTime, appt.EndTime) {
				s.metrics.ObserveSlotConflict()
				return apperrors.Wrap(appointmentserrors.ErrSlotTaken, apperrors.CodeConflict,
					fmt.Sprintf("Stylist %s is already booked from %s to %s",
						stylistID,
						other.StartTime.Format(config.TimeLayout),
						other.EndTime.Format(config.TimeLayout),
					),
					http.StatusConflict,
				)
			}
		}
	}
	return nil
}

func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

func slotLockID(stylistID, date string) string {
	return fmt.Sprintf("appointment_lock_%s_%s", stylistID, date)
}

// acquireSlotLocks takes one lock per stylist and day. On failure the locks
// already taken are released before returning.
func (s *appointmentService) acquireSlotLocks(ctx context.Context, stylistIDs []string, date string) ([]string, error) {
	acquired := make([]string, 0, len(stylistIDs))
	for _, stylistID := range stylistIDs {
		lockID := slotLockID(stylistID, date)
		if err := s.locks.Acquire(ctx, lockID, s.cfg.SlotLockTTL); err != nil {
			s.releaseSlotLocks(ctx, acquired)
			if errors.Is(err, appointmentserrors.ErrLockHeld) {
				s.metrics.ObserveSlotConflict()
				return nil, apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
			}
			return nil, apperrors.Internal("Failed to acquire appointment lock", err)
		}
		acquired = append(acquired, lockID)
	}
	return acquired, nil
}

func (s *appointmentService) releaseSlotLocks(ctx context.Context, lockIDs []string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	for _, lockID := range lockIDs {
		if err := s.locks.Release(ctx, lockID); err != nil {
			s.cfg.Log.Warn("Failed to release appointment lock", "lock_id", lockID, "error", err)
		}
	}
}

func (s *appointmentService) mapRepoError(id string, err error) error {
	switch {
	case errors.Is(err, appointmentserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Appointment", id)
	case errors.Is(err, appointmentserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid appointment ID format")
	case errors.Is(err, appointmentserrors.ErrStatusChanged):
		return apperrors.Conflict("Appointment status was changed by another request")
	}

	s.cfg.Log.Error("Appointment repository call failed", "id", id, "error", err)
	return apperrors.Internal("Failed to access appointment", err)
}
