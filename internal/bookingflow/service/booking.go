package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	flowerrors "salonbook/internal/bookingflow/errors"
	"salonbook/internal/bookingflow/session"
	"salonbook/internal/bookingflow/validator"
	"salonbook/internal/bookingflow/workflow"
	"salonbook/pkg/client"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/metrics"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("salonbook.internal.bookingflow.service")

const (
	releaseTimeout    = 5 * time.Second
	releaseAttempts   = 3
	releaseBackoff    = 100 * time.Millisecond
	defaultClaimLease = time.Minute
)

// errClaimLost means the session was reset or replaced while a commit was in flight.
var errClaimLost = errors.New("commit claim no longer held")

// CatalogProvider is the read side of the catalog the flow resolves ids against.
type CatalogProvider interface {
	ListBranches(ctx context.Context) ([]model.Branch, error)
	ListServices(ctx context.Context, branchID string) ([]model.SalonService, error)
	ListStylists(ctx context.Context, branchID string, availableOnly bool) ([]model.Stylist, error)
	GetBranch(ctx context.Context, id string) (*model.Branch, error)
	GetService(ctx context.Context, id string) (*model.SalonService, error)
	GetStylist(ctx context.Context, id string) (*model.Stylist, error)
}

// AppointmentSink persists a finalized booking and returns its id.
type AppointmentSink interface {
	CreateAppointment(ctx context.Context, payload *model.AppointmentPayload) (string, error)
}

// SessionView is the client facing state of one booking session.
type SessionView struct {
	ID           string                 `json:"id"`
	Client       model.ClientIdentity   `json:"client"`
	Selection    model.BookingSelection `json:"selection"`
	Totals       model.Totals           `json:"totals"`
	IsSubmitting bool                   `json:"is_submitting"`
	LastError    string                 `json:"last_error,omitempty"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type BookingService interface {
	Start(ctx context.Context, req *model.StartSessionRequest) (*SessionView, error)
	Get(ctx context.Context, id string) (*SessionView, error)
	Abandon(ctx context.Context, id string) error

	SetBranch(ctx context.Context, id string, req *model.SetBranchRequest) (*SessionView, error)
	SetDateTime(ctx context.Context, id string, req *model.SetDateTimeRequest) (*SessionView, error)
	ToggleService(ctx context.Context, id, serviceID string) (*SessionView, error)
	AssignStylist(ctx context.Context, id, serviceID string, req *model.AssignStylistRequest) (*SessionView, error)
	ConfirmServices(ctx context.Context, id string) (*SessionView, error)
	PreviousStep(ctx context.Context, id string) (*SessionView, error)
	NextStep(ctx context.Context, id string) (*SessionView, error)
	SetNotes(ctx context.Context, id string, req *model.SetNotesRequest) (*SessionView, error)
	Totals(ctx context.Context, id string) (*model.Totals, error)
	Commit(ctx context.Context, id string) (*model.CommitResult, error)
	Reset(ctx context.Context, id string) (*SessionView, error)

	ListBranches(ctx context.Context) ([]model.Branch, error)
	ListServices(ctx context.Context, id string) ([]model.SalonService, error)
	ListStylists(ctx context.Context, id, serviceID string) ([]model.Stylist, error)
}

type bookingService struct {
	store     session.Store
	catalog   CatalogProvider
	sink      AppointmentSink
	validator *validator.SelectionValidator
	metrics   *metrics.BookingMetrics
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	store session.Store,
	catalog CatalogProvider,
	sink AppointmentSink,
	validator *validator.SelectionValidator,
	m *metrics.BookingMetrics,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		store:     store,
		catalog:   catalog,
		sink:      sink,
		validator: validator,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) Start(ctx context.Context, req *model.StartSessionRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, s.mapError("start", err)
	}

	identity := model.ClientIdentity{
		ClientID:  strings.TrimSpace(req.ClientID),
		FirstName: sanitizer.SanitizeName(req.FirstName),
		LastName:  sanitizer.SanitizeName(req.LastName),
		Contact:   sanitizer.SanitizePhone(req.Contact),
	}
	if identity.Contact == "" {
		return nil, apperrors.Validation("Client contact is not a valid phone number", map[string]any{
			"contact": "must be a valid phone number",
		})
	}
	if identity.ClientID == "" {
		identity.ClientID = "guest-" + uuid.NewString()
	}

	sess := session.New(identity, s.now())
	if err := s.store.Create(ctx, sess); err != nil {
		s.cfg.Log.Error("Failed to create booking session", "client_id", identity.ClientID, "error", err)
		return nil, apperrors.Internal("Failed to start booking session", err)
	}

	s.metrics.ObserveSessionStarted()
	s.cfg.Log.Info("Booking session started",
		"session_id", sess.ID,
		"client_id", identity.ClientID,
	)
	return view(sess), nil
}

func (s *bookingService) Get(ctx context.Context, id string) (*SessionView, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, s.mapError("get", err)
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.mapError("get", err)
	}
	sess.ReleaseStaleClaim(s.now())
	return view(sess), nil
}

func (s *bookingService) Abandon(ctx context.Context, id string) error {
	if err := session.ValidateID(id); err != nil {
		return s.mapError("abandon", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.mapError("abandon", err)
	}
	s.cfg.Log.Info("Booking session abandoned", "session_id", id)
	return nil
}

func (s *bookingService) SetBranch(ctx context.Context, id string, req *model.SetBranchRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, s.mapError("set_branch", err)
	}

	branchID := strings.TrimSpace(req.BranchID)
	branch, err := s.catalog.GetBranch(ctx, branchID)
	if err != nil {
		return nil, s.mapCatalogError("set_branch", "Branch", branchID, err)
	}
	if !branch.IsActive {
		return nil, s.observe("set_branch", apperrors.Validation("Branch is not accepting bookings", map[string]any{
			"branch_id": branchID,
		}))
	}

	ref := model.BranchRef{
		ID:      branch.ID,
		Name:    branch.Name,
		Address: branch.Address,
		City:    branch.City,
	}
	return s.mutate(ctx, "set_branch", id, func(w *workflow.Workflow) error {
		return w.SetBranch(ref)
	})
}

func (s *bookingService) SetDateTime(ctx context.Context, id string, req *model.SetDateTimeRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, s.mapError("set_datetime", err)
	}
	return s.mutate(ctx, "set_datetime", id, func(w *workflow.Workflow) error {
		return w.SetDateTime(strings.TrimSpace(req.Date), strings.TrimSpace(req.Time))
	})
}

func (s *bookingService) ToggleService(ctx context.Context, id, serviceID string) (*SessionView, error) {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	current, err := s.load(ctx, "toggle_service", id)
	if err != nil {
		return nil, err
	}
	branch := current.State.Selection.Branch

	// Deselecting never needs the catalog.
	selected := slices.ContainsFunc(current.State.Selection.Services, func(item model.ServiceItem) bool {
		return item.ID == serviceID
	})

	item := model.ServiceItem{ID: serviceID}
	if !selected {
		if branch == nil {
			return nil, s.observe("toggle_service", apperrors.Validation("A branch must be chosen before services", map[string]any{
				"branch": "is required",
			}))
		}

		svc, err := s.catalog.GetService(ctx, serviceID)
		if err != nil {
			return nil, s.mapCatalogError("toggle_service", "Service", serviceID, err)
		}
		if svc.BranchID != branch.ID {
			return nil, s.observe("toggle_service", apperrors.Validation("Service is not offered at the chosen branch", map[string]any{
				"service_id": serviceID,
				"branch_id":  branch.ID,
			}))
		}
		item = model.ServiceItem{
			ID:       svc.ID,
			Name:     svc.Name,
			Price:    svc.Price,
			Duration: svc.Duration,
			Category: svc.Category,
		}
	}

	return s.mutate(ctx, "toggle_service", id, func(w *workflow.Workflow) error {
		if w.IsSelected(serviceID) != selected {
			return flowerrors.ErrConcurrentUpdate
		}
		_, err := w.ToggleService(item)
		return err
	})
}

func (s *bookingService) AssignStylist(ctx context.Context, id, serviceID string, req *model.AssignStylistRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, s.mapError("assign_stylist", err)
	}

	current, err := s.load(ctx, "assign_stylist", id)
	if err != nil {
		return nil, err
	}

	stylistID := strings.TrimSpace(req.StylistID)
	stylist, err := s.catalog.GetStylist(ctx, stylistID)
	if err != nil {
		return nil, s.mapCatalogError("assign_stylist", "Stylist", stylistID, err)
	}

	if branch := current.State.Selection.Branch; branch != nil && stylist.BranchID != branch.ID {
		return nil, s.observe("assign_stylist", apperrors.Validation("Stylist does not work at the chosen branch", map[string]any{
			"stylist_id": stylistID,
			"branch_id":  branch.ID,
		}))
	}
	if !stylist.IsAvailable {
		return nil, s.observe("assign_stylist", apperrors.Validation("Stylist is not available", map[string]any{
			"stylist_id": stylistID,
		}))
	}
	if len(stylist.ServiceIDs) > 0 && !slices.Contains(stylist.ServiceIDs, serviceID) {
		return nil, s.observe("assign_stylist", apperrors.Validation("Stylist does not perform this service", map[string]any{
			"stylist_id": stylistID,
			"service_id": serviceID,
		}))
	}

	ref := model.StylistRef{
		ID:        stylist.ID,
		Name:      stylist.Name,
		FirstName: stylist.FirstName,
		LastName:  stylist.LastName,
	}
	return s.mutate(ctx, "assign_stylist", id, func(w *workflow.Workflow) error {
		return w.AssignStylist(serviceID, ref)
	})
}

func (s *bookingService) ConfirmServices(ctx context.Context, id string) (*SessionView, error) {
	return s.mutate(ctx, "confirm_services", id, func(w *workflow.Workflow) error {
		return w.ConfirmServiceSelection()
	})
}

func (s *bookingService) PreviousStep(ctx context.Context, id string) (*SessionView, error) {
	return s.mutate(ctx, "previous_step", id, func(w *workflow.Workflow) error {
		w.PreviousStep()
		return nil
	})
}

func (s *bookingService) NextStep(ctx context.Context, id string) (*SessionView, error) {
	return s.mutate(ctx, "next_step", id, func(w *workflow.Workflow) error {
		w.NextStep()
		return nil
	})
}

func (s *bookingService) SetNotes(ctx context.Context, id string, req *model.SetNotesRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, s.mapError("set_notes", err)
	}
	notes := sanitizer.SanitizeNotes(req.Notes)
	return s.mutate(ctx, "set_notes", id, func(w *workflow.Workflow) error {
		return w.SetNotes(notes)
	})
}

func (s *bookingService) Totals(ctx context.Context, id string) (*model.Totals, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &v.Totals, nil
}

func (s *bookingService) Reset(ctx context.Context, id string) (*SessionView, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, s.mapError("reset", err)
	}

	sess, err := s.store.Update(ctx, id, func(sess *session.Session) error {
		sess.State = workflow.New().Snapshot()
		sess.Claim = nil
		return nil
	})
	if err != nil {
		return nil, s.mapError("reset", err)
	}

	s.metrics.ObserveOperation("reset", nil)
	s.cfg.Log.Info("Booking session reset", "session_id", id)
	return view(sess), nil
}

// Commit claims the session, submits the booking and stores the outcome.
// The claim is persisted before the sink is called, so a second commit on
// the same session fails with a conflict even on another replica. The claim
// is leased: if the outcome cannot be written back, the session frees itself
// once the lease runs out.
func (s *bookingService) Commit(ctx context.Context, id string) (*model.CommitResult, error) {
	started := s.now()
	ctx, span := tracer.Start(ctx, "bookingflow.commit", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("booking.session_id", id))

	if err := session.ValidateID(id); err != nil {
		return nil, s.mapError("commit", err)
	}

	claim := &session.CommitClaim{
		Token:     uuid.NewString(),
		ExpiresAt: started.Add(s.claimLease()),
	}
	var claimed workflow.State
	var identity model.ClientIdentity
	_, err := s.store.Update(ctx, id, func(sess *session.Session) error {
		if sess.ReleaseStaleClaim(s.now()) {
			s.cfg.Log.Warn("Released expired booking commit claim", "session_id", id)
		}
		w, err := workflow.Restore(sess.State)
		if err != nil {
			return err
		}
		if w.IsSubmitting() {
			return flowerrors.ErrCommitInProgress
		}
		if _, err := w.Payload(); err != nil {
			return err
		}
		claimed = w.Snapshot()
		identity = sess.Client
		sess.State.IsSubmitting = true
		sess.Claim = claim
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveCommit(err, s.now().Sub(started).Seconds())
		return nil, s.mapError("commit", err)
	}

	w, err := workflow.Restore(claimed)
	if err != nil {
		return nil, s.mapError("commit", err)
	}

	appointmentID, commitErr := w.Commit(ctx, s.submitFor(identity))

	released := true
	switch err := s.release(ctx, id, claim.Token, w.Snapshot()); {
	case err == nil:
	case errors.Is(err, errClaimLost), errors.Is(err, flowerrors.ErrSessionNotFound):
		s.cfg.Log.Info("Booking session changed during commit, outcome not stored",
			"session_id", id,
			"appointment_id", appointmentID,
		)
	default:
		released = false
		s.cfg.Log.Error("Failed to store booking session after commit",
			"session_id", id,
			"appointment_id", appointmentID,
			"claim_expires_at", claim.ExpiresAt,
			"error", err,
		)
	}

	s.metrics.ObserveCommit(commitErr, s.now().Sub(started).Seconds())

	if commitErr != nil {
		span.RecordError(commitErr)
		span.SetStatus(codes.Error, "commit failed")
		s.cfg.Log.Warn("Booking commit failed",
			"session_id", id,
			"client_id", identity.ClientID,
			"error", commitErr,
		)
		mapped := s.mapError("commit", commitErr)
		var appErr *apperrors.AppError
		if !released && errors.As(mapped, &appErr) {
			appErr.WithDetails(map[string]any{
				"session_released":    false,
				"retry_after_seconds": max(0, int(claim.ExpiresAt.Sub(s.now()).Seconds())),
			})
		}
		return nil, mapped
	}

	span.SetAttributes(attribute.String("booking.appointment_id", appointmentID))
	s.cfg.Log.Info("Booking committed",
		"session_id", id,
		"appointment_id", appointmentID,
		"client_id", identity.ClientID,
	)
	return &model.CommitResult{AppointmentID: appointmentID, SessionID: id, SessionReleased: released}, nil
}

// release writes the commit outcome back while token still holds the claim.
// Transient store failures are retried within releaseTimeout.
func (s *bookingService) release(ctx context.Context, id, token string, state workflow.State) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= releaseAttempts; attempt++ {
		_, err = s.store.Update(ctx, id, func(sess *session.Session) error {
			if !sess.Holds(token) {
				return errClaimLost
			}
			sess.State = state
			sess.Claim = nil
			return nil
		})
		if err == nil || errors.Is(err, errClaimLost) || errors.Is(err, flowerrors.ErrSessionNotFound) {
			return err
		}
		if attempt == releaseAttempts {
			break
		}
		s.cfg.Log.Warn("Retrying booking session release",
			"session_id", id,
			"attempt", attempt,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * releaseBackoff):
		}
	}
	return err
}

// claimLease outlives a request that runs to its deadline plus the release.
func (s *bookingService) claimLease() time.Duration {
	if s.cfg.RequestTimeout > 0 {
		return s.cfg.RequestTimeout + releaseTimeout
	}
	return defaultClaimLease
}

func (s *bookingService) submitFor(identity model.ClientIdentity) workflow.SubmitFunc {
	return func(ctx context.Context, payload *model.AppointmentPayload) (string, error) {
		payload.ClientID = identity.ClientID
		payload.ClientFirstName = identity.FirstName
		payload.ClientLastName = identity.LastName
		payload.ClientContact = identity.Contact
		payload.CreatedBy = identity.ClientID
		return s.sink.CreateAppointment(ctx, payload)
	}
}

func (s *bookingService) ListBranches(ctx context.Context) ([]model.Branch, error) {
	branches, err := s.catalog.ListBranches(ctx)
	if err != nil {
		return nil, s.mapCatalogError("list_branches", "Branches", "", err)
	}

	active := make([]model.Branch, 0, len(branches))
	for _, b := range branches {
		if b.IsActive {
			active = append(active, b)
		}
	}
	return active, nil
}

func (s *bookingService) ListServices(ctx context.Context, id string) ([]model.SalonService, error) {
	branchID, err := s.sessionBranch(ctx, "list_services", id)
	if err != nil {
		return nil, err
	}

	services, err := s.catalog.ListServices(ctx, branchID)
	if err != nil {
		return nil, s.mapCatalogError("list_services", "Services", branchID, err)
	}
	return services, nil
}

// ListStylists returns the available stylists of the session branch, narrowed
// to those performing serviceID when it is set.
func (s *bookingService) ListStylists(ctx context.Context, id, serviceID string) ([]model.Stylist, error) {
	branchID, err := s.sessionBranch(ctx, "list_stylists", id)
	if err != nil {
		return nil, err
	}

	stylists, err := s.catalog.ListStylists(ctx, branchID, true)
	if err != nil {
		return nil, s.mapCatalogError("list_stylists", "Stylists", branchID, err)
	}
	if serviceID == "" {
		return stylists, nil
	}

	out := make([]model.Stylist, 0, len(stylists))
	for _, st := range stylists {
		if len(st.ServiceIDs) == 0 || slices.Contains(st.ServiceIDs, serviceID) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *bookingService) sessionBranch(ctx context.Context, op, id string) (string, error) {
	sess, err := s.load(ctx, op, id)
	if err != nil {
		return "", err
	}
	if sess.State.Selection.Branch == nil {
		return "", s.observe(op, apperrors.Validation("A branch must be chosen first", map[string]any{
			"branch": "is required",
		}))
	}
	return sess.State.Selection.Branch.ID, nil
}

func (s *bookingService) load(ctx context.Context, op, id string) (*session.Session, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, s.mapError(op, err)
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(op, err)
	}
	sess.ReleaseStaleClaim(s.now())
	return sess, nil
}

// mutate applies fn to the session's workflow atomically and stores the result.
func (s *bookingService) mutate(ctx context.Context, op, id string, fn func(w *workflow.Workflow) error) (*SessionView, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, s.mapError(op, err)
	}

	sess, err := s.store.Update(ctx, id, func(sess *session.Session) error {
		sess.ReleaseStaleClaim(s.now())
		w, err := workflow.Restore(sess.State)
		if err != nil {
			return err
		}
		if err := fn(w); err != nil {
			return err
		}
		sess.State = w.Snapshot()
		return nil
	})
	if err != nil {
		return nil, s.mapError(op, err)
	}

	s.metrics.ObserveOperation(op, nil)
	return view(sess), nil
}

func (s *bookingService) observe(op string, err error) error {
	s.metrics.ObserveOperation(op, err)
	return err
}

func (s *bookingService) mapCatalogError(op, resource, id string, err error) error {
	s.metrics.ObserveOperation(op, err)

	switch {
	case errors.Is(err, client.ErrNotFound):
		if id == "" {
			return apperrors.NotFound(resource)
		}
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Catalog lookup timed out")
	}

	s.cfg.Log.Error("Catalog lookup failed",
		"operation", op,
		"resource", resource,
		"id", id,
		"error", err,
	)
	return apperrors.Unavailable("Catalog service")
}

func (s *bookingService) mapError(op string, err error) error {
	s.metrics.ObserveOperation(op, err)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.Validation("Booking request validation failed", fieldErrs.Details())
	}

	var flowErr *flowerrors.ValidationError
	if errors.As(err, &flowErr) {
		return apperrors.Validation("Booking input is invalid", map[string]any{
			flowErr.Field: flowErr.Message,
		})
	}

	var subErr *flowerrors.SubmissionError
	if errors.As(err, &subErr) {
		return apperrors.SubmissionFailed("Appointment could not be created, the booking was kept", subErr)
	}

	switch {
	case errors.Is(err, flowerrors.ErrInvalidSessionID):
		return apperrors.InvalidInput("Invalid booking session ID format")
	case errors.Is(err, flowerrors.ErrSessionNotFound):
		return apperrors.NotFound("Booking session")
	case errors.Is(err, flowerrors.ErrInvalidAssignment):
		return apperrors.Validation("Stylist can only be assigned to a selected service", map[string]any{
			"reason": "invalid_assignment",
		})
	case errors.Is(err, flowerrors.ErrEmptySelection):
		return apperrors.Validation("At least one service must be selected", map[string]any{
			"reason": "empty_selection",
		})
	case errors.Is(err, flowerrors.ErrIncompleteBooking):
		return apperrors.Validation("Booking is incomplete", map[string]any{
			"reason": "incomplete_booking",
		})
	case errors.Is(err, flowerrors.ErrValidation):
		return apperrors.Validation("Booking input is invalid", nil)
	case errors.Is(err, flowerrors.ErrCommitInProgress):
		return apperrors.Conflict("A commit is already in progress for this booking")
	case errors.Is(err, flowerrors.ErrConcurrentUpdate):
		return apperrors.Conflict("Booking session is being modified, retry the request")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Booking session store timed out")
	}

	s.cfg.Log.Error("Booking flow operation failed",
		"operation", op,
		"error", err,
	)
	return apperrors.Internal(fmt.Sprintf("Failed to %s", strings.ReplaceAll(op, "_", " ")), err)
}

func view(sess *session.Session) *SessionView {
	return &SessionView{
		ID:           sess.ID,
		Client:       sess.Client,
		Selection:    sess.State.Selection,
		Totals:       workflow.ComputeTotals(sess.State.Selection.Services),
		IsSubmitting: sess.State.IsSubmitting,
		LastError:    sess.State.LastError,
		UpdatedAt:    sess.UpdatedAt,
	}
}
