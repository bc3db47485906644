// Package workflow implements the multi-step booking state machine.
//
// A booking attempt moves through four steps: branch, date and time,
// services with their stylists, and a summary that ends in Commit. Each
// Workflow owns exactly one attempt and guards its state with a mutex, so a
// single instance may be shared between goroutines.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	flowerrors "salonbook/internal/bookingflow/errors"
	"salonbook/pkg/config"
	"salonbook/pkg/model"
)

const (
	StepBranch = iota + 1
	StepDateTime
	StepServices
	StepSummary
)

const (
	FirstStep = StepBranch
	LastStep  = StepSummary
)

// SubmitFunc hands a finalized booking to the appointment sink and returns the new appointment id.
type SubmitFunc func(ctx context.Context, payload *model.AppointmentPayload) (string, error)

// State is the serializable form of a Workflow.
type State struct {
	Selection    model.BookingSelection `json:"selection"`
	IsSubmitting bool                   `json:"is_submitting"`
	LastError    string                 `json:"last_error,omitempty"`
}

type Workflow struct {
	mu         sync.Mutex
	sel        model.BookingSelection
	submitting bool
	lastError  string
}

func New() *Workflow {
	return &Workflow{sel: emptySelection()}
}

func emptySelection() model.BookingSelection {
	return model.BookingSelection{
		Services:           []model.ServiceItem{},
		StylistAssignments: map[string]model.StylistRef{},
		CurrentStep:        FirstStep,
	}
}

// Restore rebuilds a Workflow from a snapshot, rejecting states that break its invariants.
func Restore(state State) (*Workflow, error) {
	sel := copySelection(state.Selection)

	if sel.CurrentStep < FirstStep || sel.CurrentStep > LastStep {
		return nil, flowerrors.Validation("current_step", fmt.Sprintf("must be between %d and %d", FirstStep, LastStep))
	}

	seen := make(map[string]struct{}, len(sel.Services))
	for _, svc := range sel.Services {
		if _, dup := seen[svc.ID]; dup {
			return nil, flowerrors.Validation("services", "duplicate service "+svc.ID)
		}
		seen[svc.ID] = struct{}{}
	}
	for serviceID := range sel.StylistAssignments {
		if _, ok := seen[serviceID]; !ok {
			return nil, flowerrors.Validation("stylist_assignments", "assignment for unselected service "+serviceID)
		}
	}

	return &Workflow{
		sel:        sel,
		submitting: state.IsSubmitting,
		lastError:  state.LastError,
	}, nil
}

func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return State{
		Selection:    copySelection(w.sel),
		IsSubmitting: w.submitting,
		LastError:    w.lastError,
	}
}

func (w *Workflow) Selection() model.BookingSelection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copySelection(w.sel)
}

func (w *Workflow) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel.CurrentStep
}

func (w *Workflow) IsSubmitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

func (w *Workflow) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastError
}

func (w *Workflow) SetBranch(branch model.BranchRef) error {
	required := []struct{ field, value string }{
		{"branch.id", branch.ID},
		{"branch.name", branch.Name},
		{"branch.address", branch.Address},
		{"branch.city", branch.City},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return flowerrors.Validation(r.field, "is required")
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return flowerrors.ErrCommitInProgress
	}

	w.sel.Branch = &branch
	if w.sel.CurrentStep == StepBranch {
		w.sel.CurrentStep = StepDateTime
	}
	w.lastError = ""
	return nil
}

func (w *Workflow) SetDateTime(date, clock string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	if err := validateClock(clock); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return flowerrors.ErrCommitInProgress
	}

	w.sel.Date = date
	w.sel.Time = clock
	if w.sel.CurrentStep < StepServices {
		w.sel.CurrentStep = StepServices
	}
	w.lastError = ""
	return nil
}

func validateDate(date string) error {
	if date == "" {
		return flowerrors.Validation("date", "is required")
	}
	if _, err := time.Parse(config.DateLayout, date); err != nil {
		return flowerrors.Validation("date", "must be a calendar date in YYYY-MM-DD format")
	}
	return nil
}

func validateClock(clock string) error {
	if clock == "" {
		return flowerrors.Validation("time", "is required")
	}
	if len(clock) != len(config.TimeLayout) {
		return flowerrors.Validation("time", "must be in HH:MM 24-hour format")
	}
	if _, err := time.Parse(config.TimeLayout, clock); err != nil {
		return flowerrors.Validation("time", "must be in HH:MM 24-hour format")
	}
	return nil
}

// ToggleService deselects svc when it is already chosen, dropping its stylist
// assignment, and appends it otherwise. It reports whether svc ends up selected.
func (w *Workflow) ToggleService(svc model.ServiceItem) (bool, error) {
	if strings.TrimSpace(svc.ID) == "" {
		return false, flowerrors.Validation("service.id", "is required")
	}
	if svc.Price < 0 {
		return false, flowerrors.Validation("service.price", "cannot be negative")
	}
	if svc.Duration < 0 {
		return false, flowerrors.Validation("service.duration", "cannot be negative")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return false, flowerrors.ErrCommitInProgress
	}

	if i := w.indexOfLocked(svc.ID); i >= 0 {
		w.sel.Services = append(w.sel.Services[:i:i], w.sel.Services[i+1:]...)
		delete(w.sel.StylistAssignments, svc.ID)
		return false, nil
	}

	w.sel.Services = append(w.sel.Services, svc)
	return true, nil
}

func (w *Workflow) IsSelected(serviceID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOfLocked(serviceID) >= 0
}

func (w *Workflow) indexOfLocked(serviceID string) int {
	for i, s := range w.sel.Services {
		if s.ID == serviceID {
			return i
		}
	}
	return -1
}

func (w *Workflow) AssignStylist(serviceID string, stylist model.StylistRef) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return flowerrors.ErrCommitInProgress
	}
	if w.indexOfLocked(serviceID) < 0 {
		return fmt.Errorf("%w: %s", flowerrors.ErrInvalidAssignment, serviceID)
	}
	if strings.TrimSpace(stylist.ID) == "" {
		return flowerrors.Validation("stylist.id", "is required")
	}

	w.sel.StylistAssignments[serviceID] = stylist
	return nil
}

func (w *Workflow) ConfirmServiceSelection() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return flowerrors.ErrCommitInProgress
	}
	if len(w.sel.Services) == 0 {
		return flowerrors.ErrEmptySelection
	}

	w.sel.CurrentStep = StepSummary
	return nil
}

// PreviousStep moves back one step; it is a no-op on the first step.
func (w *Workflow) PreviousStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sel.CurrentStep > FirstStep {
		w.sel.CurrentStep--
	}
	return w.sel.CurrentStep
}

// NextStep moves forward one step; it is a no-op on the last step.
func (w *Workflow) NextStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sel.CurrentStep < LastStep {
		w.sel.CurrentStep++
	}
	return w.sel.CurrentStep
}

func (w *Workflow) SetNotes(notes string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return flowerrors.ErrCommitInProgress
	}
	w.sel.Notes = notes
	return nil
}

func (w *Workflow) Totals() model.Totals {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ComputeTotals(w.sel.Services)
}

func ComputeTotals(services []model.ServiceItem) model.Totals {
	var t model.Totals
	for _, s := range services {
		t.TotalPrice += s.Price
		t.TotalDuration += s.Duration
	}
	return t
}

// Commit submits the booking once. On success the workflow returns to its
// initial state; on failure the selection is kept, LastError is set and the
// error is a *SubmissionError. A second Commit while one is running fails with
// ErrCommitInProgress.
func (w *Workflow) Commit(ctx context.Context, submit SubmitFunc) (string, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return "", flowerrors.ErrCommitInProgress
	}
	if !w.completeLocked() {
		w.mu.Unlock()
		return "", flowerrors.ErrIncompleteBooking
	}
	payload := w.payloadLocked()
	w.submitting = true
	w.mu.Unlock()

	id, err := invokeSubmit(ctx, submit, payload)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.submitting = false
	if err != nil {
		w.lastError = err.Error()
		return "", &flowerrors.SubmissionError{Cause: err}
	}

	w.resetLocked()
	return id, nil
}

func invokeSubmit(ctx context.Context, submit SubmitFunc, payload *model.AppointmentPayload) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("appointment submission panicked: %v", r)
		}
	}()

	id, err = submit(ctx, payload)
	if err == nil && id == "" {
		err = fmt.Errorf("appointment sink returned an empty id")
	}
	return id, err
}

func (w *Workflow) completeLocked() bool {
	return w.sel.Branch != nil &&
		w.sel.Date != "" &&
		w.sel.Time != "" &&
		len(w.sel.Services) > 0
}

// Payload builds the appointment payload for the current selection without committing.
func (w *Workflow) Payload() (*model.AppointmentPayload, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.completeLocked() {
		return nil, flowerrors.ErrIncompleteBooking
	}
	return w.payloadLocked(), nil
}

func (w *Workflow) payloadLocked() *model.AppointmentPayload {
	totals := ComputeTotals(w.sel.Services)

	services := make([]model.ServiceItem, len(w.sel.Services))
	copy(services, w.sel.Services)

	assignments := make([]model.StylistAssignment, 0, len(w.sel.StylistAssignments))
	for _, svc := range w.sel.Services {
		stylist, ok := w.sel.StylistAssignments[svc.ID]
		if !ok {
			continue
		}
		assignments = append(assignments, model.StylistAssignment{
			ServiceID:   svc.ID,
			StylistID:   stylist.ID,
			StylistName: stylist.Name,
			FirstName:   stylist.FirstName,
			LastName:    stylist.LastName,
		})
	}

	return &model.AppointmentPayload{
		BranchID:           w.sel.Branch.ID,
		BranchName:         w.sel.Branch.Name,
		Services:           services,
		StylistAssignments: assignments,
		Date:               w.sel.Date,
		Time:               w.sel.Time,
		TotalCost:          totals.TotalPrice,
		TotalDuration:      totals.TotalDuration,
		Status:             config.Pending,
		Notes:              w.sel.Notes,
	}
}

// Reset abandons the attempt and restores the initial empty state.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.resetLocked()
	w.submitting = false
}

func (w *Workflow) resetLocked() {
	w.sel = emptySelection()
	w.lastError = ""
}

func copySelection(sel model.BookingSelection) model.BookingSelection {
	out := sel
	if sel.Branch != nil {
		b := *sel.Branch
		out.Branch = &b
	}

	out.Services = make([]model.ServiceItem, len(sel.Services))
	copy(out.Services, sel.Services)

	out.StylistAssignments = make(map[string]model.StylistRef, len(sel.StylistAssignments))
	for k, v := range sel.StylistAssignments {
		out.StylistAssignments[k] = v
	}
	return out
}
