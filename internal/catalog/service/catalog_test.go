package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	catalogerrors "salonbook/internal/catalog/errors"
	"salonbook/internal/catalog/validator"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

// ────────────────────────────────────────────────
// In-memory repositories for testing
// ────────────────────────────────────────────────

const (
	branchID      = "65f1a2b3c4d5e6f708192a3b"
	otherBranchID = "65f1a2b3c4d5e6f708192a3c"
	serviceID     = "65f1a2b3c4d5e6f708192a40"
	otherService  = "65f1a2b3c4d5e6f708192a41"
)

type mockBranchRepository struct {
	items   map[string]*model.Branch
	findErr error
}

func (m *mockBranchRepository) Create(ctx context.Context, b *model.Branch) error {
	b.ID = fmt.Sprintf("%024d", len(m.items)+1)
	m.items[b.ID] = b
	return nil
}

func (m *mockBranchRepository) FindByID(ctx context.Context, id string) (*model.Branch, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if b, ok := m.items[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", catalogerrors.ErrBranchNotFound, id)
}

func (m *mockBranchRepository) FindAll(ctx context.Context, activeOnly bool) ([]*model.Branch, error) {
	var out []*model.Branch
	for _, b := range m.items {
		if !activeOnly || b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockServiceRepository struct {
	items map[string]*model.SalonService
}

func (m *mockServiceRepository) Create(ctx context.Context, s *model.SalonService) error {
	s.ID = fmt.Sprintf("s%023d", len(m.items)+1)
	m.items[s.ID] = s
	return nil
}

func (m *mockServiceRepository) FindByID(ctx context.Context, id string) (*model.SalonService, error) {
	if s, ok := m.items[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", catalogerrors.ErrServiceNotFound, id)
}

func (m *mockServiceRepository) FindByBranch(ctx context.Context, branchID string) ([]*model.SalonService, error) {
	var out []*model.SalonService
	for _, s := range m.items {
		if s.BranchID == branchID {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockStylistRepository struct {
	items map[string]*model.Stylist
}

func (m *mockStylistRepository) Create(ctx context.Context, s *model.Stylist) error {
	s.ID = fmt.Sprintf("t%023d", len(m.items)+1)
	m.items[s.ID] = s
	return nil
}

func (m *mockStylistRepository) FindByID(ctx context.Context, id string) (*model.Stylist, error) {
	if s, ok := m.items[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", catalogerrors.ErrStylistNotFound, id)
}

func (m *mockStylistRepository) FindByBranch(ctx context.Context, branchID string, availableOnly bool) ([]*model.Stylist, error) {
	var out []*model.Stylist
	for _, s := range m.items {
		if s.BranchID == branchID && (!availableOnly || s.IsAvailable) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStylistRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	s, ok := m.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", catalogerrors.ErrStylistNotFound, id)
	}
	s.IsAvailable = available
	return nil
}

type fixture struct {
	svc      CatalogService
	branches *mockBranchRepository
	services *mockServiceRepository
	stylists *mockStylistRepository
}

func newFixture() *fixture {
	f := &fixture{
		branches: &mockBranchRepository{items: map[string]*model.Branch{
			branchID:      {ID: branchID, Name: "Downtown", Address: "1 Main St", City: "Haifa", IsActive: true},
			otherBranchID: {ID: otherBranchID, Name: "Old Town", Address: "2 Side St", City: "Haifa", IsActive: false},
		}},
		services: &mockServiceRepository{items: map[string]*model.SalonService{
			serviceID:    {ID: serviceID, BranchID: branchID, Name: "Haircut", Price: 50, Duration: 30, Category: "hair"},
			otherService: {ID: otherService, BranchID: otherBranchID, Name: "Nails", Price: 40, Duration: 30, Category: "nails"},
		}},
		stylists: &mockStylistRepository{items: map[string]*model.Stylist{}},
	}
	f.svc = NewCatalogService(f.branches, f.services, f.stylists, validator.NewCatalogValidator(), &config.Config{Log: logger.Discard()})
	return f
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr.StatusCode()
}

func TestListBranches_ActiveOnly(t *testing.T) {
	f := newFixture()
	branches, err := f.svc.ListBranches(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 1 || branches[0].ID != branchID {
		t.Errorf("expected only the active branch, got %+v", branches)
	}
}

func TestGetBranch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.GetBranch(ctx, ""); statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("expected 400 for empty id")
	}
	if _, err := f.svc.GetBranch(ctx, "65f1a2b3c4d5e6f708192aff"); statusOf(t, err) != http.StatusNotFound {
		t.Errorf("expected 404 for missing branch")
	}

	f.branches.findErr = fmt.Errorf("%w: xyz", catalogerrors.ErrInvalidID)
	if _, err := f.svc.GetBranch(ctx, "xyz"); statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid id")
	}
}

func TestCreateBranch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b := &model.Branch{Name: "  North   Side ", Address: "5 Hill Rd", City: "Haifa", IsActive: true}
	if err := f.svc.CreateBranch(ctx, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Name != "North Side" || b.ID == "" {
		t.Errorf("expected sanitized name and id, got %+v", b)
	}

	if err := f.svc.CreateBranch(ctx, &model.Branch{Name: "X"}); statusOf(t, err) != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for invalid branch")
	}
}

func TestListServices_RequiresBranch(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.ListServices(context.Background(), ""); statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("expected 400 without branch_id")
	}
	services, err := f.svc.ListServices(context.Background(), branchID)
	if err != nil || len(services) != 1 {
		t.Errorf("expected one service, got %d %v", len(services), err)
	}
}

func TestCreateService(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	svc := &model.SalonService{BranchID: branchID, Name: "Color", Price: 120, Duration: 90, Category: "Hair Color"}
	if err := f.svc.CreateService(ctx, svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Category != "hair_color" {
		t.Errorf("expected sanitized category, got %q", svc.Category)
	}

	missing := &model.SalonService{BranchID: "65f1a2b3c4d5e6f708192aff", Name: "Color", Category: "hair"}
	if err := f.svc.CreateService(ctx, missing); statusOf(t, err) != http.StatusNotFound {
		t.Errorf("expected 404 for unknown branch")
	}
}

func TestCreateStylist(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	st := &model.Stylist{BranchID: branchID, FirstName: "Maya", LastName: "Cohen", Rating: 7, ServiceIDs: []string{serviceID, serviceID, " "}}
	if err := f.svc.CreateStylist(ctx, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Name != "Maya Cohen" {
		t.Errorf("expected derived name, got %q", st.Name)
	}
	if st.Rating != 5 {
		t.Errorf("expected clamped rating, got %v", st.Rating)
	}
	if len(st.ServiceIDs) != 1 {
		t.Errorf("expected deduplicated service ids, got %v", st.ServiceIDs)
	}

	foreign := &model.Stylist{BranchID: branchID, FirstName: "Dan", LastName: "Levi", ServiceIDs: []string{otherService}}
	if err := f.svc.CreateStylist(ctx, foreign); statusOf(t, err) != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for service of another branch")
	}
}

func TestSetStylistAvailability(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	st := &model.Stylist{BranchID: branchID, FirstName: "Maya", LastName: "Cohen", IsAvailable: true}
	if err := f.svc.CreateStylist(ctx, st); err != nil {
		t.Fatal(err)
	}

	no := false
	if err := f.svc.SetStylistAvailability(ctx, st.ID, &model.StylistAvailabilityUpdate{IsAvailable: &no}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	available, err := f.svc.ListStylists(ctx, branchID, true)
	if err != nil || len(available) != 0 {
		t.Errorf("expected no available stylists, got %d %v", len(available), err)
	}
	all, _ := f.svc.ListStylists(ctx, branchID, false)
	if len(all) != 1 {
		t.Errorf("expected stylist when listing all, got %d", len(all))
	}

	if err := f.svc.SetStylistAvailability(ctx, st.ID, &model.StylistAvailabilityUpdate{}); statusOf(t, err) != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 without is_available")
	}
	if err := f.svc.SetStylistAvailability(ctx, "missing", &model.StylistAvailabilityUpdate{IsAvailable: &no}); statusOf(t, err) != http.StatusNotFound {
		t.Errorf("expected 404 for unknown stylist")
	}
}
