package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salonbook/internal/bookingflow/service"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockBookingService struct {
	startFunc   func(ctx context.Context, req *model.StartSessionRequest) (*service.SessionView, error)
	getFunc     func(ctx context.Context, id string) (*service.SessionView, error)
	toggleFunc  func(ctx context.Context, id, serviceID string) (*service.SessionView, error)
	assignFunc  func(ctx context.Context, id, serviceID string, req *model.AssignStylistRequest) (*service.SessionView, error)
	commitFunc  func(ctx context.Context, id string) (*model.CommitResult, error)
	stylistFunc func(ctx context.Context, id, serviceID string) ([]model.Stylist, error)
}

func emptyView(id string) *service.SessionView {
	return &service.SessionView{ID: id}
}

func (m *mockBookingService) Start(ctx context.Context, req *model.StartSessionRequest) (*service.SessionView, error) {
	if m.startFunc != nil {
		return m.startFunc(ctx, req)
	}
	return emptyView("new"), nil
}

func (m *mockBookingService) Get(ctx context.Context, id string) (*service.SessionView, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return emptyView(id), nil
}

func (m *mockBookingService) Abandon(ctx context.Context, id string) error { return nil }

func (m *mockBookingService) SetBranch(ctx context.Context, id string, req *model.SetBranchRequest) (*service.SessionView, error) {
	return emptyView(id), nil
}

func (m *mockBookingService) SetDateTime(ctx context.Context, id string, req *model.SetDateTimeRequest) (*service.SessionView, error) {
	return emptyView(id), nil
}

func (m *mockBookingService) ToggleService(ctx context.Context, id, serviceID string) (*service.SessionView, error) {
	if m.toggleFunc != nil {
		return m.toggleFunc(ctx, id, serviceID)
	}
	return emptyView(id), nil
}

func (m *mockBookingService) AssignStylist(ctx context.Context, id, serviceID string, req *model.AssignStylistRequest) (*service.SessionView, error) {
	if m.assignFunc != nil {
		return m.assignFunc(ctx, id, serviceID, req)
	}
	return emptyView(id), nil
}

func (m *mockBookingService) ConfirmServices(ctx context.Context, id string) (*service.SessionView, error) {
	return emptyView(id), nil
}

func (m *mockBookingService) PreviousStep(ctx context.Context, id string) (*service.SessionView, error) {
	return emptyView(id), nil
}

func (m *mockBookingService) NextStep(ctx context.Context, id string) (*service.SessionView, error) {
	return emptyView(id), nil
}

func (m *mockBookingService) SetNotes(ctx context.Context, id string, req *model.SetNotesRequest) (*service.SessionView, error) {
	return emptyView(id), nil
}

func (m *mockBookingService) Totals(ctx context.Context, id string) (*model.Totals, error) {
	return &model.Totals{TotalPrice: 120, TotalDuration: 60}, nil
}

func (m *mockBookingService) Commit(ctx context.Context, id string) (*model.CommitResult, error) {
	if m.commitFunc != nil {
		return m.commitFunc(ctx, id)
	}
	return &model.CommitResult{AppointmentID: "apt-1", SessionID: id, SessionReleased: true}, nil
}

func (m *mockBookingService) Reset(ctx context.Context, id string) (*service.SessionView, error) {
	return emptyView(id), nil
}

func (m *mockBookingService) ListBranches(ctx context.Context) ([]model.Branch, error) {
	return []model.Branch{{ID: "b1", Name: "Downtown", IsActive: true}}, nil
}

func (m *mockBookingService) ListServices(ctx context.Context, id string) ([]model.SalonService, error) {
	return []model.SalonService{}, nil
}

func (m *mockBookingService) ListStylists(ctx context.Context, id, serviceID string) ([]model.Stylist, error) {
	if m.stylistFunc != nil {
		return m.stylistFunc(ctx, id, serviceID)
	}
	return []model.Stylist{}, nil
}

func newRouter(svc service.BookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStart(t *testing.T) {
	var got *model.StartSessionRequest
	router := newRouter(&mockBookingService{
		startFunc: func(ctx context.Context, req *model.StartSessionRequest) (*service.SessionView, error) {
			got = req
			return emptyView("sess-1"), nil
		},
	})

	rec := serve(router, http.MethodPost, "/api/v1/booking-sessions", `{"first_name":"Noa","contact":"+972501234567"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got == nil || got.FirstName != "Noa" {
		t.Errorf("request not decoded: %+v", got)
	}

	var resp struct {
		Data service.SessionView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ID != "sess-1" {
		t.Errorf("expected sess-1, got %q", resp.Data.ID)
	}
}

func TestStart_BadBody(t *testing.T) {
	router := newRouter(&mockBookingService{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"first_name":`},
		{"unknown field", `{"first_name":"Noa","age":30}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodPost, "/api/v1/booking-sessions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestRoutes_PassPathParams(t *testing.T) {
	var gotID, gotService, gotStylist string
	router := newRouter(&mockBookingService{
		assignFunc: func(ctx context.Context, id, serviceID string, req *model.AssignStylistRequest) (*service.SessionView, error) {
			gotID, gotService, gotStylist = id, serviceID, req.StylistID
			return emptyView(id), nil
		},
	})

	rec := serve(router, http.MethodPut, "/api/v1/booking-sessions/id/abc/services/s1/stylist", `{"stylist_id":"st1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "abc" || gotService != "s1" || gotStylist != "st1" {
		t.Errorf("unexpected params %q %q %q", gotID, gotService, gotStylist)
	}
}

func TestListStylists_ServiceQuery(t *testing.T) {
	var gotService string
	router := newRouter(&mockBookingService{
		stylistFunc: func(ctx context.Context, id, serviceID string) ([]model.Stylist, error) {
			gotService = serviceID
			return []model.Stylist{{ID: "st1"}}, nil
		},
	})

	rec := serve(router, http.MethodGet, "/api/v1/booking-sessions/id/abc/stylists?service_id=s9", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotService != "s9" {
		t.Errorf("expected service filter s9, got %q", gotService)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", apperrors.NotFound("Booking session"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", apperrors.Validation("Booking is incomplete", nil), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"conflict", apperrors.Conflict("A commit is already in progress"), http.StatusConflict, "CONFLICT"},
		{"submission", apperrors.SubmissionFailed("Appointment could not be created", nil), http.StatusBadGateway, "SUBMISSION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&mockBookingService{
				commitFunc: func(ctx context.Context, id string) (*model.CommitResult, error) {
					return nil, tt.err
				},
			})

			rec := serve(router, http.MethodPost, "/api/v1/booking-sessions/id/abc/commit", "")
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q, got %s", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestCommit_Created(t *testing.T) {
	router := newRouter(&mockBookingService{})

	rec := serve(router, http.MethodPost, "/api/v1/booking-sessions/id/abc/commit", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"appointment_id":"apt-1"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestAbandon_NoContent(t *testing.T) {
	rec := serve(newRouter(&mockBookingService{}), http.MethodDelete, "/api/v1/booking-sessions/id/abc", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestTotals(t *testing.T) {
	rec := serve(newRouter(&mockBookingService{}), http.MethodGet, "/api/v1/booking-sessions/id/abc/totals", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total_price":120`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
