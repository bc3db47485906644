package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salonbook/internal/catalog/service"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockCatalogService struct {
	service.CatalogService
	listStylistsFunc func(ctx context.Context, branchID string, availableOnly bool) ([]*model.Stylist, error)
	getBranchFunc    func(ctx context.Context, id string) (*model.Branch, error)
	createBranchFunc func(ctx context.Context, b *model.Branch) error
}

func (m *mockCatalogService) ListStylists(ctx context.Context, branchID string, availableOnly bool) ([]*model.Stylist, error) {
	return m.listStylistsFunc(ctx, branchID, availableOnly)
}

func (m *mockCatalogService) GetBranch(ctx context.Context, id string) (*model.Branch, error) {
	return m.getBranchFunc(ctx, id)
}

func (m *mockCatalogService) CreateBranch(ctx context.Context, b *model.Branch) error {
	return m.createBranchFunc(ctx, b)
}

func newRouter(svc service.CatalogService) *httprouter.Router {
	router := httprouter.New()
	NewCatalogHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestListStylists_QueryParameters(t *testing.T) {
	var gotBranch string
	var gotAvailable bool
	router := newRouter(&mockCatalogService{
		listStylistsFunc: func(ctx context.Context, branchID string, availableOnly bool) ([]*model.Stylist, error) {
			gotBranch, gotAvailable = branchID, availableOnly
			return []*model.Stylist{}, nil
		},
	})

	tests := []struct {
		name          string
		query         string
		wantCode      int
		wantAvailable bool
	}{
		{"available true", "?branch_id=b1&available=true", http.StatusOK, true},
		{"available omitted", "?branch_id=b1", http.StatusOK, false},
		{"available invalid", "?branch_id=b1&available=maybe", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAvailable = false
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stylists"+tt.query, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode == http.StatusOK {
				if gotBranch != "b1" || gotAvailable != tt.wantAvailable {
					t.Errorf("unexpected args %q %v", gotBranch, gotAvailable)
				}
			}
		})
	}
}

func TestGetBranch_NotFound(t *testing.T) {
	router := newRouter(&mockCatalogService{
		getBranchFunc: func(ctx context.Context, id string) (*model.Branch, error) {
			return nil, apperrors.NotFoundWithID("Branch", id)
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/branches/id/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCreateBranch_Created(t *testing.T) {
	router := newRouter(&mockCatalogService{
		createBranchFunc: func(ctx context.Context, b *model.Branch) error {
			b.ID = "new-id"
			return nil
		},
	})

	body := `{"name":"Downtown","address":"1 Main St","city":"Haifa","is_active":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/branches", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":"new-id"`) {
		t.Errorf("expected created id in body, got %s", rec.Body.String())
	}
}
