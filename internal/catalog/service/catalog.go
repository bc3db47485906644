package service

import (
	"context"
	"errors"
	"strings"

	catalogerrors "salonbook/internal/catalog/errors"
	"salonbook/internal/catalog/repository"
	"salonbook/internal/catalog/validator"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
)

type CatalogService interface {
	ListBranches(ctx context.Context) ([]*model.Branch, error)
	GetBranch(ctx context.Context, id string) (*model.Branch, error)
	CreateBranch(ctx context.Context, b *model.Branch) error

	ListServices(ctx context.Context, branchID string) ([]*model.SalonService, error)
	GetService(ctx context.Context, id string) (*model.SalonService, error)
	CreateService(ctx context.Context, s *model.SalonService) error

	ListStylists(ctx context.Context, branchID string, availableOnly bool) ([]*model.Stylist, error)
	GetStylist(ctx context.Context, id string) (*model.Stylist, error)
	CreateStylist(ctx context.Context, s *model.Stylist) error
	SetStylistAvailability(ctx context.Context, id string, update *model.StylistAvailabilityUpdate) error
}

type catalogService struct {
	branches  repository.BranchRepository
	services  repository.ServiceRepository
	stylists  repository.StylistRepository
	validator *validator.CatalogValidator
	cfg       *config.Config
}

func NewCatalogService(
	branches repository.BranchRepository,
	services repository.ServiceRepository,
	stylists repository.StylistRepository,
	validator *validator.CatalogValidator,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		branches:  branches,
		services:  services,
		stylists:  stylists,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *catalogService) ListBranches(ctx context.Context) ([]*model.Branch, error) {
	branches, err := s.branches.FindAll(ctx, true)
	if err != nil {
		s.cfg.Log.Error("Failed to list branches", "error", err)
		return nil, apperrors.Internal("Failed to retrieve branches", err)
	}
	return branches, nil
}

func (s *catalogService) GetBranch(ctx context.Context, id string) (*model.Branch, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Branch ID cannot be empty")
	}

	b, err := s.branches.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("Branch", id, err)
	}
	return b, nil
}

func (s *catalogService) CreateBranch(ctx context.Context, b *model.Branch) error {
	b.Name = sanitizer.SanitizeName(b.Name)
	b.Address = sanitizer.SanitizeName(b.Address)
	b.City = sanitizer.SanitizeName(b.City)
	b.Hours = strings.TrimSpace(b.Hours)

	if err := s.validator.ValidateBranch(b); err != nil {
		s.cfg.Log.Warn("Branch validation failed", "name", b.Name, "error", err)
		return apperrors.Validation("Branch validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.branches.Create(ctx, b); err != nil {
		s.cfg.Log.Error("Failed to create branch", "name", b.Name, "error", err)
		return apperrors.Internal("Failed to create branch", err)
	}

	s.cfg.Log.Info("Branch created successfully",
		"id", b.ID,
		"name", b.Name,
		"city", b.City,
	)
	return nil
}

func (s *catalogService) ListServices(ctx context.Context, branchID string) ([]*model.SalonService, error) {
	if branchID == "" {
		return nil, apperrors.InvalidInput("branch_id query parameter is required")
	}

	services, err := s.services.FindByBranch(ctx, branchID)
	if err != nil {
		s.cfg.Log.Error("Failed to list services", "branch_id", branchID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve services", err)
	}
	return services, nil
}

func (s *catalogService) GetService(ctx context.Context, id string) (*model.SalonService, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("Service", id, err)
	}
	return svc, nil
}

func (s *catalogService) CreateService(ctx context.Context, svc *model.SalonService) error {
	svc.BranchID = strings.TrimSpace(svc.BranchID)
	svc.Name = sanitizer.SanitizeName(svc.Name)
	svc.Category = sanitizer.SanitizeCategory(svc.Category)
	svc.Description = sanitizer.SanitizeNotes(svc.Description)

	if err := s.validator.ValidateService(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed", "name", svc.Name, "error", err)
		return apperrors.Validation("Service validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.branches.FindByID(ctx, svc.BranchID); err != nil {
		return s.mapRepoError("Branch", svc.BranchID, err)
	}

	if err := s.services.Create(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create service", "name", svc.Name, "branch_id", svc.BranchID, "error", err)
		return apperrors.Internal("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created successfully",
		"id", svc.ID,
		"name", svc.Name,
		"branch_id", svc.BranchID,
	)
	return nil
}

func (s *catalogService) ListStylists(ctx context.Context, branchID string, availableOnly bool) ([]*model.Stylist, error) {
	if branchID == "" {
		return nil, apperrors.InvalidInput("branch_id query parameter is required")
	}

	stylists, err := s.stylists.FindByBranch(ctx, branchID, availableOnly)
	if err != nil {
		s.cfg.Log.Error("Failed to list stylists", "branch_id", branchID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve stylists", err)
	}
	return stylists, nil
}

func (s *catalogService) GetStylist(ctx context.Context, id string) (*model.Stylist, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Stylist ID cannot be empty")
	}

	st, err := s.stylists.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("Stylist", id, err)
	}
	return st, nil
}

func (s *catalogService) CreateStylist(ctx context.Context, st *model.Stylist) error {
	st.BranchID = strings.TrimSpace(st.BranchID)
	st.FirstName = sanitizer.SanitizeName(st.FirstName)
	st.LastName = sanitizer.SanitizeName(st.LastName)
	st.Name = sanitizer.SanitizeName(st.Name)
	if st.Name == "" {
		st.Name = strings.TrimSpace(st.FirstName + " " + st.LastName)
	}
	st.ServiceIDs = sanitizer.SanitizeIDs(st.ServiceIDs)
	st.Rating = sanitizer.ClampRating(st.Rating)

	if err := s.validator.ValidateStylist(st); err != nil {
		s.cfg.Log.Warn("Stylist validation failed", "name", st.Name, "error", err)
		return apperrors.Validation("Stylist validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.branches.FindByID(ctx, st.BranchID); err != nil {
		return s.mapRepoError("Branch", st.BranchID, err)
	}

	for _, serviceID := range st.ServiceIDs {
		svc, err := s.services.FindByID(ctx, serviceID)
		if err != nil {
			return s.mapRepoError("Service", serviceID, err)
		}
		if svc.BranchID != st.BranchID {
			return apperrors.Validation("Stylist services must belong to the stylist's branch", map[string]any{
				"service_id": serviceID,
			})
		}
	}

	if err := s.stylists.Create(ctx, st); err != nil {
		s.cfg.Log.Error("Failed to create stylist", "name", st.Name, "branch_id", st.BranchID, "error", err)
		return apperrors.Internal("Failed to create stylist", err)
	}

	s.cfg.Log.Info("Stylist created successfully",
		"id", st.ID,
		"name", st.Name,
		"branch_id", st.BranchID,
	)
	return nil
}

func (s *catalogService) SetStylistAvailability(ctx context.Context, id string, update *model.StylistAvailabilityUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Stylist ID cannot be empty")
	}
	if err := s.validator.ValidateAvailability(update); err != nil {
		return apperrors.Validation("Availability update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.stylists.SetAvailability(ctx, id, *update.IsAvailable); err != nil {
		return s.mapRepoError("Stylist", id, err)
	}

	s.cfg.Log.Info("Stylist availability updated",
		"id", id,
		"is_available", *update.IsAvailable,
	)
	return nil
}

func (s *catalogService) mapRepoError(resource, id string, err error) error {
	switch {
	case errors.Is(err, catalogerrors.ErrBranchNotFound),
		errors.Is(err, catalogerrors.ErrServiceNotFound),
		errors.Is(err, catalogerrors.ErrStylistNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, catalogerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid " + strings.ToLower(resource) + " ID format")
	}

	s.cfg.Log.Error("Catalog repository call failed",
		"resource", resource,
		"id", id,
		"error", err,
	)
	return apperrors.Internal("Failed to retrieve "+strings.ToLower(resource), err)
}
