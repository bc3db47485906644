package handler

import (
	"net/http"
	"strconv"

	"salonbook/internal/catalog/service"
	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log,
	}
}

func (h *CatalogHandler) ListBranches(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	branches, err := h.service.ListBranches(r.Context())
	h.respond(w, "ListBranches", branches, err)
}

func (h *CatalogHandler) GetBranch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	branch, err := h.service.GetBranch(r.Context(), ps.ByName("id"))
	h.respond(w, "GetBranch", branch, err)
}

func (h *CatalogHandler) CreateBranch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var b model.Branch
	if err := httputil.DecodeJSON(r, &b); err != nil {
		h.writeError(w, "CreateBranch", err)
		return
	}
	if err := h.service.CreateBranch(r.Context(), &b); err != nil {
		h.writeError(w, "CreateBranch", err)
		return
	}
	h.writeCreated(w, "CreateBranch", b)
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services, err := h.service.ListServices(r.Context(), r.URL.Query().Get("branch_id"))
	h.respond(w, "ListServices", services, err)
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.service.GetService(r.Context(), ps.ByName("id"))
	h.respond(w, "GetService", svc, err)
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var svc model.SalonService
	if err := httputil.DecodeJSON(r, &svc); err != nil {
		h.writeError(w, "CreateService", err)
		return
	}
	if err := h.service.CreateService(r.Context(), &svc); err != nil {
		h.writeError(w, "CreateService", err)
		return
	}
	h.writeCreated(w, "CreateService", svc)
}

func (h *CatalogHandler) ListStylists(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	availableOnly := false
	if s := query.Get("available"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			h.writeError(w, "ListStylists", apperrors.InvalidInput("invalid available parameter: "+s))
			return
		}
		availableOnly = v
	}

	stylists, err := h.service.ListStylists(r.Context(), query.Get("branch_id"), availableOnly)
	h.respond(w, "ListStylists", stylists, err)
}

func (h *CatalogHandler) GetStylist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	st, err := h.service.GetStylist(r.Context(), ps.ByName("id"))
	h.respond(w, "GetStylist", st, err)
}

func (h *CatalogHandler) CreateStylist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var st model.Stylist
	if err := httputil.DecodeJSON(r, &st); err != nil {
		h.writeError(w, "CreateStylist", err)
		return
	}
	if err := h.service.CreateStylist(r.Context(), &st); err != nil {
		h.writeError(w, "CreateStylist", err)
		return
	}
	h.writeCreated(w, "CreateStylist", st)
}

func (h *CatalogHandler) SetStylistAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.StylistAvailabilityUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "SetStylistAvailability", err)
		return
	}
	if err := h.service.SetStylistAvailability(r.Context(), ps.ByName("id"), &update); err != nil {
		h.writeError(w, "SetStylistAvailability", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) respond(w http.ResponseWriter, handler string, data any, err error) {
	if err != nil {
		h.writeError(w, handler, err)
		return
	}
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) writeCreated(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteCreated(w, data); err != nil {
		h.log.Error("failed to write created response", "handler", handler, "operation", "WriteCreated", "error", err)
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/branches", h.ListBranches)
	router.POST("/api/v1/branches", h.CreateBranch)
	router.GET("/api/v1/branches/id/:id", h.GetBranch)

	router.GET("/api/v1/services", h.ListServices)
	router.POST("/api/v1/services", h.CreateService)
	router.GET("/api/v1/services/id/:id", h.GetService)

	router.GET("/api/v1/stylists", h.ListStylists)
	router.POST("/api/v1/stylists", h.CreateStylist)
	router.GET("/api/v1/stylists/id/:id", h.GetStylist)
	router.PATCH("/api/v1/stylists/id/:id/availability", h.SetStylistAvailability)
}
