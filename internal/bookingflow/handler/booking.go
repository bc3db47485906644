package handler

import (
	"net/http"

	"salonbook/internal/bookingflow/service"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Start(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.StartSessionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Start", err)
		return
	}

	v, err := h.service.Start(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Start", err)
		return
	}

	if err := httputil.WriteCreated(w, v); err != nil {
		h.log.Error("failed to write created response", "handler", "Start", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.service.Get(r.Context(), ps.ByName("id"))
	h.writeView(w, "Get", v, err)
}

func (h *BookingHandler) Abandon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Abandon(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Abandon", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) SetBranch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.SetBranchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SetBranch", err)
		return
	}
	v, err := h.service.SetBranch(r.Context(), ps.ByName("id"), &req)
	h.writeView(w, "SetBranch", v, err)
}

func (h *BookingHandler) SetDateTime(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.SetDateTimeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SetDateTime", err)
		return
	}
	v, err := h.service.SetDateTime(r.Context(), ps.ByName("id"), &req)
	h.writeView(w, "SetDateTime", v, err)
}

func (h *BookingHandler) ToggleService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.service.ToggleService(r.Context(), ps.ByName("id"), ps.ByName("service_id"))
	h.writeView(w, "ToggleService", v, err)
}

func (h *BookingHandler) AssignStylist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.AssignStylistRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "AssignStylist", err)
		return
	}
	v, err := h.service.AssignStylist(r.Context(), ps.ByName("id"), ps.ByName("service_id"), &req)
	h.writeView(w, "AssignStylist", v, err)
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.service.ConfirmServices(r.Context(), ps.ByName("id"))
	h.writeView(w, "Confirm", v, err)
}

func (h *BookingHandler) Previous(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.service.PreviousStep(r.Context(), ps.ByName("id"))
	h.writeView(w, "Previous", v, err)
}

func (h *BookingHandler) Next(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.service.NextStep(r.Context(), ps.ByName("id"))
	h.writeView(w, "Next", v, err)
}

func (h *BookingHandler) SetNotes(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.SetNotesRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SetNotes", err)
		return
	}
	v, err := h.service.SetNotes(r.Context(), ps.ByName("id"), &req)
	h.writeView(w, "SetNotes", v, err)
}

func (h *BookingHandler) Totals(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	totals, err := h.service.Totals(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Totals", err)
		return
	}
	h.writeSuccess(w, "Totals", totals)
}

func (h *BookingHandler) Commit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.service.Commit(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Commit", err)
		return
	}

	if err := httputil.WriteCreated(w, res); err != nil {
		h.log.Error("failed to write created response", "handler", "Commit", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Reset(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.service.Reset(r.Context(), ps.ByName("id"))
	h.writeView(w, "Reset", v, err)
}

func (h *BookingHandler) ListBranches(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	branches, err := h.service.ListBranches(r.Context())
	if err != nil {
		h.writeError(w, "ListBranches", err)
		return
	}
	h.writeSuccess(w, "ListBranches", branches)
}

func (h *BookingHandler) ListServices(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	services, err := h.service.ListServices(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ListServices", err)
		return
	}
	h.writeSuccess(w, "ListServices", services)
}

func (h *BookingHandler) ListStylists(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stylists, err := h.service.ListStylists(r.Context(), ps.ByName("id"), r.URL.Query().Get("service_id"))
	if err != nil {
		h.writeError(w, "ListStylists", err)
		return
	}
	h.writeSuccess(w, "ListStylists", stylists)
}

func (h *BookingHandler) writeView(w http.ResponseWriter, handler string, v *service.SessionView, err error) {
	if err != nil {
		h.writeError(w, handler, err)
		return
	}
	h.writeSuccess(w, handler, v)
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/booking-sessions", h.Start)
	router.GET("/api/v1/booking-sessions/branches", h.ListBranches)
	router.GET("/api/v1/booking-sessions/id/:id", h.Get)
	router.DELETE("/api/v1/booking-sessions/id/:id", h.Abandon)
	router.PUT("/api/v1/booking-sessions/id/:id/branch", h.SetBranch)
	router.PUT("/api/v1/booking-sessions/id/:id/datetime", h.SetDateTime)
	router.GET("/api/v1/booking-sessions/id/:id/services", h.ListServices)
	router.GET("/api/v1/booking-sessions/id/:id/stylists", h.ListStylists)
	router.POST("/api/v1/booking-sessions/id/:id/services/:service_id/toggle", h.ToggleService)
	router.PUT("/api/v1/booking-sessions/id/:id/services/:service_id/stylist", h.AssignStylist)
	router.POST("/api/v1/booking-sessions/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/booking-sessions/id/:id/previous", h.Previous)
	router.POST("/api/v1/booking-sessions/id/:id/next", h.Next)
	router.PUT("/api/v1/booking-sessions/id/:id/notes", h.SetNotes)
	router.GET("/api/v1/booking-sessions/id/:id/totals", h.Totals)
	router.POST("/api/v1/booking-sessions/id/:id/commit", h.Commit)
	router.POST("/api/v1/booking-sessions/id/:id/reset", h.Reset)
}
