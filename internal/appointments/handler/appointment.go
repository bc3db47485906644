package handler

import (
	"net/http"

	"salonbook/internal/appointments/service"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload model.AppointmentPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	appt, err := h.service.Create(r.Context(), &payload)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	if err := httputil.WriteCreated(w, appt); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appt, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	h.respond(w, "GetByID", appt, err)
}

func (h *AppointmentHandler) ListByBranch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appts, err := h.service.ListByBranch(r.Context(), ps.ByName("branch_id"), r.URL.Query().Get("date"))
	h.respond(w, "ListByBranch", appts, err)
}

func (h *AppointmentHandler) ListByStylist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appts, err := h.service.ListByStylist(r.Context(), ps.ByName("stylist_id"), r.URL.Query().Get("date"))
	h.respond(w, "ListByStylist", appts, err)
}

func (h *AppointmentHandler) ListByClient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appts, err := h.service.ListByClient(r.Context(), ps.ByName("client_id"))
	h.respond(w, "ListByClient", appts, err)
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.AppointmentStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	appt, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), &update)
	h.respond(w, "UpdateStatus", appt, err)
}

func (h *AppointmentHandler) respond(w http.ResponseWriter, handler string, data any, err error) {
	if err != nil {
		h.writeError(w, handler, err)
		return
	}
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.PATCH("/api/v1/appointments/id/:id/status", h.UpdateStatus)
	router.GET("/api/v1/appointments/branch/:branch_id", h.ListByBranch)
	router.GET("/api/v1/appointments/stylist/:stylist_id", h.ListByStylist)
	router.GET("/api/v1/appointments/client/:client_id", h.ListByClient)
}
