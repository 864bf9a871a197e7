package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"bookable/internal/availability/service"
	httputil "bookable/pkg/http"
	"bookable/pkg/logger"
	"bookable/pkg/model"
)

type AvailabilityHandler struct {
	profiles   service.AvailabilityService
	eventTypes service.EventTypeService
	slots      service.SlotService
	log        *logger.Logger
}

func NewAvailabilityHandler(
	profiles service.AvailabilityService,
	eventTypes service.EventTypeService,
	slots service.SlotService,
	log *logger.Logger,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		profiles:   profiles,
		eventTypes: eventTypes,
		slots:      slots,
		log:        log,
	}
}

func (h *AvailabilityHandler) CreateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var p model.AvailabilityProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateProfile", "error", writeErr)
		}
		return
	}

	if err := h.profiles.CreateProfile(r.Context(), &p); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateProfile", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, p); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateProfile", "error", err)
	}
}

func (h *AvailabilityHandler) GetProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hostID := ps.ByName("host_id")

	p, err := h.profiles.GetProfileByHost(r.Context(), hostID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetProfile", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, p); err != nil {
		h.log.Error("failed to write success response", "handler", "GetProfile", "error", err)
	}
}

func (h *AvailabilityHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hostID := ps.ByName("host_id")

	var updates model.AvailabilityProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateProfile", "error", writeErr)
		}
		return
	}

	if err := h.profiles.UpdateProfile(r.Context(), hostID, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateProfile", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) DeleteProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hostID := ps.ByName("host_id")

	if err := h.profiles.DeleteProfile(r.Context(), hostID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteProfile", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) CreateEventType(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var et model.EventType
	if err := json.NewDecoder(r.Body).Decode(&et); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateEventType", "error", writeErr)
		}
		return
	}

	if err := h.eventTypes.Create(r.Context(), &et); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateEventType", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, et); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateEventType", "error", err)
	}
}

func (h *AvailabilityHandler) GetEventType(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	et, err := h.eventTypes.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetEventType", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, et); err != nil {
		h.log.Error("failed to write success response", "handler", "GetEventType", "error", err)
	}
}

func (h *AvailabilityHandler) ListEventTypes(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hostID := ps.ByName("host_id")

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListEventTypes", "error", writeErr)
		}
		return
	}

	eventTypes, total, err := h.eventTypes.GetByHost(r.Context(), hostID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListEventTypes", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, eventTypes, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListEventTypes", "error", err)
	}
}

func (h *AvailabilityHandler) UpdateEventType(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.EventTypeUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateEventType", "error", writeErr)
		}
		return
	}

	if err := h.eventTypes.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateEventType", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) DeleteEventType(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.eventTypes.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteEventType", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

// ListSlots serves the read path of booking: the open, conflict-free slots
// for an event type over a date range.
func (h *AvailabilityHandler) ListSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	hostID := strings.TrimSpace(query.Get("host_id"))
	eventTypeID := strings.TrimSpace(query.Get("event_type_id"))
	fromDate := strings.TrimSpace(query.Get("from"))
	toDate := strings.TrimSpace(query.Get("to"))

	listing, err := h.slots.ListSlots(r.Context(), hostID, eventTypeID, fromDate, toDate)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSlots", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, listing); err != nil {
		h.log.Error("failed to write success response", "handler", "ListSlots", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/availability", h.CreateProfile)
	router.GET("/api/v1/availability/host/:host_id", h.GetProfile)
	router.PATCH("/api/v1/availability/host/:host_id", h.UpdateProfile)
	router.DELETE("/api/v1/availability/host/:host_id", h.DeleteProfile)

	router.POST("/api/v1/event-types", h.CreateEventType)
	router.GET("/api/v1/event-types/id/:id", h.GetEventType)
	router.GET("/api/v1/event-types/host/:host_id", h.ListEventTypes)
	router.PATCH("/api/v1/event-types/id/:id", h.UpdateEventType)
	router.DELETE("/api/v1/event-types/id/:id", h.DeleteEventType)

	router.GET("/api/v1/slots", h.ListSlots)
}
