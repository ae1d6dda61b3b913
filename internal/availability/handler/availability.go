package handler

import (
	"net/http"

	"staybook/internal/availability/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const calendarContentType = "text/calendar; charset=utf-8"

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) BlockedDays(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID, year, month, err := monthParams(r, ps)
	if err != nil {
		h.writeError(w, "BlockedDays", err)
		return
	}

	days, err := h.service.ComputeBlockedDays(r.Context(), listingID, year, month)
	if err != nil {
		h.writeError(w, "BlockedDays", err)
		return
	}

	if err := httputil.WriteSuccess(w, days); err != nil {
		h.log.Error("failed to write success response", "handler", "BlockedDays", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RangeAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID, err := httputil.ExtractUintParam(ps, "id")
	if err != nil {
		h.writeError(w, "RangeAvailability", err)
		return
	}

	query := r.URL.Query()
	start, end := query.Get("start"), query.Get("end")
	if start == "" || end == "" {
		h.writeError(w, "RangeAvailability", apperrors.InvalidInput("Both 'start' and 'end' query parameters are required"))
		return
	}

	result, err := h.service.IsRangeAvailable(r.Context(), listingID, start, end)
	if err != nil {
		h.writeError(w, "RangeAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "RangeAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) MonthView(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID, year, month, err := monthParams(r, ps)
	if err != nil {
		h.writeError(w, "MonthView", err)
		return
	}

	view, err := h.service.MonthView(r.Context(), listingID, year, month)
	if err != nil {
		h.writeError(w, "MonthView", err)
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "MonthView", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) CalendarFeed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID, err := httputil.ExtractUintParam(ps, "id")
	if err != nil {
		h.writeError(w, "CalendarFeed", err)
		return
	}

	feed, err := h.service.CalendarFeed(r.Context(), listingID)
	if err != nil {
		h.writeError(w, "CalendarFeed", err)
		return
	}

	if err := httputil.WriteRaw(w, calendarContentType, feed); err != nil {
		h.log.Error("failed to write calendar feed", "handler", "CalendarFeed", "operation", "WriteRaw", "error", err)
	}
}

func monthParams(r *http.Request, ps httprouter.Params) (uint64, int, int, error) {
	listingID, err := httputil.ExtractUintParam(ps, "id")
	if err != nil {
		return 0, 0, 0, err
	}
	year, err := httputil.ExtractInt(r, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	month, err := httputil.ExtractInt(r, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	return listingID, year, month, nil
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/listings/id/:id/blocked-days", h.BlockedDays)
	router.GET("/api/v1/listings/id/:id/availability", h.RangeAvailability)
	router.GET("/api/v1/listings/id/:id/month", h.MonthView)
	router.GET("/api/v1/listings/id/:id/calendar.ics", h.CalendarFeed)
}
