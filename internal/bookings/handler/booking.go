package handler

import (
	"net/http"

	"staybook/internal/bookings/service"
	"staybook/internal/ledger"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/sanitizer"

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

// Reconcile returns the reconciled booking map. from and to are optional log
// positions; omitted bounds use the configured defaults.
func (h *BookingHandler) Reconcile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	from, err := httputil.ExtractOptionalUint(r, "from")
	if err != nil {
		h.writeError(w, "Reconcile", err)
		return
	}
	to, err := httputil.ExtractOptionalUint(r, "to")
	if err != nil {
		h.writeError(w, "Reconcile", err)
		return
	}

	list, err := h.service.Reconcile(r.Context(), ledger.Window{From: from, To: to})
	if err != nil {
		h.writeError(w, "Reconcile", err)
		return
	}

	if err := httputil.WriteSuccess(w, list); err != nil {
		h.log.Error("failed to write success response", "handler", "Reconcile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ByHost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	host := ps.ByName("address")
	if !sanitizer.IsAddress(host) {
		h.writeError(w, "ByHost", apperrors.InvalidInput("invalid host address: "+host))
		return
	}

	list, err := h.service.ListHostBookings(r.Context(), host)
	if err != nil {
		h.writeError(w, "ByHost", err)
		return
	}

	if err := httputil.WriteSuccess(w, list); err != nil {
		h.log.Error("failed to write success response", "handler", "ByHost", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ByGuest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	guest := ps.ByName("address")
	if !sanitizer.IsAddress(guest) {
		h.writeError(w, "ByGuest", apperrors.InvalidInput("invalid guest address: "+guest))
		return
	}

	list, err := h.service.ListGuestBookings(r.Context(), guest)
	if err != nil {
		h.writeError(w, "ByGuest", err)
		return
	}

	if err := httputil.WriteSuccess(w, list); err != nil {
		h.log.Error("failed to write success response", "handler", "ByGuest", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings", h.Reconcile)
	router.GET("/api/v1/bookings/host/:address", h.ByHost)
	router.GET("/api/v1/bookings/guest/:address", h.ByGuest)
}
