// Package ingest turns ledger topic messages into event log entries and
// listing registry updates.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"staybook/internal/eventlog/repository"
	listingservice "staybook/internal/listings/service"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
	"staybook/pkg/validation"
)

const (
	EventTypeBooked          = "booking.booked"
	EventTypeCancelled       = "booking.cancelled"
	EventTypeSettled         = "booking.settled"
	EventTypeListingUpserted = "listing.upserted"
)

// EventTypeForKind returns the message type carrying a ledger event kind.
func EventTypeForKind(kind model.EventKind) (string, bool) {
	switch kind {
	case model.EventBooked:
		return EventTypeBooked, true
	case model.EventCancelled:
		return EventTypeCancelled, true
	case model.EventSettled:
		return EventTypeSettled, true
	default:
		return "", false
	}
}

var kindByEventType = map[string]model.EventKind{
	EventTypeBooked:    model.EventBooked,
	EventTypeCancelled: model.EventCancelled,
	EventTypeSettled:   model.EventSettled,
}

type Handler struct {
	events    repository.LedgerEventRepository
	listings  listingservice.ListingService
	validator *validation.Validator
	log       *logger.Logger
	now       func() time.Time
}

func NewHandler(
	events repository.LedgerEventRepository,
	listings listingservice.ListingService,
	validator *validation.Validator,
	log *logger.Logger,
) *Handler {
	return &Handler{
		events:    events,
		listings:  listings,
		validator: validator,
		log:       log.Component("ingest"),
		now:       time.Now,
	}
}

// Handle is a kafka.MessageHandler. Payload problems come back as permanent
// errors so the consumer parks the message in the DLQ. Store failures are
// transient and retried.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()
	if eventType == EventTypeListingUpserted {
		return h.handleListing(ctx, msg)
	}
	if kind, ok := kindByEventType[eventType]; ok {
		return h.handleLedgerEvent(ctx, kind, msg)
	}
	return kafka.NewPermanentError("unknown event type", fmt.Errorf("%w: %q", kafka.ErrInvalidMessage, eventType))
}

func (h *Handler) handleLedgerEvent(ctx context.Context, kind model.EventKind, msg kafka.Message) error {
	var ev model.LedgerEvent
	if err := msg.DecodeValue(&ev); err != nil {
		return kafka.NewPermanentError("decode ledger event", err)
	}
	if ev.Kind == "" {
		ev.Kind = kind
	}
	if ev.Kind != kind {
		return kafka.NewPermanentError("ledger event kind mismatch",
			fmt.Errorf("%w: header %s, payload %s", kafka.ErrInvalidMessage, kind, ev.Kind))
	}
	if ev.Guest != "" {
		ev.Guest = sanitizer.NormalizeAddress(ev.Guest)
	}

	if err := h.validator.Struct(&ev); err != nil {
		return kafka.NewPermanentError("invalid ledger event", err)
	}

	ev.ObservedAt = h.now().UTC()
	inserted, err := h.events.Append(ctx, &ev)
	if err != nil {
		return kafka.NewTransientError("append ledger event", err)
	}

	if inserted {
		source, _ := msg.GetHeader(kafka.HeaderSource)
		h.log.Info("Ledger event stored",
			"event_id", msg.GetEventID(),
			"source", source,
			"kind", ev.Kind,
			"booking_id", ev.BookingID,
			"position", ev.Position,
			"log_index", ev.LogIndex,
		)
	} else {
		h.log.Debug("Ledger event already stored",
			"kind", ev.Kind,
			"booking_id", ev.BookingID,
			"position", ev.Position,
		)
	}
	return nil
}

func (h *Handler) handleListing(ctx context.Context, msg kafka.Message) error {
	var listing model.Listing
	if err := msg.DecodeValue(&listing); err != nil {
		return kafka.NewPermanentError("decode listing", err)
	}

	if err := h.listings.Upsert(ctx, &listing); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.StatusCode() < http.StatusInternalServerError {
			return kafka.NewPermanentError("invalid listing", err)
		}
		return kafka.NewTransientError("upsert listing", err)
	}
	return nil
}
