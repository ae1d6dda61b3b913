package model

import (
	"time"

	"staybook/pkg/calendar"
)

type EventKind string

const (
	EventBooked    EventKind = "Booked"
	EventCancelled EventKind = "Cancelled"
	EventSettled   EventKind = "Settled"
)

var EventKinds = []EventKind{EventBooked, EventCancelled, EventSettled}

// LedgerEvent is one log entry emitted by the booking contract. Cancelled and
// Settled events only carry BookingID.
type LedgerEvent struct {
	Kind       EventKind         `json:"kind" bson:"kind" yaml:"kind" validate:"required,oneof=Booked Cancelled Settled"`
	Position   uint64            `json:"position" bson:"position" yaml:"position"`
	LogIndex   uint32            `json:"log_index" bson:"log_index" yaml:"log_index"`
	TxHash     string            `json:"tx_hash,omitempty" bson:"tx_hash,omitempty" yaml:"tx_hash,omitempty"`
	BookingID  uint64            `json:"booking_id" bson:"booking_id" yaml:"booking_id" validate:"required"`
	ListingID  uint64            `json:"listing_id,omitempty" bson:"listing_id,omitempty" yaml:"listing_id,omitempty" validate:"required_if=Kind Booked"`
	Guest      string            `json:"guest,omitempty" bson:"guest,omitempty" yaml:"guest,omitempty" validate:"required_if=Kind Booked,omitempty,eth_addr"`
	StartDay   calendar.EpochDay `json:"start_day,omitempty" bson:"start_day,omitempty" yaml:"start_day,omitempty"`
	EndDay     calendar.EpochDay `json:"end_day,omitempty" bson:"end_day,omitempty" yaml:"end_day,omitempty" validate:"required_if=Kind Booked,omitempty,gtfield=StartDay"`
	TotalPaid  uint64            `json:"total_paid,omitempty" bson:"total_paid,omitempty" yaml:"total_paid,omitempty"`
	PayoutMode uint8             `json:"payout_mode" bson:"payout_mode" yaml:"payout_mode"`
	ObservedAt time.Time         `json:"observed_at,omitempty" bson:"observed_at,omitempty" yaml:"-"`
}
