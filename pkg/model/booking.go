package model

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"staybook/pkg/calendar"
)

type PayoutMode string

const (
	PayoutEscrow  PayoutMode = "Escrow"
	PayoutInstant PayoutMode = "Instant"
)

// PayoutModeFromCode maps the contract's enum value. 0 is escrow, anything
// else is treated as instant.
func PayoutModeFromCode(code uint8) PayoutMode {
	if code == 0 {
		return PayoutEscrow
	}
	return PayoutInstant
}

type BookingStatus string

const (
	StatusBooked    BookingStatus = "Booked"
	StatusCancelled BookingStatus = "Cancelled"
	StatusSettled   BookingStatus = "Settled"
)

const (
	USDCDecimals = 6
	USDCSymbol   = "USDC"
)

type BookingRecord struct {
	BookingID        uint64            `json:"booking_id"`
	ListingID        uint64            `json:"listing_id"`
	Guest            string            `json:"guest"`
	StartDay         calendar.EpochDay `json:"start_day"`
	EndDay           calendar.EpochDay `json:"end_day"`
	CheckInDate      string            `json:"check_in_date"`
	CheckOutDate     string            `json:"check_out_date"`
	Nights           int64             `json:"nights"`
	TotalPaid        uint64            `json:"total_paid"`
	TotalPaidDisplay string            `json:"total_paid_display"`
	PayoutMode       PayoutMode        `json:"payout_mode"`
	Status           BookingStatus     `json:"status"`
	CheckInTimestamp int64             `json:"check_in_ts"`
	Cancellable      bool              `json:"cancellable"`
}

// SetStatus updates the status and the fields derived from it.
func (b *BookingRecord) SetStatus(status BookingStatus) {
	b.Status = status
	b.Cancellable = status == StatusBooked
}

// CompareByStart orders records by StartDay, then BookingID.
func CompareByStart(a, b *BookingRecord) int {
	if c := cmp.Compare(a.StartDay, b.StartDay); c != 0 {
		return c
	}
	return cmp.Compare(a.BookingID, b.BookingID)
}

// CompareByID orders records by BookingID.
func CompareByID(a, b *BookingRecord) int {
	return cmp.Compare(a.BookingID, b.BookingID)
}

// Overlaps reports whether the record's [StartDay, EndDay) intersects [start, end).
func (b *BookingRecord) Overlaps(start, end calendar.EpochDay) bool {
	return b.StartDay < end && start < b.EndDay
}

// FormatUSDC renders an amount of 6-decimal base units, e.g. 123450000 -> "123.45 USDC".
func FormatUSDC(units uint64) string {
	return FormatUnits(units, USDCDecimals) + " " + USDCSymbol
}

func FormatUnits(units uint64, decimals int) string {
	if decimals <= 0 {
		return strconv.FormatUint(units, 10)
	}
	scale := uint64(1)
	for range decimals {
		scale *= 10
	}
	whole := units / scale
	frac := units % scale
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%0*d", decimals, frac), "0")
	return strconv.FormatUint(whole, 10) + "." + fracStr
}
