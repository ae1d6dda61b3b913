// Package availability derives per-day occupancy of a listing from a
// reconciled booking map.
package availability

import (
	"encoding/json"
	"errors"
	"slices"

	"staybook/pkg/calendar"
	"staybook/pkg/model"
)

var ErrInvalidRange = errors.New("end date must be after start date")

// BlockedDaySet holds 1-based days of one month. It is rebuilt for every
// query and never cached across reconciliations.
type BlockedDaySet map[int]struct{}

func (s BlockedDaySet) Contains(day int) bool {
	_, ok := s[day]
	return ok
}

func (s BlockedDaySet) Len() int {
	return len(s)
}

// Days returns the blocked days in ascending order.
func (s BlockedDaySet) Days() []int {
	days := make([]int, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	slices.Sort(days)
	return days
}

func (s BlockedDaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Days())
}

func (s *BlockedDaySet) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	set := make(BlockedDaySet, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	*s = set
	return nil
}

// BlocksCalendar reports whether a record occupies its nights. Only cancelled
// bookings release them; instant and escrow bookings block alike.
func BlocksCalendar(rec *model.BookingRecord) bool {
	return rec.Status != model.StatusCancelled
}

// BuildBlockedDays marks every day of the month covered by a non-cancelled
// booking of listingID. Bookings are half-open, so the checkout day stays
// free, and days outside the month are clipped.
func BuildBlockedDays(records map[uint64]*model.BookingRecord, listingID uint64, year, month int) (BlockedDaySet, error) {
	first, end, err := calendar.MonthWindow(year, month)
	if err != nil {
		return nil, err
	}

	set := make(BlockedDaySet)
	for _, rec := range records {
		if rec.ListingID != listingID || !BlocksCalendar(rec) {
			continue
		}
		start := max(rec.StartDay, first)
		stop := min(rec.EndDay, end)
		for d := start; d < stop; d++ {
			set[int(d-first)+1] = struct{}{}
		}
	}
	return set, nil
}

// ListingBookings returns the non-cancelled bookings of a listing ordered by
// start day, then booking id.
func ListingBookings(records map[uint64]*model.BookingRecord, listingID uint64) []*model.BookingRecord {
	out := make([]*model.BookingRecord, 0)
	for _, rec := range records {
		if rec.ListingID == listingID && BlocksCalendar(rec) {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, model.CompareByStart)
	return out
}

// Conflicts returns the ids of non-cancelled bookings of listingID that
// overlap [start, end), ascending.
func Conflicts(records map[uint64]*model.BookingRecord, listingID uint64, start, end calendar.EpochDay) []uint64 {
	ids := make([]uint64, 0)
	for _, rec := range records {
		if rec.ListingID == listingID && BlocksCalendar(rec) && rec.Overlaps(start, end) {
			ids = append(ids, rec.BookingID)
		}
	}
	slices.Sort(ids)
	return ids
}
