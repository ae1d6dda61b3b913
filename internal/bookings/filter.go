// Package bookings selects reconciled bookings by who owns or holds them.
package bookings

import (
	"slices"

	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
)

// FilterByHost returns the bookings on listings owned by host. owners maps
// listing id to host address; listings missing from it match nobody.
func FilterByHost(records map[uint64]*model.BookingRecord, host string, owners map[uint64]string) []*model.BookingRecord {
	out := make([]*model.BookingRecord, 0)
	for _, rec := range records {
		owner, ok := owners[rec.ListingID]
		if ok && sanitizer.SameAddress(owner, host) {
			out = append(out, rec)
		}
	}
	SortByStart(out)
	return out
}

// FilterByGuest returns the bookings made by guest.
func FilterByGuest(records map[uint64]*model.BookingRecord, guest string) []*model.BookingRecord {
	out := make([]*model.BookingRecord, 0)
	for _, rec := range records {
		if sanitizer.SameAddress(rec.Guest, guest) {
			out = append(out, rec)
		}
	}
	SortByStart(out)
	return out
}

// SortByStart orders by check-in day, then booking id.
func SortByStart(records []*model.BookingRecord) {
	slices.SortFunc(records, model.CompareByStart)
}

// SortByID flattens a reconciled map in booking id order.
func SortByID(records map[uint64]*model.BookingRecord) []*model.BookingRecord {
	out := make([]*model.BookingRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	slices.SortFunc(out, model.CompareByID)
	return out
}
