package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"staybook/internal/availability"
	"staybook/internal/ledger"
	"staybook/pkg/calendar"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/model"

	ical "github.com/arran4/golang-ical"
)

const feedProductID = "-//StayBook//Availability//EN"

type BookingReconciler interface {
	Reconcile(ctx context.Context, w ledger.Window) (*ledger.Result, error)
}

type BlockedDays struct {
	ListingID uint64                     `json:"listing_id"`
	Year      int                        `json:"year"`
	Month     int                        `json:"month"`
	Days      availability.BlockedDaySet `json:"blocked_days"`
	Window    ledger.Window              `json:"window"`
}

type RangeAvailability struct {
	ListingID uint64        `json:"listing_id"`
	Start     string        `json:"start"`
	End       string        `json:"end"`
	Nights    int64         `json:"nights"`
	Available bool          `json:"available"`
	Conflicts []uint64      `json:"conflicts"`
	Window    ledger.Window `json:"window"`
}

type MonthView struct {
	ListingID    uint64                     `json:"listing_id"`
	Year         int                        `json:"year"`
	Month        int                        `json:"month"`
	DaysInMonth  int                        `json:"days_in_month"`
	FirstWeekday int                        `json:"first_weekday"`
	Blocked      availability.BlockedDaySet `json:"blocked_days"`
	Window       ledger.Window              `json:"window"`
}

type AvailabilityService interface {
	ComputeBlockedDays(ctx context.Context, listingID uint64, year, month int) (*BlockedDays, error)
	IsRangeAvailable(ctx context.Context, listingID uint64, startISO, endISO string) (*RangeAvailability, error)
	MonthView(ctx context.Context, listingID uint64, year, month int) (*MonthView, error)
	CalendarFeed(ctx context.Context, listingID uint64) ([]byte, error)
}

type availabilityService struct {
	reconciler BookingReconciler
	log        *logger.Logger
	now        func() time.Time
}

func NewAvailabilityService(reconciler BookingReconciler, log *logger.Logger) AvailabilityService {
	return &availabilityService{
		reconciler: reconciler,
		log:        log,
		now:        time.Now,
	}
}

func (s *availabilityService) reconcile(ctx context.Context) (*ledger.Result, error) {
	result, err := s.reconciler.Reconcile(ctx, ledger.Window{})
	if err != nil {
		return nil, ledger.ToAppError(err)
	}
	return result, nil
}

// ComputeBlockedDays reconciles the default window and returns the occupied
// days of one month.
func (s *availabilityService) ComputeBlockedDays(ctx context.Context, listingID uint64, year, month int) (*BlockedDays, error) {
	if _, _, err := calendar.MonthWindow(year, month); err != nil {
		return nil, invalidInput(err)
	}

	result, err := s.reconcile(ctx)
	if err != nil {
		return nil, err
	}

	days, err := availability.BuildBlockedDays(result.Records, listingID, year, month)
	if err != nil {
		return nil, invalidInput(err)
	}

	s.log.Debug("Blocked days computed",
		"listing_id", listingID,
		"year", year,
		"month", month,
		"blocked", days.Len(),
	)

	return &BlockedDays{
		ListingID: listingID,
		Year:      year,
		Month:     month,
		Days:      days,
		Window:    result.Window,
	}, nil
}

// IsRangeAvailable checks whether [startISO, endISO) is free for a new stay.
func (s *availabilityService) IsRangeAvailable(ctx context.Context, listingID uint64, startISO, endISO string) (*RangeAvailability, error) {
	start, end, err := parseRange(startISO, endISO)
	if err != nil {
		return nil, invalidInput(err)
	}

	result, err := s.reconcile(ctx)
	if err != nil {
		return nil, err
	}

	conflicts := availability.Conflicts(result.Records, listingID, start, end)
	return &RangeAvailability{
		ListingID: listingID,
		Start:     calendar.EpochDayToISO(start),
		End:       calendar.EpochDayToISO(end),
		Nights:    int64(end - start),
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
		Window:    result.Window,
	}, nil
}

func parseRange(startISO, endISO string) (calendar.EpochDay, calendar.EpochDay, error) {
	start, err := calendar.ToEpochDay(startISO)
	if err != nil {
		return 0, 0, err
	}
	end, err := calendar.ToEpochDay(endISO)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("%w: %s to %s", availability.ErrInvalidRange, startISO, endISO)
	}
	return start, end, nil
}

func (s *availabilityService) MonthView(ctx context.Context, listingID uint64, year, month int) (*MonthView, error) {
	daysInMonth, err := calendar.DaysInMonth(year, month)
	if err != nil {
		return nil, invalidInput(err)
	}
	firstWeekday, err := calendar.FirstWeekday(year, month)
	if err != nil {
		return nil, invalidInput(err)
	}

	blocked, err := s.ComputeBlockedDays(ctx, listingID, year, month)
	if err != nil {
		return nil, err
	}

	return &MonthView{
		ListingID:    listingID,
		Year:         year,
		Month:        month,
		DaysInMonth:  daysInMonth,
		FirstWeekday: firstWeekday,
		Blocked:      blocked.Days,
		Window:       blocked.Window,
	}, nil
}

// CalendarFeed renders the listing's occupied stays as all-day iCalendar
// events. DTEND is the checkout day, exclusive as the format requires.
func (s *availabilityService) CalendarFeed(ctx context.Context, listingID uint64) ([]byte, error) {
	result, err := s.reconcile(ctx)
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC()
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(feedProductID)
	cal.SetXWRCalName("Listing " + strconv.FormatUint(listingID, 10))

	bookings := availability.ListingBookings(result.Records, listingID)
	for _, rec := range bookings {
		event := cal.AddEvent(eventUID(rec))
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(rec.StartDay.Time())
		event.SetAllDayEndAt(rec.EndDay.Time())
		event.SetSummary(fmt.Sprintf("Reserved (%d nights)", rec.Nights))
		event.SetDescription(fmt.Sprintf("Booking %d, %s, %s", rec.BookingID, rec.Status, rec.TotalPaidDisplay))
		event.SetStatus(feedStatus(rec.Status))
	}

	s.log.Debug("Calendar feed rendered", "listing_id", listingID, "events", len(bookings))
	return []byte(cal.Serialize()), nil
}

func eventUID(rec *model.BookingRecord) string {
	return "booking-" + strconv.FormatUint(rec.BookingID, 10) + "@staybook"
}

func feedStatus(status model.BookingStatus) ical.ObjectStatus {
	if status == model.StatusBooked {
		return ical.ObjectStatusTentative
	}
	return ical.ObjectStatusConfirmed
}

// invalidInput keeps the calendar or range error in the chain so callers can
// still match it with errors.Is.
func invalidInput(err error) *apperrors.AppError {
	return apperrors.Wrap(err, apperrors.CodeInvalidInput, err.Error(), http.StatusBadRequest)
}
