//go:build integration

package integration

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"staybook/pkg/calendar"
	"staybook/pkg/client"
	"staybook/pkg/model"
	"staybook/test/integration/testutil"
)

const (
	testHost  = "0x1111111111111111111111111111111111111111"
	testGuest = "0x2222222222222222222222222222222222222222"
)

func seedLedger(t *testing.T, mongo *testutil.MongoHelper) {
	t.Helper()

	mongo.SeedListings(t, model.Listing{
		ID:           1,
		Host:         testHost,
		NightlyPrice: 150_000_000,
		Active:       true,
		PayoutMode:   model.PayoutEscrow,
		UpdatedAt:    time.Now().UTC(),
	})

	mustDay := func(s string) calendar.EpochDay {
		d, err := calendar.ToEpochDay(s)
		if err != nil {
			t.Fatalf("ToEpochDay(%q): %v", s, err)
		}
		return d
	}

	mongo.SeedEvents(t,
		model.LedgerEvent{Kind: model.EventBooked, Position: 100, BookingID: 1, ListingID: 1, Guest: testGuest,
			StartDay: mustDay("2024-03-10"), EndDay: mustDay("2024-03-13"), TotalPaid: 450_000_000},
		model.LedgerEvent{Kind: model.EventBooked, Position: 101, BookingID: 2, ListingID: 1, Guest: testGuest,
			StartDay: mustDay("2024-03-20"), EndDay: mustDay("2024-03-22"), TotalPaid: 300_000_000},
		model.LedgerEvent{Kind: model.EventCancelled, Position: 102, BookingID: 2},
		model.LedgerEvent{Kind: model.EventSettled, Position: 103, BookingID: 1},
	)
}

func TestBlockedDays_CancelledBookingReleasesNights(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, c := env.Setup(t)
	defer env.Cleanup(t, mongo)
	seedLedger(t, mongo)

	resp, err := c.GET(context.Background(), "/api/v1/listings/id/1/blocked-days?year=2024&month=3")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %s", resp.ToString())
	}

	var body struct {
		BlockedDays []int `json:"blocked_days"`
	}
	if err := resp.DecodeData(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := []int{10, 11, 12}
	if len(body.BlockedDays) != len(want) {
		t.Fatalf("blocked days = %v, want %v", body.BlockedDays, want)
	}
	for i := range want {
		if body.BlockedDays[i] != want[i] {
			t.Errorf("blocked days = %v, want %v", body.BlockedDays, want)
			break
		}
	}
}

func TestRangeAvailability(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, c := env.Setup(t)
	defer env.Cleanup(t, mongo)
	seedLedger(t, mongo)

	tests := []struct {
		name      string
		query     string
		available bool
	}{
		{name: "overlaps settled booking", query: "start=2024-03-12&end=2024-03-15", available: false},
		{name: "starts on checkout day", query: "start=2024-03-13&end=2024-03-15", available: true},
		{name: "cancelled range is free", query: "start=2024-03-20&end=2024-03-22", available: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.GET(context.Background(), "/api/v1/listings/id/1/availability?"+tt.query)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %s", resp.ToString())
			}
			var body struct {
				Available bool `json:"available"`
			}
			if err := resp.DecodeData(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.Available != tt.available {
				t.Errorf("available = %v, want %v", body.Available, tt.available)
			}
		})
	}
}

func TestBookingsByHost(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, c := env.Setup(t)
	defer env.Cleanup(t, mongo)
	seedLedger(t, mongo)

	resp, err := c.GET(context.Background(), "/api/v1/bookings/host/"+testHost)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %s", resp.ToString())
	}

	var list struct {
		Bookings []model.BookingRecord `json:"bookings"`
	}
	if err := resp.DecodeData(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	statuses := make(map[uint64]model.BookingStatus, len(list.Bookings))
	for _, b := range list.Bookings {
		statuses[b.BookingID] = b.Status
	}
	if statuses[1] != model.StatusSettled {
		t.Errorf("booking 1 status = %q, want Settled", statuses[1])
	}
	if statuses[2] != model.StatusCancelled {
		t.Errorf("booking 2 status = %q, want Cancelled", statuses[2])
	}
}

func TestBookingsByHost_InvalidAddress(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, c := env.Setup(t)
	defer env.Cleanup(t, mongo)

	resp, err := c.GET(context.Background(), "/api/v1/bookings/host/not-an-address")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %s", resp.ToString())
	}
	if msg := client.GetErrorMessage(resp); !strings.Contains(msg, "INVALID_INPUT") {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestListingNotFound(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, c := env.Setup(t)
	defer env.Cleanup(t, mongo)

	resp, err := c.GET(context.Background(), "/api/v1/listings/id/999")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %s", resp.ToString())
	}
}

func TestCalendarFeed(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, c := env.Setup(t)
	defer env.Cleanup(t, mongo)
	seedLedger(t, mongo)

	resp, err := c.GET(context.Background(), "/api/v1/listings/id/1/calendar.ics")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %s", resp.ToString())
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := string(resp.Body)
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		t.Error("feed is not a VCALENDAR")
	}
	if strings.Count(body, "BEGIN:VEVENT") != 1 {
		t.Errorf("expected one event for the active booking, got feed:\n%s", body)
	}
}
