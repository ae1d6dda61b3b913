package replay

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"staybook/internal/eventlog/repository"
	"staybook/internal/ingest"
	"staybook/internal/ledger"
	"staybook/pkg/calendar"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadExample(t *testing.T) *Fixture {
	t.Helper()
	f, err := os.Open("../../fixtures/ledger.yaml")
	require.NoError(t, err)
	defer f.Close()

	fixture, err := LoadFixture(f)
	require.NoError(t, err)
	return fixture
}

func TestLoadFixture_Example(t *testing.T) {
	fixture := loadExample(t)

	require.Len(t, fixture.Listings, 2)
	assert.Equal(t, model.PayoutInstant, fixture.Listings[1].PayoutMode)

	events, err := fixture.LedgerEvents()
	require.NoError(t, err)
	require.Len(t, events, 8)
	assert.Equal(t, calendar.EpochDay(20000), events[0].StartDay)
	assert.Equal(t, calendar.EpochDay(20003), events[0].EndDay)
}

func TestLoadFixture_Errors(t *testing.T) {
	_, err := LoadFixture(strings.NewReader("events:\n  - kind: Booked\n    colour: blue\n"))
	assert.Error(t, err, "unknown fields are rejected")

	f, err := LoadFixture(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Events)

	f, err = LoadFixture(strings.NewReader("events:\n  - kind: Booked\n    booking_id: 1\n    start_date: \"2024-13-01\"\n"))
	require.NoError(t, err)
	_, err = f.LedgerEvents()
	assert.Error(t, err)
}

func TestMessages(t *testing.T) {
	messages, err := loadExample(t).Messages()
	require.NoError(t, err)
	require.Len(t, messages, 10)

	first := messages[0]
	assert.Equal(t, ingest.EventTypeListingUpserted, first.GetEventType())
	assert.Equal(t, "listing-1", first.Key)

	booked := messages[2]
	assert.Equal(t, ingest.EventTypeBooked, booked.GetEventType())
	assert.Equal(t, "1", booked.Key)
	assert.NotEmpty(t, booked.GetEventID())

	again, err := loadExample(t).Messages()
	require.NoError(t, err)
	assert.Equal(t, booked.GetEventID(), again[2].GetEventID(), "event ids are stable across runs")
	assert.NotEqual(t, booked.GetEventID(), again[3].GetEventID())
	assert.Equal(t, Source, booked.Headers[kafka.HeaderSource])

	var ev model.LedgerEvent
	require.NoError(t, booked.DecodeValue(&ev))
	assert.Equal(t, calendar.EpochDay(20000), ev.StartDay)

	last := messages[len(messages)-1]
	assert.Equal(t, ingest.EventTypeCancelled, last.GetEventType())
	assert.Equal(t, "4", last.Key)
}

func TestMessages_UnknownKind(t *testing.T) {
	f := &Fixture{Events: []FixtureEvent{{LedgerEvent: model.LedgerEvent{Kind: "Refunded", BookingID: 1}}}}
	_, err := f.Messages()
	assert.Error(t, err)
}

func TestDryRun(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	result, err := loadExample(t).DryRun(context.Background(), ledger.Window{}, ledger.Options{Lookback: 1000, CheckInHourUTC: 15}, log)
	require.NoError(t, err)

	assert.Equal(t, ledger.Window{From: 0, To: 122}, result.Window)
	require.Len(t, result.Records, 4)
	assert.Equal(t, model.StatusSettled, result.Records[1].Status)
	assert.Equal(t, model.StatusCancelled, result.Records[2].Status)
	assert.Equal(t, model.StatusSettled, result.Records[3].Status, "instant payout settles at booking")
	assert.Equal(t, model.StatusCancelled, result.Records[4].Status, "cancel wins over settle")
}

type listingRecorder struct {
	upserted []model.Listing
	err      error
}

func (r *listingRecorder) Upsert(_ context.Context, l *model.Listing) error {
	if r.err != nil {
		return r.err
	}
	r.upserted = append(r.upserted, *l)
	return nil
}

func TestSeed(t *testing.T) {
	fixture := loadExample(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	src := repository.NewMemorySource()
	listings := &listingRecorder{}

	inserted, err := fixture.Seed(context.Background(), src, listings, now)
	require.NoError(t, err)
	assert.Equal(t, 8, inserted)
	require.Len(t, listings.upserted, 2)
	assert.Equal(t, now, listings.upserted[0].UpdatedAt)

	pos, err := src.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Positive(t, pos)

	// Seeding twice stores nothing new.
	inserted, err = fixture.Seed(context.Background(), src, listings, now)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestSeed_ListingError(t *testing.T) {
	fixture := loadExample(t)
	src := repository.NewMemorySource()

	_, err := fixture.Seed(context.Background(), src, &listingRecorder{err: errors.New("write failed")}, time.Now())
	require.Error(t, err)

	pos, err := src.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pos)
}
