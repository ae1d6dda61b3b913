package availability

import (
	"encoding/json"
	"testing"

	"staybook/pkg/calendar"
	"staybook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, iso string) calendar.EpochDay {
	t.Helper()
	d, err := calendar.ToEpochDay(iso)
	require.NoError(t, err)
	return d
}

func record(id, listing uint64, start, end calendar.EpochDay, status model.BookingStatus, mode model.PayoutMode) *model.BookingRecord {
	return &model.BookingRecord{
		BookingID:  id,
		ListingID:  listing,
		StartDay:   start,
		EndDay:     end,
		Status:     status,
		PayoutMode: mode,
	}
}

func TestBuildBlockedDays_EndDayExclusive(t *testing.T) {
	records := map[uint64]*model.BookingRecord{
		1: record(1, 5, day(t, "2025-09-10"), day(t, "2025-09-13"), model.StatusBooked, model.PayoutEscrow),
	}

	set, err := BuildBlockedDays(records, 5, 2025, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 12}, set.Days())
	assert.False(t, set.Contains(13))
}

func TestBuildBlockedDays_CancelledNeverBlocks(t *testing.T) {
	records := map[uint64]*model.BookingRecord{
		1: record(1, 5, day(t, "2025-09-10"), day(t, "2025-09-13"), model.StatusCancelled, model.PayoutEscrow),
		2: record(2, 5, day(t, "2025-09-20"), day(t, "2025-09-21"), model.StatusCancelled, model.PayoutInstant),
	}

	set, err := BuildBlockedDays(records, 5, 2025, 9)
	require.NoError(t, err)
	assert.Zero(t, set.Len())
}

func TestBuildBlockedDays_InstantBlocksLikeEscrow(t *testing.T) {
	records := map[uint64]*model.BookingRecord{
		1: record(1, 5, day(t, "2025-09-01"), day(t, "2025-09-03"), model.StatusSettled, model.PayoutInstant),
		2: record(2, 5, day(t, "2025-09-05"), day(t, "2025-09-06"), model.StatusSettled, model.PayoutEscrow),
	}

	set, err := BuildBlockedDays(records, 5, 2025, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 5}, set.Days())
}

func TestBuildBlockedDays_ClipsToMonth(t *testing.T) {
	records := map[uint64]*model.BookingRecord{
		1: record(1, 5, day(t, "2025-08-30"), day(t, "2025-09-02"), model.StatusBooked, model.PayoutEscrow),
		2: record(2, 5, day(t, "2025-09-29"), day(t, "2025-10-03"), model.StatusBooked, model.PayoutEscrow),
	}

	sept, err := BuildBlockedDays(records, 5, 2025, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 29, 30}, sept.Days())

	aug, err := BuildBlockedDays(records, 5, 2025, 8)
	require.NoError(t, err)
	assert.Equal(t, []int{30, 31}, aug.Days())

	oct, err := BuildBlockedDays(records, 5, 2025, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, oct.Days())
}

func TestBuildBlockedDays_OtherListingsIgnored(t *testing.T) {
	records := map[uint64]*model.BookingRecord{
		1: record(1, 6, day(t, "2025-09-10"), day(t, "2025-09-13"), model.StatusBooked, model.PayoutEscrow),
	}

	set, err := BuildBlockedDays(records, 5, 2025, 9)
	require.NoError(t, err)
	assert.Zero(t, set.Len())
}

func TestBuildBlockedDays_LeapFebruary(t *testing.T) {
	records := map[uint64]*model.BookingRecord{
		1: record(1, 5, day(t, "2024-02-28"), day(t, "2024-03-01"), model.StatusBooked, model.PayoutEscrow),
	}

	set, err := BuildBlockedDays(records, 5, 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{28, 29}, set.Days())
}

func TestBuildBlockedDays_InvalidMonth(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		_, err := BuildBlockedDays(nil, 5, 2025, month)
		assert.ErrorIs(t, err, calendar.ErrInvalidMonth)
	}
}

func TestBlockedDaySet_JSON(t *testing.T) {
	set := BlockedDaySet{12: {}, 3: {}, 7: {}}

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `[3,7,12]`, string(data))

	empty, err := json.Marshal(BlockedDaySet{})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(empty))

	var decoded BlockedDaySet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, set.Days(), decoded.Days())
}

func TestListingBookingsAndConflicts(t *testing.T) {
	records := map[uint64]*model.BookingRecord{
		3: record(3, 5, 100, 103, model.StatusBooked, model.PayoutEscrow),
		1: record(1, 5, 90, 92, model.StatusSettled, model.PayoutInstant),
		2: record(2, 5, 100, 101, model.StatusBooked, model.PayoutEscrow),
		4: record(4, 5, 101, 105, model.StatusCancelled, model.PayoutEscrow),
		5: record(5, 6, 100, 110, model.StatusBooked, model.PayoutEscrow),
	}

	var ids []uint64
	for _, rec := range ListingBookings(records, 5) {
		ids = append(ids, rec.BookingID)
	}
	assert.Equal(t, []uint64{1, 2, 3}, ids)

	assert.Equal(t, []uint64{2, 3}, Conflicts(records, 5, 100, 102))
	assert.Empty(t, Conflicts(records, 5, 92, 100))
	assert.Equal(t, []uint64{1}, Conflicts(records, 5, 91, 92))
}
