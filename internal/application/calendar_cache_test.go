package application

import (
	"testing"
	"time"

	"github.com/example/condo-portal/internal/booking"
)

func TestCalendarCache(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	cache := newCalendarCache(time.Minute, 2, func() time.Time { return now })
	today := booking.NewDate(2025, time.March, 10)

	calendar := Calendar{
		Year:  2025,
		Month: time.March,
		Days:  map[int][]booking.Slot{15: {{ReservationID: "r1"}}},
	}
	key := calendarCacheKey(2025, time.March, "", today)
	cache.Store(key, cache.Generation(), calendar)

	got, ok := cache.Get(key)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	got.Days[15][0].ReservationID = "mutated"
	again, _ := cache.Get(key)
	if again.Days[15][0].ReservationID != "r1" {
		t.Fatalf("expected cached calendar to be isolated from callers")
	}

	if key != calendarCacheKey(2025, time.March, booking.AllAreas, today) {
		t.Fatalf("expected empty and all area filters to share a key")
	}

	cache.Store(calendarCacheKey(2025, time.April, "", today), cache.Generation(), calendar)
	cache.Store(calendarCacheKey(2025, time.May, "", today), cache.Generation(), calendar)
	if cache.Len() != 2 {
		t.Fatalf("expected size to be bounded, got %d", cache.Len())
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get(calendarCacheKey(2025, time.May, "", today)); ok {
		t.Fatalf("expected entry to expire")
	}

	cache.Store(key, cache.Generation(), calendar)
	cache.Invalidate()
	if _, ok := cache.Get(key); ok {
		t.Fatalf("expected invalidate to clear entries")
	}
}

func TestCalendarCacheDropsProjectionsOlderThanInvalidate(t *testing.T) {
	t.Parallel()

	cache := newCalendarCache(time.Minute, 8, nil)
	key := calendarCacheKey(2025, time.March, "", booking.NewDate(2025, time.March, 10))

	generation := cache.Generation()
	cache.Invalidate()
	if cache.Store(key, generation, Calendar{Year: 2025, Month: time.March}) {
		t.Fatalf("expected a projection read before the write to be dropped")
	}
	if _, ok := cache.Get(key); ok {
		t.Fatalf("expected no cached entry")
	}

	if !cache.Store(key, cache.Generation(), Calendar{Year: 2025, Month: time.March}) {
		t.Fatalf("expected a fresh projection to be stored")
	}
}
