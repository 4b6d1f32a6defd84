package testfixtures

import (
	"testing"
	"time"

	"github.com/example/condo-portal/internal/booking"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvance(t *testing.T) {
	start := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	clock := NewClock(start)

	if got := clock.Advance(90 * time.Minute); !got.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("Advance returned %v", got)
	}
	if got := clock.AdvanceDays(2); got.Day() != 16 {
		t.Fatalf("AdvanceDays returned %v", got)
	}

	nowFn := clock.NowFunc()
	clock.Set(start)
	if got := nowFn(); !got.Equal(start) {
		t.Fatalf("NowFunc should follow Set, got %v", got)
	}
}

func TestClockTodayUsesLocation(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	clock := NewClock(time.Date(2025, time.March, 11, 1, 0, 0, 0, time.UTC))

	if got, want := clock.Today(time.UTC), booking.NewDate(2025, time.March, 11); got != want {
		t.Fatalf("Today(UTC) = %v, want %v", got, want)
	}
	if got, want := clock.Today(saoPaulo), booking.NewDate(2025, time.March, 10); got != want {
		t.Fatalf("Today(Sao_Paulo) = %v, want %v", got, want)
	}
}
