package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/example/condo-portal/internal/booking"
)

// calendarCache keeps recently built month projections so repeated calendar
// views skip the reservation query while nothing has been written.
type calendarCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]calendarCacheEntry
	// generation advances on every Invalidate. A projection built from a
	// read that started before the latest write is never stored.
	generation uint64
}

type calendarCacheEntry struct {
	calendar  Calendar
	expiresAt time.Time
}

func newCalendarCache(ttl time.Duration, maxEntries int, now func() time.Time) *calendarCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &calendarCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]calendarCacheEntry),
	}
}

func (c *calendarCache) Get(key string) (Calendar, bool) {
	if c == nil {
		return Calendar{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Calendar{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return Calendar{}, false
	}
	return cloneCalendar(entry.calendar), true
}

// Generation returns the token to pass to Store for a projection whose
// reads start now.
func (c *calendarCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Store caches calendar unless the cache was invalidated after generation
// was taken. It reports whether the entry was kept.
func (c *calendarCache) Store(key string, generation uint64, calendar Calendar) bool {
	if c == nil {
		return false
	}
	cloned := cloneCalendar(calendar)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return false
	}

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = calendarCacheEntry{calendar: cloned, expiresAt: expiry}
	return true
}

func (c *calendarCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]calendarCacheEntry)
	c.generation++
	c.mu.Unlock()
}

func (c *calendarCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *calendarCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *calendarCache) evictOneLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey, oldest = key, entry.expiresAt
		}
	}
	delete(c.entries, oldestKey)
}

// cloneCalendar copies the slot slices so callers cannot mutate cached data.
func cloneCalendar(in Calendar) Calendar {
	out := in
	if in.Days != nil {
		out.Days = make(map[int][]booking.Slot, len(in.Days))
		for day, slots := range in.Days {
			out.Days[day] = append([]booking.Slot(nil), slots...)
		}
	}
	if in.Grid != nil {
		out.Grid = make([]booking.CalendarDay, len(in.Grid))
		for i, cell := range in.Grid {
			cell.Slots = append([]booking.Slot(nil), cell.Slots...)
			out.Grid[i] = cell
		}
	}
	return out
}

// calendarCacheKey includes today so the grid's IsToday flag never goes stale
// across midnight.
func calendarCacheKey(year int, month time.Month, area string, today booking.Date) string {
	if area == "" {
		area = booking.AllAreas
	}
	return fmt.Sprintf("%04d-%02d|%s|%s", year, int(month), area, today)
}
