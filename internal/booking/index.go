package booking

import (
	"sort"
	"strings"
	"time"
)

// AllAreas is the area filter value meaning "no filter".
const AllAreas = "all"

const gridCells = 42

// Slot is an occupied time range shown on the calendar.
type Slot struct {
	ReservationID string
	AreaID        string
	AreaName      string
	StartTime     TimeOfDay
	EndTime       TimeOfDay
	Status        ReservationStatus
}

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date    Date
	InMonth bool
	IsToday bool
	Slots   []Slot
}

// Index is a read-only projection of reservation records for calendar
// rendering. It never detects conflicts.
type Index struct {
	records []Record
}

// NewIndex copies records into a new Index.
func NewIndex(records []Record) Index {
	copied := make([]Record, len(records))
	copy(copied, records)
	return Index{records: copied}
}

// Len reports the number of indexed records.
func (idx Index) Len() int { return len(idx.records) }

// ForMonth maps day-of-month to the slots occupied that day. An empty or
// "all" areaFilter includes every area.
func (idx Index) ForMonth(year int, month time.Month, areaFilter string) map[int][]Slot {
	filter := normalizeFilter(areaFilter)
	days := make(map[int][]Slot)
	for _, record := range idx.records {
		if !record.Date.InMonth(year, month) {
			continue
		}
		if filter != "" && record.AreaID != filter {
			continue
		}
		days[record.Date.Day] = append(days[record.Date.Day], slotOf(record))
	}
	for day := range days {
		sortSlots(days[day])
	}
	return days
}

// MonthGrid lays the month out as 42 cells starting on the Sunday on or
// before the first of the month. Cells outside the month carry their own
// slots so trailing days are populated too.
func (idx Index) MonthGrid(year int, month time.Month, areaFilter string, today Date) []CalendarDay {
	first := NewDate(year, month, 1)
	start := first.AddDays(-int(first.Weekday()))
	last := start.AddDays(gridCells - 1)

	filter := normalizeFilter(areaFilter)
	byDate := make(map[Date][]Slot)
	for _, record := range idx.records {
		if record.Date.Before(start) || record.Date.After(last) {
			continue
		}
		if filter != "" && record.AreaID != filter {
			continue
		}
		byDate[record.Date] = append(byDate[record.Date], slotOf(record))
	}

	grid := make([]CalendarDay, gridCells)
	for i := range grid {
		date := start.AddDays(i)
		slots := byDate[date]
		sortSlots(slots)
		grid[i] = CalendarDay{
			Date:    date,
			InMonth: date.InMonth(year, month),
			IsToday: date == today,
			Slots:   slots,
		}
	}
	return grid
}

func normalizeFilter(areaFilter string) string {
	filter := strings.TrimSpace(areaFilter)
	if strings.EqualFold(filter, AllAreas) {
		return ""
	}
	return filter
}

func slotOf(record Record) Slot {
	return Slot{
		ReservationID: record.ID,
		AreaID:        record.AreaID,
		AreaName:      record.AreaName,
		StartTime:     record.StartTime,
		EndTime:       record.EndTime,
		Status:        record.Status,
	}
}

func sortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.AreaName != b.AreaName {
			return a.AreaName < b.AreaName
		}
		return a.ReservationID < b.ReservationID
	})
}
