package booking

// Overlaps reports whether two half-open [start, end) intervals on the same day intersect.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// Conflicts returns the existing records that would double-book candidate:
// same area, same date, overlapping time range. Cancelled records and the
// candidate itself are never reported.
func Conflicts(existing []Record, candidate Record) []Record {
	if candidate.Status == StatusCancelled {
		return nil
	}
	var conflicts []Record
	for _, record := range existing {
		if candidate.ID != "" && record.ID == candidate.ID {
			continue
		}
		if record.Status == StatusCancelled {
			continue
		}
		if record.AreaID != candidate.AreaID || record.Date != candidate.Date {
			continue
		}
		if !Overlaps(record.StartTime, record.EndTime, candidate.StartTime, candidate.EndTime) {
			continue
		}
		conflicts = append(conflicts, record)
	}
	return conflicts
}
