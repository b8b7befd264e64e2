package schema

import "time"

// Label formats for each bucket granularity.
const (
	DayLabelLayout   = "2006-01-02"
	MonthLabelLayout = "2006-01"
)

// Contains reports whether t falls inside [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Index returns the bucket offset of t from the window start. Bucket boundaries
// follow the calendar of the window's location, so daylight saving shifts do not
// move events between days. It returns false for instants outside the window.
func (w Window) Index(t time.Time) (int, bool) {
	if !w.Contains(t) {
		return 0, false
	}
	local := t.In(w.Start.Location())

	var idx int
	switch w.Granularity {
	case MonthGranularity:
		idx = (local.Year()-w.Start.Year())*12 + int(local.Month()-w.Start.Month())
	default:
		idx = civilDays(w.Start, local)
	}
	if idx < 0 || idx >= w.Size {
		return 0, false
	}
	return idx, true
}

// BucketStart returns the first instant of bucket i.
func (w Window) BucketStart(i int) time.Time {
	if w.Granularity == MonthGranularity {
		return w.Start.AddDate(0, i, 0)
	}
	return w.Start.AddDate(0, 0, i)
}

// Label renders the calendar label of bucket i, e.g. 2024-03-09 or 2024-03.
func (w Window) Label(i int) string {
	if w.Granularity == MonthGranularity {
		return w.BucketStart(i).Format(MonthLabelLayout)
	}
	return w.BucketStart(i).Format(DayLabelLayout)
}

// Labels renders the labels of every bucket, oldest first.
func (w Window) Labels() []string {
	labels := make([]string, w.Size)
	for i := range labels {
		labels[i] = w.Label(i)
	}
	return labels
}

// civilDays counts calendar days between the dates of a and b, ignoring the clock.
func civilDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
