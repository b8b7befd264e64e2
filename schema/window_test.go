package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowIndexDaily(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w := Window{Granularity: DayGranularity, Start: start, End: start.AddDate(0, 0, 30), Size: 30}

	tests := []struct {
		name string
		t    time.Time
		idx  int
		ok   bool
	}{
		{"first instant", start, 0, true},
		{"late on the first day", start.Add(23*time.Hour + 59*time.Minute), 0, true},
		{"second day", start.AddDate(0, 0, 1), 1, true},
		{"last bucket", start.AddDate(0, 0, 29).Add(12 * time.Hour), 29, true},
		{"end is exclusive", start.AddDate(0, 0, 30), 0, false},
		{"before start", start.Add(-time.Second), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := w.Index(tt.t)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.idx, idx)
			}
		})
	}
}

func TestWindowIndexAcrossDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone data unavailable")
	}
	// 2024-03-10 is 23 hours long in New York
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	w := Window{Granularity: DayGranularity, Start: start, End: time.Date(2024, 3, 31, 0, 0, 0, 0, loc), Size: 30}

	idx, ok := w.Index(time.Date(2024, 3, 11, 0, 30, 0, 0, loc))
	assert.True(t, ok)
	assert.Equal(t, 10, idx)

	// an instant given in UTC lands on the local calendar day
	idx, ok = w.Index(time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, 9, idx)
}

func TestWindowIndexMonthly(t *testing.T) {
	start := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	w := Window{Granularity: MonthGranularity, Start: start, End: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Size: 13}

	idx, ok := w.Index(time.Date(2023, 4, 30, 23, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = w.Index(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, 9, idx)

	idx, ok = w.Index(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, 12, idx)

	_, ok = w.Index(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestWindowLabels(t *testing.T) {
	daily := Window{Granularity: DayGranularity, Start: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), Size: 3}
	assert.Equal(t, []string{"2024-02-28", "2024-02-29", "2024-03-01"}, daily.Labels())

	monthly := Window{Granularity: MonthGranularity, Start: time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), Size: 3}
	assert.Equal(t, []string{"2023-11", "2023-12", "2024-01"}, monthly.Labels())
}
