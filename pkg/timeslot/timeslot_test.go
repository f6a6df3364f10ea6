package timeslot

import (
	"reflect"
	"testing"
	"time"
)

func TestBucketizeCountsHoursAndWeekdays(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC),  // Monday 09 UTC
		time.Date(2024, 3, 5, 9, 45, 0, 0, time.UTC),  // Tuesday 09 UTC
		time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC),  // Tuesday 14 UTC
		time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC), // Sunday 23 UTC
	}

	hours, days := Bucketize(times)

	wantHours := Tally{9: 2, 14: 1, 23: 1}
	if !reflect.DeepEqual(hours, wantHours) {
		t.Errorf("hour tally = %v, want %v", hours, wantHours)
	}

	wantDays := Tally{1: 1, 2: 2, 0: 1} // Monday=1, Tuesday=2, Sunday=0
	if !reflect.DeepEqual(days, wantDays) {
		t.Errorf("day tally = %v, want %v", days, wantDays)
	}
}

func TestBucketizeNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 02:30 local = 21:30 UTC the previous day.
	times := []time.Time{time.Date(2024, 3, 5, 2, 30, 0, 0, loc)}

	hours, days := Bucketize(times)
	if hours[21] != 1 {
		t.Errorf("hour tally = %v, want count at UTC hour 21", hours)
	}
	if days[1] != 1 { // 2024-03-04 is a Monday
		t.Errorf("day tally = %v, want count at Monday", days)
	}
}

func TestBucketizeEmptyInput(t *testing.T) {
	hours, days := Bucketize(nil)
	if len(hours) != 0 || len(days) != 0 {
		t.Errorf("expected empty tallies, got hours=%v days=%v", hours, days)
	}
}

func TestFindPeaks(t *testing.T) {
	tests := []struct {
		name      string
		tally     Tally
		wantKeys  []int
		wantValue int
	}{
		{
			name:      "single peak",
			tally:     Tally{9: 3, 14: 1, 20: 2},
			wantKeys:  []int{9},
			wantValue: 3,
		},
		{
			name:      "tied peaks all kept",
			tally:     Tally{9: 3, 14: 3, 20: 1},
			wantKeys:  []int{9, 14},
			wantValue: 3,
		},
		{
			name:      "every bucket tied",
			tally:     Tally{2: 1, 5: 1, 7: 1},
			wantKeys:  []int{2, 5, 7},
			wantValue: 1,
		},
		{
			name:      "empty tally",
			tally:     Tally{},
			wantKeys:  nil,
			wantValue: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, value := FindPeaks(tt.tally)
			if !reflect.DeepEqual(keys, tt.wantKeys) {
				t.Errorf("peak keys = %v, want %v", keys, tt.wantKeys)
			}
			if value != tt.wantValue {
				t.Errorf("peak value = %d, want %d", value, tt.wantValue)
			}
		})
	}
}

func TestLabels(t *testing.T) {
	if got := HourLabel(9); got != "09:00 UTC" {
		t.Errorf("HourLabel(9) = %q", got)
	}
	if got := WeekdayLabel(5); got != "Friday" {
		t.Errorf("WeekdayLabel(5) = %q", got)
	}
}
