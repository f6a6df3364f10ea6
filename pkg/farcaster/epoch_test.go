package farcaster

import (
	"testing"
	"time"
)

func TestEpochTime(t *testing.T) {
	tests := []struct {
		name        string
		seconds     int64
		want        time.Time
		wantHour    int
		wantWeekday time.Weekday
	}{
		{
			name:        "zero is the epoch itself, a Friday",
			seconds:     0,
			want:        time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			wantHour:    0,
			wantWeekday: time.Friday,
		},
		{
			name:        "one day later",
			seconds:     86400,
			want:        time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC),
			wantHour:    0,
			wantWeekday: time.Saturday,
		},
		{
			name:        "mid-afternoon offset",
			seconds:     14*3600 + 30*60,
			want:        time.Date(2021, 1, 1, 14, 30, 0, 0, time.UTC),
			wantHour:    14,
			wantWeekday: time.Friday,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EpochTime(tt.seconds)
			if !got.Equal(tt.want) {
				t.Errorf("EpochTime(%d) = %v, want %v", tt.seconds, got, tt.want)
			}
			if got.Hour() != tt.wantHour {
				t.Errorf("hour = %d, want %d", got.Hour(), tt.wantHour)
			}
			if got.Weekday() != tt.wantWeekday {
				t.Errorf("weekday = %v, want %v", got.Weekday(), tt.wantWeekday)
			}
		})
	}
}

func TestEpochSecondsRoundTrip(t *testing.T) {
	instant := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	if got := EpochTime(EpochSeconds(instant)); !got.Equal(instant) {
		t.Errorf("round trip = %v, want %v", got, instant)
	}
}

func TestCastTime(t *testing.T) {
	cast := Cast{Timestamp: 0}
	if got := cast.Time(); !got.Equal(Epoch) {
		t.Errorf("Cast.Time() = %v, want %v", got, Epoch)
	}
}
