// Package timeslot buckets activity timestamps into UTC hour-of-day and
// weekday tallies and locates the busiest buckets.
package timeslot

import (
	"fmt"
	"sort"
	"time"
)

// Tally maps a bucket key (hour 0-23 or weekday 0=Sunday..6=Saturday) to an
// activity count.
type Tally map[int]int

// Total returns the sum of all counts in the tally.
func (t Tally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Bucketize tallies each instant into its UTC hour-of-day and UTC weekday
// bucket. Empty input yields two empty tallies; callers must treat that as
// "no data" rather than an error.
func Bucketize(times []time.Time) (hours, days Tally) {
	hours = make(Tally)
	days = make(Tally)
	for _, ts := range times {
		utc := ts.UTC()
		hours[utc.Hour()]++
		days[int(utc.Weekday())]++
	}
	return hours, days
}

// FindPeaks returns every bucket whose count equals the maximum count in the
// tally, together with that maximum. Ties are all kept. Keys are visited in
// ascending numeric order so the result is deterministic; an empty tally
// yields an empty key set and a peak of zero.
func FindPeaks(tally Tally) (peakKeys []int, peakValue int) {
	keys := make([]int, 0, len(tally))
	for k := range tally {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		count := tally[k]
		switch {
		case count > peakValue:
			peakValue = count
			peakKeys = []int{k}
		case count == peakValue && peakValue > 0:
			peakKeys = append(peakKeys, k)
		}
	}
	return peakKeys, peakValue
}

// HourLabel formats an hour bucket as a clock label, e.g. 9 -> "09:00 UTC".
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d:00 UTC", hour)
}

// WeekdayLabel returns the English name for a weekday bucket (0=Sunday).
func WeekdayLabel(day int) string {
	return time.Weekday(day).String()
}
