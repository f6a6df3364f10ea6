// Package histogram renders cast-activity tallies for terminal output.
package histogram

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/yanlabs/farsight/pkg/timeslot"
)

// Render produces a colorized UTC hour-of-day histogram followed by a
// weekday summary. Peak buckets are marked with "^". Empty tallies render a
// "no data" notice instead of bars.
func Render(hours, days timeslot.Tally) string {
	var output strings.Builder

	output.WriteString("📊 Cast Activity (UTC)\n")
	output.WriteString(strings.Repeat("─", 44) + "\n")

	if hours.Total() == 0 {
		output.WriteString("No activity data available\n")
		return output.String()
	}

	total := hours.Total()
	if total < 20 {
		output.WriteString(fmt.Sprintf("⚠️  Limited data: only %d casts available\n", total))
		output.WriteString(strings.Repeat("─", 44) + "\n")
	}

	peakHours, hourMax := timeslot.FindPeaks(hours)
	peakSet := make(map[int]bool, len(peakHours))
	for _, h := range peakHours {
		peakSet[h] = true
	}

	grey := color.New(color.FgHiBlack)
	yellow := color.New(color.FgYellow)

	for hour := range 24 {
		count := hours[hour]

		line := fmt.Sprintf("%02d:00 ", hour)
		if peakSet[hour] {
			line += yellow.Sprint("^") + " "
		} else {
			line += "  "
		}

		if count > 0 {
			line += fmt.Sprintf("(%2d) ", count)
			if count == 1 {
				line += grey.Sprint("·")
			} else if peakSet[hour] {
				line += yellow.Sprint(strings.Repeat("█", barWidth(count, hourMax)))
			} else {
				line += grey.Sprint(strings.Repeat("█", barWidth(count, hourMax)))
			}
		}

		output.WriteString(line + "\n")
	}

	output.WriteString("\nBy weekday:\n")
	peakDays, dayMax := timeslot.FindPeaks(days)
	dayPeakSet := make(map[int]bool, len(peakDays))
	for _, d := range peakDays {
		dayPeakSet[d] = true
	}

	for day := range 7 {
		count := days[day]
		line := fmt.Sprintf("%-9s ", timeslot.WeekdayLabel(day))
		if dayPeakSet[day] {
			line += yellow.Sprint("^") + " "
		} else {
			line += "  "
		}
		if count > 0 {
			line += fmt.Sprintf("(%2d) ", count)
			if dayPeakSet[day] {
				line += yellow.Sprint(strings.Repeat("█", barWidth(count, dayMax)))
			} else {
				line += grey.Sprint(strings.Repeat("█", barWidth(count, dayMax)))
			}
		}
		output.WriteString(line + "\n")
	}

	return output.String()
}

const maxBarWidth = 30

// barWidth scales a bucket count so the largest bucket spans maxBarWidth.
func barWidth(count, maxCount int) int {
	if maxCount <= maxBarWidth {
		return count
	}
	w := count * maxBarWidth / maxCount
	if w < 1 {
		w = 1
	}
	return w
}
