package histogram

import (
	"strings"
	"testing"

	"github.com/yanlabs/farsight/pkg/timeslot"
)

func TestRenderEmptyTallies(t *testing.T) {
	out := Render(timeslot.Tally{}, timeslot.Tally{})
	if !strings.Contains(out, "No activity data available") {
		t.Errorf("empty tallies should render a no-data notice, got:\n%s", out)
	}
	if strings.Contains(out, "00:00 ") && strings.Contains(out, "(") {
		t.Errorf("empty tallies should not render bars:\n%s", out)
	}
}

func TestRenderMarksPeaks(t *testing.T) {
	hours := timeslot.Tally{9: 3, 14: 3, 20: 1}
	days := timeslot.Tally{2: 5, 5: 2}

	out := Render(hours, days)

	if !strings.Contains(out, "09:00 ") || !strings.Contains(out, "14:00 ") {
		t.Errorf("hour rows missing:\n%s", out)
	}
	if !strings.Contains(out, "( 3)") {
		t.Errorf("peak counts missing:\n%s", out)
	}
	if !strings.Contains(out, "Tuesday") {
		t.Errorf("weekday section missing:\n%s", out)
	}
	if !strings.Contains(out, "Limited data") {
		t.Errorf("limited-data warning expected for small samples:\n%s", out)
	}
}
