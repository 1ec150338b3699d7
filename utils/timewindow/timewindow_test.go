package timewindow

import (
	"math"
	"testing"
	"time"

	"idacast/models"
)

// syntheticSchedules builds 16 two-hour slots, two hours apart, with the
// third one (i == 0) spanning now.
func syntheticSchedules(now time.Time) []models.BattleSchedule {
	var out []models.BattleSchedule
	for i := -2; i < 14; i++ {
		offset := time.Duration(i) * 2 * time.Hour
		out = append(out, models.BattleSchedule{
			StartTime: now.Add(-90*time.Minute + offset),
			EndTime:   now.Add(30*time.Minute + offset),
			Rule:      models.NameID{ID: string(rune('a' + i + 2))},
		})
	}
	return out
}

func TestFilter_Capacity(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	items := syntheticSchedules(now)

	got, ok := Filter(items, 3, 0, now)
	if !ok {
		t.Fatalf("expected a window")
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(got))
	}
	for j, s := range got {
		if s.Rule != items[2+j].Rule {
			t.Errorf("slot %d: expected %s, got %s", j, items[2+j].Rule.ID, s.Rule.ID)
		}
	}
	if got[0].EndTime.Before(now) || got[0].StartTime.After(now) {
		t.Errorf("first slot should span now")
	}
}

func TestFilter_HugeCapacity(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	items := syntheticSchedules(now)

	got, ok := Filter(items, math.MaxInt, 0, now)
	if !ok || len(got) != 14 {
		t.Fatalf("expected 14 slots, got %d (ok=%v)", len(got), ok)
	}

	got, ok = Filter(items, math.MaxInt, math.MaxInt, now)
	if !ok || got == nil || len(got) != 0 {
		t.Fatalf("expected an empty non-nil window, got %v (ok=%v)", got, ok)
	}
}

func TestFilter_Shift(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	items := syntheticSchedules(now)

	got, _ := Filter(items, 3, 1, now)
	if len(got) != 3 || got[0].Rule != items[3].Rule {
		t.Fatalf("expected window to start one slot later, got %+v", got)
	}

	got, ok := Filter(items, 3, 20, now)
	if !ok {
		t.Fatalf("overshooting shift should still report a window")
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}

	got, _ = Filter(items, 3, 12, now)
	if len(got) != 2 {
		t.Fatalf("expected a truncated window of 2, got %d", len(got))
	}

	got, _ = Filter(items, -1, -5, now)
	if len(got) != 0 {
		t.Fatalf("negative capacity should yield nothing, got %d", len(got))
	}
}

func TestFilter_AllElapsed(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	items := syntheticSchedules(now)

	got, ok := Filter(items, 3, 0, now.Add(100*time.Hour))
	if ok || got != nil {
		t.Fatalf("expected no window, got %v", got)
	}

	if _, ok := Filter([]models.BattleSchedule(nil), 3, 0, now); ok {
		t.Fatalf("expected no window for empty input")
	}
}

func TestFilter_EndEqualsNowIsCurrent(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	items := []models.BattleSchedule{
		{StartTime: now.Add(-2 * time.Hour), EndTime: now},
		{StartTime: now, EndTime: now.Add(2 * time.Hour)},
	}
	got, ok := Filter(items, 1, 0, now)
	if !ok || !got[0].EndTime.Equal(now) {
		t.Fatalf("slot ending exactly now should be kept, got %+v", got)
	}
}

func TestMaxShiftAndClamp(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	items := syntheticSchedules(now)

	if got := MaxShift(items, now); got != 13 {
		t.Fatalf("expected max shift 13, got %d", got)
	}
	if got := MaxShift(items, now.Add(100*time.Hour)); got != 0 {
		t.Fatalf("expected 0 when everything elapsed, got %d", got)
	}
	if got := MaxShift([]models.CoopSchedule{}, now); got != 0 {
		t.Fatalf("expected 0 for empty input, got %d", got)
	}

	cases := []struct{ shift, max, want int }{
		{5, 13, 5},
		{20, 13, 13},
		{-1, 13, 0},
		{3, -1, 0},
	}
	for _, c := range cases {
		if got := Clamp(c.shift, c.max); got != c.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", c.shift, c.max, got, c.want)
		}
	}
}

func TestFilter_League(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	items := []models.LeagueSchedule{
		{TimePeriods: []models.TimePeriod{{StartTime: now.Add(-6 * time.Hour), EndTime: now.Add(-4 * time.Hour)}}},
		{TimePeriods: []models.TimePeriod{
			{StartTime: now.Add(-4 * time.Hour), EndTime: now.Add(-2 * time.Hour)},
			{StartTime: now.Add(2 * time.Hour), EndTime: now.Add(4 * time.Hour)},
		}},
	}
	got, ok := Filter(items, 5, 0, now)
	if !ok || len(got) != 1 {
		t.Fatalf("expected the recurring event to remain, got %d (ok=%v)", len(got), ok)
	}
}
