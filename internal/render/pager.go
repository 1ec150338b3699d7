package render

import (
	"time"

	"idacast/models"
	"idacast/utils/timewindow"
)

// Screen is one tab of the dashboard.
type Screen int

const (
	ScreenBattles Screen = iota
	ScreenWork
	ScreenChallenges
)

// Screens lists every tab in order.
func Screens() []Screen {
	return []Screen{ScreenBattles, ScreenWork, ScreenChallenges}
}

func (s Screen) String() string {
	switch s {
	case ScreenBattles:
		return "Battles"
	case ScreenWork:
		return "Work"
	case ScreenChallenges:
		return "Challenges"
	}
	return "Unknown"
}

// Categories returns the categories shown on s.
func (s Screen) Categories() []models.Category {
	switch s {
	case ScreenBattles:
		return []models.Category{
			models.CategoryRegular,
			models.CategoryAnarchySeries,
			models.CategoryAnarchyOpen,
			models.CategoryXBattle,
		}
	case ScreenWork:
		return []models.Category{
			models.CategoryWorkRegular,
			models.CategoryWorkBigRun,
			models.CategoryWorkTeamContest,
		}
	case ScreenChallenges:
		return []models.Category{models.CategoryLeague}
	}
	return nil
}

// Pager tracks the active screen and a scroll offset per screen.
type Pager struct {
	Capacity int

	screen Screen
	shifts map[Screen]int
}

// NewPager creates a pager showing capacity slots per category.
func NewPager(capacity int) *Pager {
	if capacity <= 0 {
		capacity = 3
	}
	return &Pager{Capacity: capacity, shifts: make(map[Screen]int)}
}

// Screen returns the active screen.
func (p *Pager) Screen() Screen { return p.screen }

// Shift returns the scroll offset of the active screen.
func (p *Pager) Shift() int { return p.shifts[p.screen] }

// Next switches to the following tab, wrapping around.
func (p *Pager) Next() {
	p.screen = Screen((int(p.screen) + 1) % len(Screens()))
}

// Prev switches to the preceding tab, wrapping around.
func (p *Pager) Prev() {
	n := len(Screens())
	p.screen = Screen((int(p.screen) + n - 1) % n)
}

// Scroll moves the active screen's offset by delta, clamped so the last
// slot of the longest category stays reachable.
func (p *Pager) Scroll(delta int, s *models.Schedules, now time.Time) {
	p.shifts[p.screen] = timewindow.Clamp(p.shifts[p.screen]+delta, MaxShift(p.screen, s, now))
}

// Reset returns every screen to offset zero.
func (p *Pager) Reset() {
	clear(p.shifts)
}

// MaxShift is the scroll bound of a screen: the largest bound among its
// categories.
func MaxShift(screen Screen, s *models.Schedules, now time.Time) int {
	m := 0
	for _, c := range screen.Categories() {
		m = max(m, categoryMaxShift(c, s, now))
	}
	return m
}

func categoryMaxShift(c models.Category, s *models.Schedules, now time.Time) int {
	switch c {
	case models.CategoryRegular, models.CategoryAnarchyOpen, models.CategoryAnarchySeries, models.CategoryXBattle:
		return timewindow.MaxShift(s.Battles(c), now)
	case models.CategoryWorkRegular, models.CategoryWorkBigRun, models.CategoryWorkTeamContest:
		return timewindow.MaxShift(s.Coop(c), now)
	case models.CategoryLeague:
		return timewindow.MaxShift(s.League, now)
	}
	return 0
}
