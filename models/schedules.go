package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"golang.org/x/crypto/blake2b"
)

// NameID pairs a display name with the stable identifier assigned by the
// remote source. Names may be localized, ids never are.
type NameID struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// TimePeriod is a half-open interval during which a league event runs.
type TimePeriod struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// BattleSchedule is one competitive rotation window.
type BattleSchedule struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Stages    []NameID  `json:"stages"`
	Rule      NameID    `json:"rule"`
}

// Span returns the slot bounds.
func (b BattleSchedule) Span() (time.Time, time.Time) { return b.StartTime, b.EndTime }

// CoopRuleKind distinguishes the Salmon Run variants.
type CoopRuleKind string

const (
	CoopRegular     CoopRuleKind = "regular"
	CoopBigRun      CoopRuleKind = "big_run"
	CoopTeamContest CoopRuleKind = "team_contest"
)

// CoopSchedule is one Salmon Run rotation. Boss is nil while the king
// salmonid has not been announced.
type CoopSchedule struct {
	StartTime time.Time    `json:"startTime"`
	EndTime   time.Time    `json:"endTime"`
	Boss      *NameID      `json:"boss,omitempty"`
	Stage     NameID       `json:"stage"`
	Weapons   []NameID     `json:"weapons"`
	Kind      CoopRuleKind `json:"kind"`
}

// Span returns the slot bounds.
func (c CoopSchedule) Span() (time.Time, time.Time) { return c.StartTime, c.EndTime }

// LeagueSchedule is a challenge event. One event may recur across several
// disjoint time periods.
type LeagueSchedule struct {
	EventName   NameID       `json:"eventName"`
	Description string       `json:"description"`
	Details     string       `json:"details"`
	Stages      []NameID     `json:"stages"`
	Rule        NameID       `json:"rule"`
	TimePeriods []TimePeriod `json:"timePeriods"`
}

// Span returns the start of the first period and the end of the last one.
func (l LeagueSchedule) Span() (time.Time, time.Time) {
	if len(l.TimePeriods) == 0 {
		return time.Time{}, time.Time{}
	}
	return l.TimePeriods[0].StartTime, l.TimePeriods[len(l.TimePeriods)-1].EndTime
}

// Schedules is the full normalized snapshot. Every slice is ordered by
// start time ascending.
type Schedules struct {
	Regular         []BattleSchedule `json:"regular"`
	AnarchyOpen     []BattleSchedule `json:"anarchyOpen"`
	AnarchySeries   []BattleSchedule `json:"anarchySeries"`
	XBattle         []BattleSchedule `json:"xBattle"`
	WorkRegular     []CoopSchedule   `json:"workRegular"`
	WorkBigRun      []CoopSchedule   `json:"workBigRun"`
	WorkTeamContest []CoopSchedule   `json:"workTeamContest"`
	League          []LeagueSchedule `json:"league"`
}

// Category names one of the fixed schedule collections.
type Category string

const (
	CategoryRegular         Category = "regular"
	CategoryAnarchyOpen     Category = "anarchy_open"
	CategoryAnarchySeries   Category = "anarchy_series"
	CategoryXBattle         Category = "x_battle"
	CategoryWorkRegular     Category = "work_regular"
	CategoryWorkBigRun      Category = "work_big_run"
	CategoryWorkTeamContest Category = "work_team_contest"
	CategoryLeague          Category = "league"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryRegular,
		CategoryAnarchyOpen,
		CategoryAnarchySeries,
		CategoryXBattle,
		CategoryWorkRegular,
		CategoryWorkBigRun,
		CategoryWorkTeamContest,
		CategoryLeague,
	}
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	switch c {
	case CategoryRegular, CategoryAnarchyOpen, CategoryAnarchySeries, CategoryXBattle,
		CategoryWorkRegular, CategoryWorkBigRun, CategoryWorkTeamContest, CategoryLeague:
		return c, nil
	}
	return "", fmt.Errorf("unknown schedule category %q", s)
}

// Title is the human label of a category.
func (c Category) Title() string {
	switch c {
	case CategoryRegular:
		return "Regular Battle"
	case CategoryAnarchyOpen:
		return "Anarchy Battle (Open)"
	case CategoryAnarchySeries:
		return "Anarchy Battle (Series)"
	case CategoryXBattle:
		return "X Battle"
	case CategoryWorkRegular:
		return "Salmon Run"
	case CategoryWorkBigRun:
		return "Big Run"
	case CategoryWorkTeamContest:
		return "Eggstra Work"
	case CategoryLeague:
		return "Challenges"
	}
	return string(c)
}

// Battles returns the battle slice for c, or nil when c is not a battle
// category.
func (s *Schedules) Battles(c Category) []BattleSchedule {
	switch c {
	case CategoryRegular:
		return s.Regular
	case CategoryAnarchyOpen:
		return s.AnarchyOpen
	case CategoryAnarchySeries:
		return s.AnarchySeries
	case CategoryXBattle:
		return s.XBattle
	}
	return nil
}

// Coop returns the coop slice for c, or nil when c is not a work category.
func (s *Schedules) Coop(c Category) []CoopSchedule {
	switch c {
	case CategoryWorkRegular:
		return s.WorkRegular
	case CategoryWorkBigRun:
		return s.WorkBigRun
	case CategoryWorkTeamContest:
		return s.WorkTeamContest
	}
	return nil
}

// Len returns the number of slots held for c.
func (s *Schedules) Len(c Category) int {
	switch c {
	case CategoryRegular, CategoryAnarchyOpen, CategoryAnarchySeries, CategoryXBattle:
		return len(s.Battles(c))
	case CategoryWorkRegular, CategoryWorkBigRun, CategoryWorkTeamContest:
		return len(s.Coop(c))
	case CategoryLeague:
		return len(s.League)
	}
	return 0
}

// Counts returns the per-category slot counts.
func (s *Schedules) Counts() map[Category]int {
	counts := make(map[Category]int, 8)
	for _, c := range Categories() {
		counts[c] = s.Len(c)
	}
	return counts
}

// Empty reports whether no category holds any slot.
func (s *Schedules) Empty() bool {
	for _, c := range Categories() {
		if s.Len(c) > 0 {
			return false
		}
	}
	return true
}

// Equal reports structural equality. Instants are compared with
// time.Time.Equal so a snapshot read back from the cache compares equal to
// the one that was written.
func (s *Schedules) Equal(o *Schedules) bool {
	if s == nil || o == nil {
		return s == o
	}
	return slices.EqualFunc(s.Regular, o.Regular, battleEqual) &&
		slices.EqualFunc(s.AnarchyOpen, o.AnarchyOpen, battleEqual) &&
		slices.EqualFunc(s.AnarchySeries, o.AnarchySeries, battleEqual) &&
		slices.EqualFunc(s.XBattle, o.XBattle, battleEqual) &&
		slices.EqualFunc(s.WorkRegular, o.WorkRegular, coopEqual) &&
		slices.EqualFunc(s.WorkBigRun, o.WorkBigRun, coopEqual) &&
		slices.EqualFunc(s.WorkTeamContest, o.WorkTeamContest, coopEqual) &&
		slices.EqualFunc(s.League, o.League, leagueEqual)
}

func battleEqual(a, b BattleSchedule) bool {
	return a.StartTime.Equal(b.StartTime) && a.EndTime.Equal(b.EndTime) &&
		a.Rule == b.Rule && slices.Equal(a.Stages, b.Stages)
}

func coopEqual(a, b CoopSchedule) bool {
	if (a.Boss == nil) != (b.Boss == nil) || (a.Boss != nil && *a.Boss != *b.Boss) {
		return false
	}
	return a.StartTime.Equal(b.StartTime) && a.EndTime.Equal(b.EndTime) &&
		a.Kind == b.Kind && a.Stage == b.Stage && slices.Equal(a.Weapons, b.Weapons)
}

func leagueEqual(a, b LeagueSchedule) bool {
	return a.EventName == b.EventName && a.Description == b.Description &&
		a.Details == b.Details && a.Rule == b.Rule &&
		slices.Equal(a.Stages, b.Stages) &&
		slices.EqualFunc(a.TimePeriods, b.TimePeriods, func(x, y TimePeriod) bool {
			return x.StartTime.Equal(y.StartTime) && x.EndTime.Equal(y.EndTime)
		})
}

// Fingerprint returns a short blake2b digest of the snapshot's JSON form,
// used as an HTTP entity tag and in log lines.
func (s *Schedules) Fingerprint() string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(data)
	return fmt.Sprintf("%x", sum[:8])
}
