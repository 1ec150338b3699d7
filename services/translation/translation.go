package translation

import (
	"fmt"

	"idacast/models"
)

// Dictionary maps remote ids to localized names. Stage, rule, boss, weapon
// and event ids share one namespace since the source never reuses an id
// across categories.
type Dictionary map[string]string

// MissingTranslationError is returned by strict lookups for unknown ids.
type MissingTranslationError struct {
	ID string
}

func (e *MissingTranslationError) Error() string {
	return fmt.Sprintf("missing translation for id %q", e.ID)
}

// Lookup returns the localized name for id.
func (d Dictionary) Lookup(id string) (string, error) {
	if name, ok := d[id]; ok {
		return name, nil
	}
	return "", &MissingTranslationError{ID: id}
}

// Name returns n with its name localized, or n unchanged when the
// dictionary has no entry for its id.
func (d Dictionary) Name(n models.NameID) models.NameID {
	if name, ok := d[n.ID]; ok && name != "" {
		n.Name = name
	}
	return n
}

// Merge copies every entry of other into d, overwriting duplicates.
func (d Dictionary) Merge(other Dictionary) {
	for id, name := range other {
		d[id] = name
	}
}

func (d Dictionary) names(in []models.NameID) []models.NameID {
	if in == nil {
		return nil
	}
	out := make([]models.NameID, len(in))
	for i, n := range in {
		out[i] = d.Name(n)
	}
	return out
}

func (d Dictionary) battles(in []models.BattleSchedule) []models.BattleSchedule {
	if in == nil {
		return nil
	}
	out := make([]models.BattleSchedule, len(in))
	for i, b := range in {
		b.Stages = d.names(b.Stages)
		b.Rule = d.Name(b.Rule)
		out[i] = b
	}
	return out
}

func (d Dictionary) coop(in []models.CoopSchedule) []models.CoopSchedule {
	if in == nil {
		return nil
	}
	out := make([]models.CoopSchedule, len(in))
	for i, c := range in {
		if c.Boss != nil {
			boss := d.Name(*c.Boss)
			c.Boss = &boss
		}
		c.Stage = d.Name(c.Stage)
		c.Weapons = d.names(c.Weapons)
		out[i] = c
	}
	return out
}

func (d Dictionary) league(in []models.LeagueSchedule) []models.LeagueSchedule {
	if in == nil {
		return nil
	}
	out := make([]models.LeagueSchedule, len(in))
	for i, l := range in {
		l.EventName = d.Name(l.EventName)
		l.Stages = d.names(l.Stages)
		l.Rule = d.Name(l.Rule)
		l.TimePeriods = append([]models.TimePeriod(nil), l.TimePeriods...)
		out[i] = l
	}
	return out
}

// Apply returns a copy of s with every NameID localized through d. The
// input snapshot is left untouched.
func Apply(s models.Schedules, d Dictionary) models.Schedules {
	return models.Schedules{
		Regular:         d.battles(s.Regular),
		AnarchyOpen:     d.battles(s.AnarchyOpen),
		AnarchySeries:   d.battles(s.AnarchySeries),
		XBattle:         d.battles(s.XBattle),
		WorkRegular:     d.coop(s.WorkRegular),
		WorkBigRun:      d.coop(s.WorkBigRun),
		WorkTeamContest: d.coop(s.WorkTeamContest),
		League:          d.league(s.League),
	}
}
