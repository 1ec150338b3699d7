package splatoon

import (
	"sort"
	"strings"

	"idacast/models"
)

// Normalize flattens the raw payload into the uniform snapshot. Slots
// without a setting are dropped. Every category is stable-sorted by start
// time so feed order is kept whenever it is already chronological.
func Normalize(raw *RawSchedules) models.Schedules {
	var s models.Schedules
	if raw == nil {
		return s
	}

	s.Regular = battles(raw.Regular)
	s.XBattle = battles(raw.X)
	for _, node := range raw.Bankara {
		for _, setting := range node.Settings {
			b := battle(node.Span, setting.RawMatchSetting)
			switch setting.Mode {
			case BankaraOpen:
				s.AnarchyOpen = append(s.AnarchyOpen, b)
			case BankaraChallenge:
				s.AnarchySeries = append(s.AnarchySeries, b)
			}
		}
	}

	s.WorkRegular = coops(raw.Coop.Regular, models.CoopRegular)
	s.WorkBigRun = coops(raw.Coop.BigRun, models.CoopBigRun)
	s.WorkTeamContest = coops(raw.Coop.TeamContest, models.CoopTeamContest)

	for _, node := range raw.Event {
		if len(node.TimePeriods) == 0 {
			continue
		}
		l := models.LeagueSchedule{
			EventName:   models.NameID{Name: node.Event.Name, ID: node.Event.ID},
			Description: node.Event.Desc,
			Details:     node.Event.Regulation,
			Stages:      stages(node.Setting.VsStages),
			Rule:        models.NameID{Name: node.Setting.VsRule.Name, ID: node.Setting.VsRule.ID},
		}
		for _, p := range node.TimePeriods {
			l.TimePeriods = append(l.TimePeriods, models.TimePeriod{StartTime: p.StartTime, EndTime: p.EndTime})
		}
		sort.SliceStable(l.TimePeriods, func(i, j int) bool {
			return l.TimePeriods[i].StartTime.Before(l.TimePeriods[j].StartTime)
		})
		s.League = append(s.League, l)
	}

	sortBattles(s.Regular)
	sortBattles(s.AnarchyOpen)
	sortBattles(s.AnarchySeries)
	sortBattles(s.XBattle)
	sortCoops(s.WorkRegular)
	sortCoops(s.WorkBigRun)
	sortCoops(s.WorkTeamContest)
	sort.SliceStable(s.League, func(i, j int) bool {
		return s.League[i].TimePeriods[0].StartTime.Before(s.League[j].TimePeriods[0].StartTime)
	})
	return s
}

func battles(nodes []RawMatchNode) []models.BattleSchedule {
	var out []models.BattleSchedule
	for _, node := range nodes {
		if node.Setting == nil {
			continue
		}
		out = append(out, battle(node.Span, *node.Setting))
	}
	return out
}

func battle(span RawSpan, setting RawMatchSetting) models.BattleSchedule {
	return models.BattleSchedule{
		StartTime: span.StartTime,
		EndTime:   span.EndTime,
		Stages:    stages(setting.VsStages),
		Rule:      models.NameID{Name: setting.VsRule.Name, ID: setting.VsRule.ID},
	}
}

func stages(raw []RawStage) []models.NameID {
	out := make([]models.NameID, 0, len(raw))
	for _, st := range raw {
		out = append(out, models.NameID{Name: st.Name, ID: st.ID})
	}
	return out
}

func coops(nodes []RawCoopNode, container models.CoopRuleKind) []models.CoopSchedule {
	var out []models.CoopSchedule
	for _, node := range nodes {
		if node.Setting == nil {
			continue
		}
		setting := node.Setting
		c := models.CoopSchedule{
			StartTime: node.Span.StartTime,
			EndTime:   node.Span.EndTime,
			Stage:     models.NameID{Name: setting.CoopStage.Name, ID: setting.CoopStage.ID},
			Weapons:   make([]models.NameID, 0, len(setting.Weapons)),
			Kind:      coopKind(setting.Rule, container),
		}
		if setting.Boss != nil {
			c.Boss = &models.NameID{Name: setting.Boss.Name, ID: setting.Boss.ID}
		}
		for _, w := range setting.Weapons {
			c.Weapons = append(c.Weapons, models.NameID{Name: w.Name, ID: w.ID})
		}
		out = append(out, c)
	}
	return out
}

func coopKind(rule *string, fallback models.CoopRuleKind) models.CoopRuleKind {
	if rule == nil {
		return fallback
	}
	switch strings.ToUpper(*rule) {
	case "REGULAR":
		return models.CoopRegular
	case "BIG_RUN":
		return models.CoopBigRun
	case "TEAM_CONTEST":
		return models.CoopTeamContest
	}
	return fallback
}

func sortBattles(s []models.BattleSchedule) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].StartTime.Before(s[j].StartTime) })
}

func sortCoops(s []models.CoopSchedule) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].StartTime.Before(s[j].StartTime) })
}
