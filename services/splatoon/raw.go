package splatoon

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RawSchedules mirrors the splatoon3.ink schedules payload closely enough
// to be parsed without loss; Normalize turns it into models.Schedules.
type RawSchedules struct {
	Regular []RawMatchNode
	Bankara []RawBankaraNode
	X       []RawMatchNode
	Event   []RawEventNode
	Coop    RawCoopGrouping
}

// RawCoopGrouping holds the three Salmon Run containers.
type RawCoopGrouping struct {
	Regular     []RawCoopNode
	BigRun      []RawCoopNode
	TeamContest []RawCoopNode
}

type nodeList[T any] struct {
	Nodes []T `json:"nodes"`
}

type rawPayload struct {
	Data *struct {
		Regular *nodeList[RawMatchNode]   `json:"regularSchedules"`
		Bankara *nodeList[RawBankaraNode] `json:"bankaraSchedules"`
		X       *nodeList[RawMatchNode]   `json:"xSchedules"`
		Event   *nodeList[RawEventNode]   `json:"eventSchedules"`
		Coop    *struct {
			Regular     *nodeList[RawCoopNode] `json:"regularSchedules"`
			BigRun      *nodeList[RawCoopNode] `json:"bigRunSchedules"`
			TeamContest *nodeList[RawCoopNode] `json:"teamContestSchedules"`
		} `json:"coopGroupingSchedule"`
	} `json:"data"`
}

// ParseSchedules decodes a schedules payload. The three battle containers
// are required; league and coop containers are optional.
func ParseSchedules(body []byte) (*RawSchedules, error) {
	var payload rawPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	d := payload.Data
	if d == nil {
		return nil, malformed("missing data")
	}
	switch {
	case d.Regular == nil:
		return nil, malformed("missing regularSchedules")
	case d.Bankara == nil:
		return nil, malformed("missing bankaraSchedules")
	case d.X == nil:
		return nil, malformed("missing xSchedules")
	}

	raw := &RawSchedules{
		Regular: d.Regular.Nodes,
		Bankara: d.Bankara.Nodes,
		X:       d.X.Nodes,
	}
	if d.Event != nil {
		raw.Event = d.Event.Nodes
	}
	if c := d.Coop; c != nil {
		if c.Regular != nil {
			raw.Coop.Regular = c.Regular.Nodes
		}
		if c.BigRun != nil {
			raw.Coop.BigRun = c.BigRun.Nodes
		}
		if c.TeamContest != nil {
			raw.Coop.TeamContest = c.TeamContest.Nodes
		}
	}
	return raw, nil
}

// RawSpan accepts both camelCase and snake_case time keys.
type RawSpan struct {
	StartTime time.Time
	EndTime   time.Time
}

func (s *RawSpan) UnmarshalJSON(b []byte) error {
	var aux struct {
		StartTime      *time.Time `json:"startTime"`
		StartTimeSnake *time.Time `json:"start_time"`
		EndTime        *time.Time `json:"endTime"`
		EndTimeSnake   *time.Time `json:"end_time"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	start := firstNonNil(aux.StartTime, aux.StartTimeSnake)
	end := firstNonNil(aux.EndTime, aux.EndTimeSnake)
	if start == nil || end == nil {
		return errors.New("slot is missing startTime or endTime")
	}
	s.StartTime, s.EndTime = start.UTC(), end.UTC()
	return nil
}

// RawStage is a vsStage entry.
type RawStage struct {
	VsStageID int    `json:"vsStageId"`
	Name      string `json:"name"`
	ID        string `json:"id"`
}

// RawRule is a vsRule entry. Rule holds the enum-like code ("AREA", ...).
type RawRule struct {
	Name string `json:"name"`
	Rule string `json:"rule"`
	ID   string `json:"id"`
}

// RawMatchSetting is shared by every battle mode.
type RawMatchSetting struct {
	VsStages []RawStage `json:"vsStages"`
	VsRule   RawRule    `json:"vsRule"`
}

// RawMatchNode is a regular or X battle slot. Setting is nil during
// Splatfest, when the feed nulls out the regular settings.
type RawMatchNode struct {
	Span    RawSpan
	Setting *RawMatchSetting
}

func (n *RawMatchNode) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &n.Span); err != nil {
		return err
	}
	var aux struct {
		Regular *RawMatchSetting `json:"regularMatchSetting"`
		X       *RawMatchSetting `json:"xMatchSetting"`
		League  *RawMatchSetting `json:"leagueMatchSetting"`
		Generic *RawMatchSetting `json:"matchSetting"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	n.Setting = firstNonNil(aux.Regular, aux.X, aux.League, aux.Generic)
	return nil
}

// BankaraMode is the anarchy battle flavour.
type BankaraMode string

const (
	BankaraOpen      BankaraMode = "OPEN"
	BankaraChallenge BankaraMode = "CHALLENGE"
)

func (m *BankaraMode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch BankaraMode(s) {
	case BankaraOpen, BankaraChallenge:
		*m = BankaraMode(s)
		return nil
	}
	return fmt.Errorf("unknown bankaraMode %q", s)
}

// RawBankaraSetting is one half of an anarchy slot.
type RawBankaraSetting struct {
	RawMatchSetting
	Mode BankaraMode `json:"bankaraMode"`
}

// RawBankaraNode carries the open and series settings of one slot.
type RawBankaraNode struct {
	Span     RawSpan
	Settings []RawBankaraSetting
}

func (n *RawBankaraNode) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &n.Span); err != nil {
		return err
	}
	var aux struct {
		Settings []RawBankaraSetting `json:"bankaraMatchSettings"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	n.Settings = aux.Settings
	return nil
}

// RawLeagueEvent describes a challenge event.
type RawLeagueEvent struct {
	EventID    string `json:"leagueMatchEventId"`
	Name       string `json:"name"`
	Desc       string `json:"desc"`
	Regulation string `json:"regulation"`
	ID         string `json:"id"`
}

// RawEventNode is a challenge with its recurring time periods.
type RawEventNode struct {
	Event       RawLeagueEvent
	Setting     RawMatchSetting
	TimePeriods []RawSpan
}

func (n *RawEventNode) UnmarshalJSON(b []byte) error {
	var aux struct {
		Setting *struct {
			Event *RawLeagueEvent `json:"leagueMatchEvent"`
			RawMatchSetting
		} `json:"leagueMatchSetting"`
		TimePeriods      []RawSpan `json:"timePeriods"`
		TimePeriodsSnake []RawSpan `json:"time_periods"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Setting == nil || aux.Setting.Event == nil {
		return errors.New("event is missing leagueMatchSetting")
	}
	n.Event = *aux.Setting.Event
	n.Setting = aux.Setting.RawMatchSetting
	n.TimePeriods = aux.TimePeriods
	if n.TimePeriods == nil {
		n.TimePeriods = aux.TimePeriodsSnake
	}
	return nil
}

// RawWeapon is a supplied coop weapon. The feed keys weapons by a
// synthetic id rather than a game id.
type RawWeapon struct {
	Name string `json:"name"`
	ID   string `json:"__splatoon3ink_id"`
}

// RawCoopSetting is the Salmon Run setting of one slot. Rule is nullable;
// nil means the kind of the container the slot came from.
type RawCoopSetting struct {
	Boss      *NameIDJSON `json:"boss"`
	CoopStage NameIDJSON  `json:"coopStage"`
	Weapons   []RawWeapon `json:"weapons"`
	Rule      *string     `json:"rule"`
}

// NameIDJSON is a plain {name, id} object as found in the feed.
type NameIDJSON struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// RawCoopNode is one Salmon Run slot.
type RawCoopNode struct {
	Span    RawSpan
	Setting *RawCoopSetting
}

func (n *RawCoopNode) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &n.Span); err != nil {
		return err
	}
	var aux struct {
		Setting *RawCoopSetting `json:"setting"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	n.Setting = aux.Setting
	return nil
}

func firstNonNil[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
