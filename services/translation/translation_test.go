package translation

import (
	"errors"
	"testing"
	"time"

	"idacast/models"
)

func TestDictionaryName_FallsBack(t *testing.T) {
	d := Dictionary{"VnNTdGFnZS0y": "鳗鲶区"}

	got := d.Name(models.NameID{Name: "Eeltail Alley", ID: "VnNTdGFnZS0y"})
	if got.Name != "鳗鲶区" {
		t.Fatalf("expected translated name, got %q", got.Name)
	}

	orig := models.NameID{Name: "Hagglefish Market", ID: "VnNTdGFnZS0xMA=="}
	if got := d.Name(orig); got != orig {
		t.Fatalf("expected fallback to original, got %+v", got)
	}
}

func TestDictionaryLookup_Strict(t *testing.T) {
	d := Dictionary{"a": "A"}
	if name, err := d.Lookup("a"); err != nil || name != "A" {
		t.Fatalf("Lookup(a) = %q, %v", name, err)
	}

	_, err := d.Lookup("missing")
	var missing *MissingTranslationError
	if !errors.As(err, &missing) || missing.ID != "missing" {
		t.Fatalf("expected MissingTranslationError, got %v", err)
	}
}

func TestApply_LocalizesEveryCategory(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	stage := models.NameID{Name: "Eeltail Alley", ID: "stage"}
	rule := models.NameID{Name: "Rainmaker", ID: "rule"}
	boss := models.NameID{Name: "Cohozuna", ID: "boss"}
	weapon := models.NameID{Name: "Splattershot", ID: "weapon"}
	event := models.NameID{Name: "Twin Splattlers", ID: "event"}

	battle := []models.BattleSchedule{{StartTime: now, EndTime: now, Stages: []models.NameID{stage}, Rule: rule}}
	in := models.Schedules{
		Regular:       battle,
		AnarchySeries: battle,
		WorkBigRun: []models.CoopSchedule{{
			Boss: &boss, Stage: stage, Weapons: []models.NameID{weapon}, Kind: models.CoopBigRun,
		}},
		League: []models.LeagueSchedule{{EventName: event, Stages: []models.NameID{stage}, Rule: rule}},
	}
	d := Dictionary{"stage": "S", "rule": "R", "boss": "B", "weapon": "W", "event": "E"}

	out := Apply(in, d)

	if out.Regular[0].Stages[0].Name != "S" || out.Regular[0].Rule.Name != "R" {
		t.Fatalf("regular not translated: %+v", out.Regular[0])
	}
	if out.AnarchySeries[0].Rule.Name != "R" {
		t.Fatalf("anarchy series not translated")
	}
	coop := out.WorkBigRun[0]
	if coop.Boss.Name != "B" || coop.Stage.Name != "S" || coop.Weapons[0].Name != "W" {
		t.Fatalf("coop not translated: %+v", coop)
	}
	if out.League[0].EventName.Name != "E" {
		t.Fatalf("league event not translated")
	}
	if out.AnarchyOpen != nil || out.WorkRegular != nil {
		t.Fatalf("empty categories should stay empty")
	}

	// The input snapshot must not be mutated.
	if in.Regular[0].Stages[0].Name != "Eeltail Alley" || in.WorkBigRun[0].Boss.Name != "Cohozuna" {
		t.Fatalf("Apply mutated its input")
	}
}

func TestMerge(t *testing.T) {
	d := Dictionary{"a": "1"}
	d.Merge(Dictionary{"a": "2", "b": "3"})
	if d["a"] != "2" || d["b"] != "3" {
		t.Fatalf("unexpected merge result %v", d)
	}
}
