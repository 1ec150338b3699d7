package splatoon

import (
	"errors"
	"testing"
)

func TestParseTranslation_StripsUndefinedRule(t *testing.T) {
	dict, err := ParseTranslation(loadFixture(t, "locale_zh-CN.json"))
	if err != nil {
		t.Fatalf("ParseTranslation: %v", err)
	}

	expected := map[string]string{
		"VnNTdGFnZS0y":                     "鳗鲶区",
		"VnNSdWxlLTA=":                     "占地对战",
		"Q29vcEVuZW15LTIz":                 "头目联合",
		"a23f8c5b0b1f0d6e":                 "斯普拉射击枪",
		"TGVhZ3VlTWF0Y2hFdmVudC1QYWlyQ3Vw": "双人组对战",
	}
	for id, want := range expected {
		if got := dict[id]; got != want {
			t.Errorf("dict[%s] = %q, want %q", id, got, want)
		}
	}
	if _, ok := dict["undefined"]; ok {
		t.Errorf("undefined rule should have been stripped")
	}
}

func TestParseTranslation_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		section string
	}{
		{"no rules", `{"stages": {}, "bosses": {}}`, "rules"},
		{"rules not object", `{"rules": [], "stages": {}, "bosses": {}}`, "rules"},
		{"no stages", `{"rules": {}, "bosses": {}}`, "stages"},
		{"no bosses", `{"rules": {"undefined": 1}, "stages": {}}`, "bosses"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTranslation([]byte(tt.body))
			var missing *MissingSectionError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingSectionError, got %v", err)
			}
			if missing.Section != tt.section {
				t.Fatalf("expected section %q, got %q", tt.section, missing.Section)
			}
		})
	}

	if _, err := ParseTranslation([]byte(`{"rules": `)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for truncated JSON, got %v", err)
	}
	if _, err := ParseTranslation([]byte(`{"rules": {"x": "bad"}, "stages": {}, "bosses": {}}`)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for bad entry, got %v", err)
	}
}
