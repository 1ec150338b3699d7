package splatoon

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"idacast/services/translation"
)

var (
	requiredSections = []string{"stages", "rules", "bosses"}
	optionalSections = []string{"weapons", "events"}
)

type localeEntry struct {
	Name string `json:"name"`
}

// ParseTranslation decodes a locale payload into a flat dictionary.
//
// The feed publishes a bogus "undefined" entry under rules whose value is
// not an entry object; it is removed before the sections are decoded.
func ParseTranslation(body []byte) (translation.Dictionary, error) {
	if !gjson.ValidBytes(body) {
		return nil, malformed("translation payload is not valid JSON")
	}
	rules := gjson.GetBytes(body, "rules")
	if !rules.IsObject() {
		return nil, &MissingSectionError{Section: "rules"}
	}
	if rules.Get("undefined").Exists() {
		cleaned, err := sjson.DeleteBytes(body, "rules.undefined")
		if err != nil {
			return nil, fmt.Errorf("%w: strip rules.undefined: %v", ErrMalformedPayload, err)
		}
		body = cleaned
	}

	dict := make(translation.Dictionary)
	for _, name := range requiredSections {
		if err := mergeSection(dict, body, name, true); err != nil {
			return nil, err
		}
	}
	for _, name := range optionalSections {
		if err := mergeSection(dict, body, name, false); err != nil {
			return nil, err
		}
	}
	return dict, nil
}

func mergeSection(dict translation.Dictionary, body []byte, name string, required bool) error {
	section := gjson.GetBytes(body, name)
	if !section.Exists() {
		if required {
			return &MissingSectionError{Section: name}
		}
		return nil
	}
	if !section.IsObject() {
		return malformed("section %q is not an object", name)
	}
	var entries map[string]localeEntry
	if err := json.Unmarshal([]byte(section.Raw), &entries); err != nil {
		return fmt.Errorf("%w: section %q: %v", ErrMalformedPayload, name, err)
	}
	for id, entry := range entries {
		dict[id] = entry.Name
	}
	return nil
}
