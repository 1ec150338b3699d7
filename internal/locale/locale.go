// Package locale normalizes user-supplied language tags into the keys used
// for translation downloads and cache entries.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	// Default is the cache key used when no locale override is requested.
	Default = "default"
	// Native is the language the remote schedule feed is written in.
	Native = "en-US"
)

// Normalize canonicalizes a BCP 47 tag ("zh-cn" becomes "zh-CN", "ja_JP"
// becomes "ja-JP"). Empty input and the Default sentinel normalize to "".
// Unparseable input is returned trimmed so the remote source decides.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, Default) {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
	if err != nil {
		return raw
	}
	return tag.String()
}

// Key returns the cache key for a locale.
func Key(raw string) string {
	if n := Normalize(raw); n != "" {
		return n
	}
	return Default
}

// NeedsTranslation reports whether schedules requested in raw must be
// overlaid with a downloaded dictionary.
func NeedsTranslation(raw string) bool {
	n := Normalize(raw)
	return n != "" && n != Native
}
