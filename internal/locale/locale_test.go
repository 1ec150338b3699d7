package locale

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"default", ""},
		{"DEFAULT", ""},
		{"zh-cn", "zh-CN"},
		{"ja_JP", "ja-JP"},
		{"en-US", "en-US"},
		{"not a tag!", "not a tag!"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	if got := Key(""); got != Default {
		t.Fatalf("Key(\"\") = %q, want %q", got, Default)
	}
	if got := Key("zh-cn"); got != "zh-CN" {
		t.Fatalf("Key(zh-cn) = %q", got)
	}
}

func TestNeedsTranslation(t *testing.T) {
	cases := map[string]bool{
		"":        false,
		"default": false,
		"en-US":   false,
		"en-us":   false,
		"ja-JP":   true,
		"zh-CN":   true,
	}
	for in, want := range cases {
		if got := NeedsTranslation(in); got != want {
			t.Errorf("NeedsTranslation(%q) = %v, want %v", in, got, want)
		}
	}
}
