package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocales_EmbeddedTable(t *testing.T) {
	ls := testLocales(t)
	assert.Equal(t, "en-US", ls.Fallback().Tag)
	assert.Contains(t, ls.Tags(), "en-GB")
	assert.Contains(t, ls.Tags(), "ja-JP")
}

func TestLocales_Match(t *testing.T) {
	ls := testLocales(t)

	tests := []struct {
		name    string
		input   string
		wantTag string
		wantOK  bool
	}{
		{"exact tag", "en-GB", "en-GB", true},
		{"posix name", "en_GB.UTF-8", "en-GB", true},
		{"posix modifier", "de_DE@euro", "de-DE", true},
		{"regional variant", "de-AT", "de-DE", true},
		{"language only", "ja", "ja-JP", true},
		{"c locale", "C", "en-US", false},
		{"empty", "", "en-US", false},
		{"unparseable", "not a locale!", "en-US", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := ls.Match(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTag, l.Tag)
		})
	}
}

func TestLocales_DefaultUse24Hour(t *testing.T) {
	ls := testLocales(t)

	assert.False(t, ls.DefaultUse24Hour("en-US"))
	assert.False(t, ls.DefaultUse24Hour("ko-KR"))
	assert.True(t, ls.DefaultUse24Hour("en-GB"))
	assert.True(t, ls.DefaultUse24Hour("fr_FR.UTF-8"))
	assert.False(t, ls.DefaultUse24Hour(""), "detection failure falls back to 12-hour")
	assert.False(t, ls.DefaultUse24Hour("%%%"), "detection failure falls back to 12-hour")
}

func TestDetectHostLocale(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_TIME", "")
	t.Setenv("LANG", "")
	assert.Empty(t, DetectHostLocale())

	t.Setenv("LANG", "de_DE.UTF-8")
	assert.Equal(t, "de_DE.UTF-8", DetectHostLocale())

	t.Setenv("LC_TIME", "en_GB.UTF-8")
	assert.Equal(t, "en_GB.UTF-8", DetectHostLocale())

	t.Setenv("LC_ALL", "C.UTF-8")
	assert.Empty(t, DetectHostLocale())
}

func TestParseLocales_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty table", `[]`, "empty"},
		{"not yaml", `{{{`, "parse locales"},
		{"bad hour cycle", `
- tag: en-US
  hourCycle: h13
  meridiem: [AM, PM]
  months: [a, b, c, d, e, f, g, h, i, j, k, l]
  date: "{day}"
`, "hour cycle"},
		{"short months", `
- tag: en-US
  hourCycle: h12
  meridiem: [AM, PM]
  months: [Jan]
  date: "{day}"
`, "months"},
		{"single meridiem", `
- tag: en-US
  hourCycle: h12
  meridiem: [AM]
  months: [a, b, c, d, e, f, g, h, i, j, k, l]
  date: "{day}"
`, "meridiem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLocales([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
