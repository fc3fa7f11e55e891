package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales.yaml
var localesYAML []byte

// HourCycle is the CLDR hour-cycle convention of a locale.
type HourCycle string

const (
	HourCycle11 HourCycle = "h11" // 0–11 with meridiem
	HourCycle12 HourCycle = "h12" // 1–12 with meridiem
	HourCycle23 HourCycle = "h23" // 0–23
	HourCycle24 HourCycle = "h24" // 1–24
)

// Is24Hour reports whether the cycle divides the day into one continuous range.
func (c HourCycle) Is24Hour() bool {
	return c == HourCycle23 || c == HourCycle24
}

// Locale holds the clock and calendar conventions used to format readouts.
type Locale struct {
	Tag         string    `yaml:"tag" json:"tag"`
	HourCycle   HourCycle `yaml:"hourCycle" json:"hourCycle"`
	Meridiem    []string  `yaml:"meridiem" json:"meridiem"`
	Months      []string  `yaml:"months" json:"months"`
	DatePattern string    `yaml:"date" json:"date"`
}

func (l Locale) validate() error {
	if _, err := language.Parse(l.Tag); err != nil {
		return fmt.Errorf("locale %q: invalid tag: %w", l.Tag, err)
	}
	switch l.HourCycle {
	case HourCycle11, HourCycle12, HourCycle23, HourCycle24:
	default:
		return fmt.Errorf("locale %s: unknown hour cycle %q", l.Tag, l.HourCycle)
	}
	if len(l.Meridiem) != 2 {
		return fmt.Errorf("locale %s: meridiem needs 2 entries, got %d", l.Tag, len(l.Meridiem))
	}
	if len(l.Months) != 12 {
		return fmt.Errorf("locale %s: months needs 12 entries, got %d", l.Tag, len(l.Months))
	}
	if l.DatePattern == "" {
		return fmt.Errorf("locale %s: empty date pattern", l.Tag)
	}
	return nil
}

// Locales is an immutable locale table with BCP-47 matching.
// The first entry is the fallback for unmatched requests.
type Locales struct {
	entries []Locale
	matcher language.Matcher
}

// LoadLocales parses the embedded locale table.
func LoadLocales() (*Locales, error) {
	return ParseLocales(localesYAML)
}

// ParseLocales parses a YAML locale table.
func ParseLocales(data []byte) (*Locales, error) {
	var entries []Locale
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse locales: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("parse locales: table is empty")
	}

	tags := make([]language.Tag, 0, len(entries))
	for _, l := range entries {
		if err := l.validate(); err != nil {
			return nil, err
		}
		tags = append(tags, language.MustParse(l.Tag))
	}

	return &Locales{entries: entries, matcher: language.NewMatcher(tags)}, nil
}

// Fallback returns the locale used when nothing matches.
func (ls *Locales) Fallback() Locale {
	return ls.entries[0]
}

// Tags lists the supported locale tags in table order.
func (ls *Locales) Tags() []string {
	out := make([]string, len(ls.entries))
	for i, l := range ls.entries {
		out[i] = l.Tag
	}
	return out
}

// Match resolves a BCP-47 tag or POSIX locale name to a table entry.
// The boolean is false when the name cannot be parsed or nothing matches,
// in which case the fallback locale is returned.
func (ls *Locales) Match(name string) (Locale, bool) {
	tag, err := parseLocaleName(name)
	if err != nil {
		return ls.Fallback(), false
	}
	_, idx, conf := ls.matcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(ls.entries) {
		return ls.Fallback(), false
	}
	return ls.entries[idx], true
}

// Lookup is Match without the match flag.
func (ls *Locales) Lookup(name string) Locale {
	l, _ := ls.Match(name)
	return l
}

// DefaultUse24Hour reports the locale-resolved default hour mode. Any
// detection failure yields false (12-hour).
func (ls *Locales) DefaultUse24Hour(name string) bool {
	l, ok := ls.Match(name)
	if !ok {
		return false
	}
	return l.HourCycle.Is24Hour()
}

// DetectHostLocale returns the host locale name from the POSIX locale
// environment, in precedence order LC_ALL, LC_TIME, LANG. It returns ""
// when none is set or only the C/POSIX locale is configured.
func DetectHostLocale() string {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		if v == "C" || v == "POSIX" || strings.HasPrefix(v, "C.") {
			return ""
		}
		return v
	}
	return ""
}

var errNoLocale = errors.New("no locale")

// parseLocaleName accepts "en-GB", "en_GB", "en_GB.UTF-8" and "de_DE@euro".
func parseLocaleName(name string) (language.Tag, error) {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "C" || name == "POSIX" {
		return language.Und, errNoLocale
	}
	return language.Parse(strings.ReplaceAll(name, "_", "-"))
}
