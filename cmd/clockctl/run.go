package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/couchcryptid/clockface/internal/adapter/raster"
	"github.com/couchcryptid/clockface/internal/domain"
)

var errUsage = errors.New("usage: clockctl <reading|layout|snapshot|locales> [flags]")

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	locales, err := domain.LoadLocales()
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "reading":
		return runReading(rest, locales, stdout, stderr)
	case "layout":
		return runLayout(rest, stdout, stderr)
	case "snapshot":
		return runSnapshot(rest, locales, stdout, stderr)
	case "locales":
		return runLocales(locales, stdout)
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
}

// clockFlags are shared by the commands that format an instant.
type clockFlags struct {
	at     string
	use24  bool
	locale string
	policy string
	tz     string
}

func (c *clockFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.at, "at", "", "instant as RFC 3339 (default now)")
	fs.BoolVar(&c.use24, "24h", false, "24-hour readout (default from the locale)")
	fs.StringVar(&c.locale, "locale", "", "BCP-47 or POSIX locale (default from LC_ALL, LC_TIME, LANG)")
	fs.StringVar(&c.policy, "policy", string(domain.PolicyLocale), "time format policy: locale or fixed")
	fs.StringVar(&c.tz, "tz", "", "IANA time zone (default local)")
}

func (c *clockFlags) resolve(fs *flag.FlagSet, locales *domain.Locales) (*domain.Formatter, time.Time, bool, error) {
	name := c.locale
	if name == "" {
		name = domain.DetectHostLocale()
	}

	policy, err := domain.ParseFormatPolicy(c.policy)
	if err != nil {
		return nil, time.Time{}, false, err
	}
	opts := []domain.FormatterOption{domain.WithPolicy(policy)}
	if c.tz != "" {
		loc, err := time.LoadLocation(c.tz)
		if err != nil {
			return nil, time.Time{}, false, fmt.Errorf("tz: %w", err)
		}
		opts = append(opts, domain.WithLocation(loc))
	}

	at := domain.Now()
	if c.at != "" {
		at, err = time.Parse(time.RFC3339Nano, c.at)
		if err != nil {
			return nil, time.Time{}, false, fmt.Errorf("at: %w", err)
		}
	}

	use24 := c.use24
	if !fs.Changed("24h") {
		use24 = locales.DefaultUse24Hour(name)
	}
	return domain.NewFormatter(locales.Lookup(name), opts...), at, use24, nil
}

func runReading(args []string, locales *domain.Locales, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("reading", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cf clockFlags
	cf.register(fs)
	asJSON := fs.Bool("json", false, "print the reading as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, at, use24, err := cf.resolve(fs, locales)
	if err != nil {
		return err
	}
	r := f.Reading(at, use24)

	if *asJSON {
		return writeJSON(stdout, r)
	}
	line := r.DigitalTime
	if r.Meridiem != "" {
		line += " " + r.Meridiem
	}
	fmt.Fprintf(stdout, "%s\n%s\nhour %.1f°  minute %.1f°  second %.1f°\n",
		line, r.DigitalDate, r.HourAngleDeg, r.MinuteAngleDeg, r.SecondAngleDeg)
	return nil
}

func runLayout(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	diameter := fs.Float64("diameter", 0, "dial diameter in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !fs.Changed("diameter") {
		return errors.New("layout: --diameter is required")
	}
	return writeJSON(stdout, domain.LayoutDial(*diameter))
}

func runSnapshot(args []string, locales *domain.Locales, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cf clockFlags
	cf.register(fs)
	diameter := fs.Float64("diameter", 300, "dial diameter in pixels")
	dark := fs.Bool("dark", true, "dark theme")
	out := fs.StringP("out", "o", "", "output PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("snapshot: --out is required")
	}

	f, at, use24, err := cf.resolve(fs, locales)
	if err != nil {
		return err
	}

	file, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := raster.EncodePNG(file, domain.LayoutDial(*diameter), f.Reading(at, use24), *dark); err != nil {
		file.Close()
		os.Remove(*out)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %s\n", *out)
	return nil
}

func runLocales(locales *domain.Locales, stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tHOUR CYCLE\tEXAMPLE DATE")
	sample := time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)
	for _, tag := range locales.Tags() {
		l := locales.Lookup(tag)
		r := domain.NewFormatter(l, domain.WithLocation(time.UTC)).Reading(sample, l.HourCycle.Is24Hour())
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Tag, l.HourCycle, r.DigitalDate)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
