package tariff

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk tariff configuration shape (YAML). It is loaded once
// and treated as read-only for the process lifetime.
type Config struct {
	Vendors map[string]Vendor `yaml:"vendors"`
}

// Vendor holds one retailer plan: season calendar, per-season rate schedules
// and the fixed daily supply charge.
type Vendor struct {
	SupplyCharge float64 `yaml:"supply_charge"` // currency/day

	// Periods maps season name -> calendar months (1..12). Every month must
	// belong to exactly one season.
	Periods map[string][]int `yaml:"periods"`

	Seasons map[string]DayRates `yaml:"seasons"`
}

// DayRates splits a season's schedule by day type.
type DayRates struct {
	Weekday []RateEntry `yaml:"weekday"`
	Weekend []RateEntry `yaml:"weekend"`
}

// RateEntry is one rate rule. Entries are evaluated in declared order and
// the first entry whose hour ranges contain the timestamp's hour wins, so
// list order is part of the file contract.
type RateEntry struct {
	Name      string   `yaml:"name"`  // rate label, e.g. peak / off_peak / shoulder
	Hours     []string `yaml:"hours"` // "start-end" ranges, [start,end) over 0..23, may wrap midnight
	Rate      float64  `yaml:"rate"`  // currency/kWh
	SolarRate *float64 `yaml:"solar_rate"`
}

// hourRange is a parsed [Start,End) hour window. Start >= End means the
// window wraps past midnight (e.g. 22-8 covers 22,23,0..7).
type hourRange struct {
	Start, End int
}

func (h hourRange) contains(hour int) bool {
	if h.Start < h.End {
		return h.Start <= hour && hour < h.End
	}
	return hour >= h.Start || hour < h.End
}

func parseHourRange(s string) (hourRange, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return hourRange{}, fmt.Errorf("hour range %q must be \"start-end\"", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return hourRange{}, fmt.Errorf("hour range %q: %w", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return hourRange{}, fmt.Errorf("hour range %q: %w", s, err)
	}
	if start < 0 || start > 23 || end < 0 || end > 23 {
		return hourRange{}, fmt.Errorf("hour range %q: hours must be in 0..23", s)
	}
	return hourRange{Start: start, End: end}, nil
}

// Load reads and validates a tariff configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse tariff config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the schema rules the resolver relies on: complete,
// non-overlapping month coverage per vendor, seasons referenced by the
// calendar actually defined, and parseable hour ranges.
func (c *Config) Validate() error {
	if len(c.Vendors) == 0 {
		return errors.New("tariff config has no vendors")
	}
	for name, v := range c.Vendors {
		if err := v.validate(); err != nil {
			return fmt.Errorf("vendor %q: %w", name, err)
		}
	}
	return nil
}

func (v Vendor) validate() error {
	if len(v.Periods) == 0 {
		return errors.New("periods is required")
	}
	claimed := map[int]string{}
	for season, months := range v.Periods {
		if _, ok := v.Seasons[season]; !ok {
			return fmt.Errorf("season %q has months but no rates", season)
		}
		for _, m := range months {
			if m < 1 || m > 12 {
				return fmt.Errorf("season %q: month %d out of range", season, m)
			}
			if other, dup := claimed[m]; dup {
				return fmt.Errorf("month %d claimed by both %q and %q", m, other, season)
			}
			claimed[m] = season
		}
	}
	for m := 1; m <= 12; m++ {
		if _, ok := claimed[m]; !ok {
			return fmt.Errorf("month %d is not covered by any season", m)
		}
	}
	for season, rates := range v.Seasons {
		if _, ok := v.Periods[season]; !ok {
			return fmt.Errorf("season %q has rates but no months", season)
		}
		for _, entries := range [][]RateEntry{rates.Weekday, rates.Weekend} {
			for _, e := range entries {
				if e.Name == "" {
					return fmt.Errorf("season %q: rate entry without a name", season)
				}
				if len(e.Hours) == 0 {
					return fmt.Errorf("season %q: rate %q has no hour ranges", season, e.Name)
				}
				for _, h := range e.Hours {
					if _, err := parseHourRange(h); err != nil {
						return fmt.Errorf("season %q rate %q: %w", season, e.Name, err)
					}
				}
			}
		}
	}
	return nil
}
