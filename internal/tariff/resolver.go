package tariff

import (
	"errors"
	"fmt"
	"time"

	"meter-billing/internal/model"
)

// ErrConfigNotFound reports a vendor or season missing from the loaded
// tariff configuration.
var ErrConfigNotFound = errors.New("tariff config not found")

// ErrNoRateMatch reports a timestamp whose hour is not covered by any rate
// entry for the applicable season and day type. The source system silently
// defaulted in this case; here an uncovered hour is a configuration error
// for Rate, RateType and SolarRate alike.
var ErrNoRateMatch = errors.New("no rate matches timestamp")

// Resolver maps (vendor, timestamp) to an applicable rate. It is a pure
// read-only view over a validated Config and is safe for concurrent use.
type Resolver struct {
	cfg *Config
}

func NewResolver(cfg *Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Rate returns the applicable usage rate in currency/kWh.
func (r *Resolver) Rate(vendor string, at time.Time) (float64, error) {
	e, err := r.entryFor(vendor, at)
	if err != nil {
		return 0, err
	}
	return e.Rate, nil
}

// RateType returns the label of the matching rate entry (peak, off_peak,
// shoulder or whatever the configuration names it).
func (r *Resolver) RateType(vendor string, at time.Time) (model.RateLabel, error) {
	e, err := r.entryFor(vendor, at)
	if err != nil {
		return "", err
	}
	return model.RateLabel(e.Name), nil
}

// SolarRate returns the feed-in rate for the matching entry. The boolean is
// false when the entry matched but carries no solar rate; that is a
// legitimate tariff, not an error.
func (r *Resolver) SolarRate(vendor string, at time.Time) (float64, bool, error) {
	e, err := r.entryFor(vendor, at)
	if err != nil {
		return 0, false, err
	}
	if e.SolarRate == nil {
		return 0, false, nil
	}
	return *e.SolarRate, true, nil
}

// SupplyCharge returns the vendor's fixed daily supply charge.
func (r *Resolver) SupplyCharge(vendor string) (float64, error) {
	v, ok := r.cfg.Vendors[vendor]
	if !ok {
		return 0, fmt.Errorf("vendor %q: %w", vendor, ErrConfigNotFound)
	}
	return v.SupplyCharge, nil
}

func (r *Resolver) entryFor(vendor string, at time.Time) (*RateEntry, error) {
	v, ok := r.cfg.Vendors[vendor]
	if !ok {
		return nil, fmt.Errorf("vendor %q: %w", vendor, ErrConfigNotFound)
	}

	season, err := v.seasonFor(at)
	if err != nil {
		return nil, fmt.Errorf("vendor %q: %w", vendor, err)
	}

	rates, ok := v.Seasons[season]
	if !ok {
		return nil, fmt.Errorf("vendor %q season %q: %w", vendor, season, ErrConfigNotFound)
	}

	entries := rates.Weekday
	if isWeekend(at) {
		entries = rates.Weekend
	}

	// First match wins; declaration order resolves any overlap.
	hour := at.Hour()
	for i := range entries {
		for _, h := range entries[i].Hours {
			hr, err := parseHourRange(h)
			if err != nil {
				return nil, fmt.Errorf("vendor %q season %q rate %q: %w", vendor, season, entries[i].Name, err)
			}
			if hr.contains(hour) {
				return &entries[i], nil
			}
		}
	}
	return nil, fmt.Errorf("vendor %q season %q hour %d: %w", vendor, season, hour, ErrNoRateMatch)
}

func (v Vendor) seasonFor(at time.Time) (string, error) {
	month := int(at.Month())
	for season, months := range v.Periods {
		for _, m := range months {
			if m == month {
				return season, nil
			}
		}
	}
	return "", fmt.Errorf("no season covers month %d: %w", month, ErrConfigNotFound)
}

func isWeekend(at time.Time) bool {
	wd := at.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
