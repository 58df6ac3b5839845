// Package billing folds the canonical reading dataset against a tariff
// configuration into per-day and range-total cost figures.
package billing

import (
	"context"
	"fmt"
	"time"

	"meter-billing/internal/model"
	"meter-billing/internal/store"
	"meter-billing/internal/tariff"
)

// Aggregator computes billed cost over date ranges. It is stateless between
// calls: every query re-reads the store.
type Aggregator struct {
	store store.Store
	rates *tariff.Resolver
}

func New(st store.Store, rates *tariff.Resolver) *Aggregator {
	return &Aggregator{store: st, rates: rates}
}

// CostRange computes usage cost, solar credit and supply charges for each
// calendar day in [start, end] inclusive. The supply charge accrues for
// every day in the range whether or not readings exist.
func (a *Aggregator) CostRange(ctx context.Context, vendor string, start, end time.Time) (*model.CostSummary, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	supply, err := a.rates.SupplyCharge(vendor)
	if err != nil {
		return nil, err
	}

	sum := &model.CostSummary{
		Vendor:     vendor,
		StartDate:  midnight(start),
		EndDate:    midnight(end),
		DailyCosts: map[string]float64{},
		DailySolar: map[string]float64{},
	}

	for day := sum.StartDate; !day.After(sum.EndDate); day = day.AddDate(0, 0, 1) {
		sum.TotalDays++
		sum.TotalSupplyCharges += supply

		readings, err := a.store.ReadingsOnDay(ctx, "", day)
		if err != nil {
			return nil, err
		}

		dayCost := 0.0
		daySolar := 0.0
		for _, r := range readings {
			switch r.RateType {
			case model.RateTypeUsage:
				rate, err := a.rates.Rate(vendor, r.StartTime)
				if err != nil {
					return nil, err
				}
				dayCost += r.ProfileReadValue * rate
			case model.RateTypeSolar:
				solarRate, ok, err := a.rates.SolarRate(vendor, r.StartTime)
				if err != nil {
					return nil, err
				}
				if ok {
					daySolar += r.ProfileReadValue * solarRate
				}
			}
		}

		key := day.Format(model.DayKey)
		sum.DailyCosts[key] = dayCost
		sum.DailySolar[key] = daySolar
		sum.TotalUsageCost += dayCost
		sum.TotalSolarCredit += daySolar
	}

	sum.NetCost = sum.TotalUsageCost - sum.TotalSolarCredit + sum.TotalSupplyCharges
	return sum, nil
}

// Breakdown computes the range bill split by rate label. Each Usage reading
// contributes to exactly one bucket (the label the resolver returns for its
// start time), so the buckets partition the usage totals.
func (a *Aggregator) Breakdown(ctx context.Context, vendor string, start, end time.Time) (*model.BreakdownSummary, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	supply, err := a.rates.SupplyCharge(vendor)
	if err != nil {
		return nil, err
	}

	sum := &model.BreakdownSummary{
		Vendor:    vendor,
		StartDate: midnight(start),
		EndDate:   midnight(end),
		Usage: map[model.RateLabel]model.BucketTotals{
			model.RatePeak:     {},
			model.RateOffPeak:  {},
			model.RateShoulder: {},
		},
	}

	for day := sum.StartDate; !day.After(sum.EndDate); day = day.AddDate(0, 0, 1) {
		sum.TotalDays++
		sum.TotalSupplyCharges += supply

		readings, err := a.store.ReadingsOnDay(ctx, "", day)
		if err != nil {
			return nil, err
		}

		for _, r := range readings {
			switch r.RateType {
			case model.RateTypeUsage:
				rate, err := a.rates.Rate(vendor, r.StartTime)
				if err != nil {
					return nil, err
				}
				label, err := a.rates.RateType(vendor, r.StartTime)
				if err != nil {
					return nil, err
				}
				bucket := sum.Usage[label]
				bucket.KWh += r.ProfileReadValue
				bucket.Cost += r.ProfileReadValue * rate
				sum.Usage[label] = bucket
			case model.RateTypeSolar:
				solarRate, ok, err := a.rates.SolarRate(vendor, r.StartTime)
				if err != nil {
					return nil, err
				}
				sum.Solar.KWh += r.ProfileReadValue
				if ok {
					sum.Solar.Credit += r.ProfileReadValue * solarRate
				}
			}
		}
	}

	for _, bucket := range sum.Usage {
		sum.TotalUsageKWh += bucket.KWh
		sum.TotalUsageCost += bucket.Cost
	}
	sum.SubTotalCost = sum.TotalUsageCost + sum.TotalSupplyCharges
	sum.NetCost = sum.SubTotalCost - sum.Solar.Credit
	return sum, nil
}

func checkRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if midnight(end).Before(midnight(start)) {
		return fmt.Errorf("end date %s is before start date %s",
			end.Format(model.DayKey), start.Format(model.DayKey))
	}
	return nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
